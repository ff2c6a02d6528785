package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// LandRepository reads lands and player levels
type LandRepository struct {
	db *pgxpool.Pool
}

// NewLandRepository creates a new land repository
func NewLandRepository(db *pgxpool.Pool) *LandRepository {
	return &LandRepository{db: db}
}

// GetLand returns a land by ID
func (r *LandRepository) GetLand(ctx context.Context, landID string) (*domain.Land, error) {
	query := `
		SELECT land_id, owner_id, name, category, reserve::text
		FROM lands
		WHERE land_id = $1
	`

	var land domain.Land
	var category string
	var reserve *string
	err := r.db.QueryRow(ctx, query, landID).Scan(&land.ID, &land.OwnerID, &land.Name, &category, &reserve)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrLandNotFound, landID)
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetLand, err)
	}
	land.Category = domain.LandCategory(category)

	if reserve != nil {
		d, err := parseDecimal(*reserve)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseReserve, err)
		}
		land.Reserve = &d
	}
	return &land, nil
}

// UpsertLand inserts or replaces a land
func (r *LandRepository) UpsertLand(ctx context.Context, land domain.Land) error {
	query := `
		INSERT INTO lands (land_id, owner_id, name, category, reserve)
		VALUES ($1, $2, $3, $4, $5::numeric)
		ON CONFLICT (land_id) DO UPDATE
		SET owner_id = EXCLUDED.owner_id,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			reserve = EXCLUDED.reserve
	`

	var reserve *string
	if land.Reserve != nil {
		s := land.Reserve.String()
		reserve = &s
	}

	if _, err := r.db.Exec(ctx, query, land.ID, land.OwnerID, land.Name, string(land.Category), reserve); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpsertLand, err)
	}
	return nil
}

// GetUserLevel returns a user's level
func (r *LandRepository) GetUserLevel(ctx context.Context, userID string) (int, error) {
	var level int
	err := r.db.QueryRow(ctx, `SELECT level FROM user_levels WHERE user_id = $1`, userID).Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
		}
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToGetUserLevel, err)
	}
	return level, nil
}

// SetUserLevel records a user's level
func (r *LandRepository) SetUserLevel(ctx context.Context, userID string, level int) error {
	query := `
		INSERT INTO user_levels (user_id, level)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET level = EXCLUDED.level, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, level); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSetUserLevel, err)
	}
	return nil
}
