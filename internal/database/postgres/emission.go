package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// EmissionRepository persists each capped resource's produced amount per day
type EmissionRepository struct {
	db *pgxpool.Pool
}

// NewEmissionRepository creates a new emission repository
func NewEmissionRepository(db *pgxpool.Pool) *EmissionRepository {
	return &EmissionRepository{db: db}
}

// LoadProduced returns the produced amount for a day and whether a row exists
func (r *EmissionRepository) LoadProduced(ctx context.Context, resource domain.ResourceType, day string) (decimal.Decimal, bool, error) {
	var produced string
	err := r.db.QueryRow(ctx, `
		SELECT produced::text
		FROM emission_days
		WHERE resource = $1 AND day = $2
	`, string(resource), day).Scan(&produced)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("%s: %w", ErrMsgFailedToLoadProduced, err)
	}

	d, err := parseDecimal(produced)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

// SaveProduced writes the produced amount for a day. The stored value never decreases.
func (r *EmissionRepository) SaveProduced(ctx context.Context, resource domain.ResourceType, day string, produced decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO emission_days (resource, day, produced)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (resource, day) DO UPDATE
		SET produced = GREATEST(emission_days.produced, EXCLUDED.produced), updated_at = NOW()
	`, string(resource), day, produced.String())
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSaveProduced, err)
	}
	return nil
}
