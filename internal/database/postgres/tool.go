package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// ToolRepository stores tools. Reservation locks the rows FOR UPDATE so two
// sessions can never hold the same tool.
type ToolRepository struct {
	db *pgxpool.Pool
}

// NewToolRepository creates a new tool repository
func NewToolRepository(db *pgxpool.Pool) *ToolRepository {
	return &ToolRepository{db: db}
}

const toolColumns = `tool_id, owner_id, category, status, durability, max_durability, in_use`

// Selection order: durability descending, then ID ascending
const toolOrder = ` ORDER BY durability DESC, tool_id ASC`

func scanTools(rows pgx.Rows) ([]domain.Tool, error) {
	defer rows.Close()

	tools := make([]domain.Tool, 0)
	for rows.Next() {
		var t domain.Tool
		var category, status string
		if err := rows.Scan(&t.ID, &t.OwnerID, &category, &status, &t.Durability, &t.MaxDurability, &t.InUse); err != nil {
			return nil, err
		}
		t.Category = domain.ToolCategory(category)
		t.Status = domain.ToolStatus(status)
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// ListAvailable returns the user's idle tools, optionally filtered by category
func (r *ToolRepository) ListAvailable(ctx context.Context, userID string, category *domain.ToolCategory) ([]domain.Tool, error) {
	query := `SELECT ` + toolColumns + `
		FROM tools
		WHERE owner_id = $1 AND status = $2 AND NOT in_use AND durability > 0
			AND ($3::text IS NULL OR category = $3)` + toolOrder

	var cat *string
	if category != nil {
		c := string(*category)
		cat = &c
	}

	rows, err := r.db.Query(ctx, query, userID, string(domain.ToolStatusNormal), cat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTools, err)
	}
	tools, err := scanTools(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTools, err)
	}
	return tools, nil
}

// CountIdle returns how many idle tools of a category the user owns
func (r *ToolRepository) CountIdle(ctx context.Context, userID string, category domain.ToolCategory) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tools
		WHERE owner_id = $1 AND category = $2 AND status = $3 AND NOT in_use AND durability > 0
	`
	var n int
	if err := r.db.QueryRow(ctx, query, userID, string(category), string(domain.ToolStatusNormal)).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToListTools, err)
	}
	return n, nil
}

// GetTools returns the user's tools by ID in the requested order
func (r *ToolRepository) GetTools(ctx context.Context, userID string, ids []string) ([]domain.Tool, error) {
	rows, err := r.db.Query(ctx, `SELECT `+toolColumns+` FROM tools WHERE owner_id = $1 AND tool_id = ANY($2)`, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTools, err)
	}
	found, err := scanTools(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTools, err)
	}
	return orderTools(found, ids)
}

// orderTools returns tools in ids order, failing when one is missing
func orderTools(found []domain.Tool, ids []string) ([]domain.Tool, error) {
	byID := make(map[string]domain.Tool, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	out := make([]domain.Tool, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrToolUnavailable, id)
		}
		out = append(out, t)
	}
	return out, nil
}

// lockTools selects the user's tools FOR UPDATE inside tx
func lockTools(ctx context.Context, tx pgx.Tx, userID string, ids []string) ([]domain.Tool, error) {
	rows, err := tx.Query(ctx, `SELECT `+toolColumns+`
		FROM tools
		WHERE owner_id = $1 AND tool_id = ANY($2)
		ORDER BY tool_id
		FOR UPDATE`, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLockTools, err)
	}
	found, err := scanTools(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLockTools, err)
	}
	return orderTools(found, ids)
}

// Reserve marks every tool in use, or none of them
func (r *ToolRepository) Reserve(ctx context.Context, userID string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate tool %s", domain.ErrToolUnavailable, id)
		}
		seen[id] = struct{}{}
	}

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		tools, err := lockTools(ctx, tx, userID, ids)
		if err != nil {
			return err
		}
		for _, t := range tools {
			if !t.Idle() {
				return fmt.Errorf("%w: %s", domain.ErrToolUnavailable, t.ID)
			}
		}

		if _, err := tx.Exec(ctx, `UPDATE tools SET in_use = TRUE, updated_at = NOW() WHERE tool_id = ANY($1)`, ids); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateTools, err)
		}
		return nil
	})
}

// Release frees tools and applies durability loss keyed by tool ID
func (r *ToolRepository) Release(ctx context.Context, userID string, ids []string, loss map[string]int) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		return releaseTools(ctx, tx, userID, ids, loss)
	})
}

// releaseTools frees tools inside tx so a session close can share the transaction
func releaseTools(ctx context.Context, tx pgx.Tx, userID string, ids []string, loss map[string]int) error {
	tools, err := lockTools(ctx, tx, userID, ids)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, t := range tools {
		t.InUse = false
		t.ApplyWear(loss[t.ID])
		batch.Queue(`UPDATE tools SET in_use = FALSE, durability = $2, status = $3, updated_at = NOW() WHERE tool_id = $1`,
			t.ID, t.Durability, string(t.Status))
	}

	results := tx.SendBatch(ctx, batch)
	for range tools {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateTools, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateTools, err)
	}
	return nil
}

// ListTools returns every tool the user owns, in selection order
func (r *ToolRepository) ListTools(ctx context.Context, userID string) ([]domain.Tool, error) {
	rows, err := r.db.Query(ctx, `SELECT `+toolColumns+` FROM tools WHERE owner_id = $1`+toolOrder, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTools, err)
	}
	tools, err := scanTools(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTools, err)
	}
	return tools, nil
}

// UpsertTool inserts or replaces a tool
func (r *ToolRepository) UpsertTool(ctx context.Context, t domain.Tool) error {
	query := `
		INSERT INTO tools (` + toolColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tool_id) DO UPDATE
		SET owner_id = EXCLUDED.owner_id,
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			durability = EXCLUDED.durability,
			max_durability = EXCLUDED.max_durability,
			in_use = EXCLUDED.in_use,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, t.ID, t.OwnerID, string(t.Category), string(t.Status), t.Durability, t.MaxDurability, t.InUse)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpsertTool, err)
	}
	return nil
}
