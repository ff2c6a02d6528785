package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// LedgerRepository stores resource balances as NUMERIC
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadEntry(ctx context.Context, q rowQuerier, query, userID string, resource domain.ResourceType) (domain.LedgerEntry, error) {
	entry := domain.LedgerEntry{UserID: userID, Resource: resource}

	var total, frozen string
	err := q.QueryRow(ctx, query, userID, string(resource)).Scan(&total, &frozen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entry, nil
		}
		return entry, fmt.Errorf("%s: %w", ErrMsgFailedToGetBalance, err)
	}

	if entry.Total, err = parseDecimal(total); err != nil {
		return entry, err
	}
	if entry.Frozen, err = parseDecimal(frozen); err != nil {
		return entry, err
	}
	return entry, nil
}

// Balance returns the entry for a resource; unknown entries are zero
func (r *LedgerRepository) Balance(ctx context.Context, userID string, resource domain.ResourceType) (domain.LedgerEntry, error) {
	return loadEntry(ctx, r.db, `
		SELECT total::text, frozen::text
		FROM ledger_entries
		WHERE user_id = $1 AND resource = $2
	`, userID, resource)
}

// Credit adds amount to the total
func (r *LedgerRepository) Credit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	return creditEntry(ctx, r.db, userID, resource, amount)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// creditEntry adds amount through db, which may be a pool or a transaction
func creditEntry(ctx context.Context, db execer, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: negative credit %s", domain.ErrInvalidInput, amount)
	}

	query := `
		INSERT INTO ledger_entries (user_id, resource, total)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (user_id, resource) DO UPDATE
		SET total = ledger_entries.total + EXCLUDED.total, updated_at = NOW()
	`
	if _, err := db.Exec(ctx, query, userID, string(resource), amount.String()); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCredit, err)
	}
	return nil
}

// Debit removes amount from the available balance, or fails without change
func (r *LedgerRepository) Debit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: negative debit %s", domain.ErrInvalidInput, amount)
	}

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		entry, err := loadEntry(ctx, tx, `
			SELECT total::text, frozen::text
			FROM ledger_entries
			WHERE user_id = $1 AND resource = $2
			FOR UPDATE
		`, userID, resource)
		if err != nil {
			return err
		}

		if entry.Available().LessThan(amount) {
			return fmt.Errorf("%w: %s has %s, needs %s", domain.ErrInsufficientQuantity, resource, entry.Available(), amount)
		}

		_, err = tx.Exec(ctx, `
			UPDATE ledger_entries
			SET total = total - $3::numeric, updated_at = NOW()
			WHERE user_id = $1 AND resource = $2
		`, userID, string(resource), amount.String())
		if err != nil {
			if isPgError(err, PgErrorCodeCheckViolation) {
				return fmt.Errorf("%w: %s", domain.ErrInsufficientQuantity, resource)
			}
			return fmt.Errorf("%s: %w", ErrMsgFailedToDebit, err)
		}
		return nil
	})
}
