package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/trackhaus/trackhaus-backend/internal/modules/catalog/domain"
)

type PgTrackRepository struct {
	db *sqlx.DB
}

func NewTrackRepository(db *sqlx.DB) *PgTrackRepository {
	return &PgTrackRepository{db: db}
}

func (r *PgTrackRepository) GetByID(ctx context.Context, id string) (*domain.Track, error) {
	track := &domain.Track{}
	query := `SELECT * FROM tracks WHERE id = $1`
	err := r.db.GetContext(ctx, track, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return track, nil
}

// Increment bumps the track's sale aggregates in a single UPDATE so that two
// sales of the same track completing concurrently cannot lose an update.
func (r *PgTrackRepository) Increment(ctx context.Context, tx *sqlx.Tx, trackID string, amount decimal.Decimal) error {
	query := `
		UPDATE tracks SET
			sale_count = sale_count + 1,
			total_sold_price = total_sold_price + $1,
			updated_at = NOW()
		WHERE id = $2`

	res, err := r.execer(tx).ExecContext(ctx, query, amount, trackID)
	if err != nil {
		return fmt.Errorf("failed to increment track stats: %w", err)
	}
	return r.requireRow(res)
}

// Decrement reverses one completed sale. GREATEST keeps a missed increment
// from driving the aggregates negative.
func (r *PgTrackRepository) Decrement(ctx context.Context, tx *sqlx.Tx, trackID string, amount decimal.Decimal) error {
	query := `
		UPDATE tracks SET
			sale_count = GREATEST(sale_count - 1, 0),
			total_sold_price = GREATEST(total_sold_price - $1, 0),
			updated_at = NOW()
		WHERE id = $2`

	res, err := r.execer(tx).ExecContext(ctx, query, amount, trackID)
	if err != nil {
		return fmt.Errorf("failed to decrement track stats: %w", err)
	}
	return r.requireRow(res)
}

func (r *PgTrackRepository) execer(tx *sqlx.Tx) sqlx.ExecerContext {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *PgTrackRepository) requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTrackNotFound
	}
	return nil
}
