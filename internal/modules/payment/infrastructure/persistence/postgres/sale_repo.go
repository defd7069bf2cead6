package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	catalogDomain "github.com/trackhaus/trackhaus-backend/internal/modules/catalog/domain"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
)

type PgSaleRepository struct {
	db    *sqlx.DB
	stats catalogDomain.StatsUpdater
}

func NewSaleRepository(db *sqlx.DB, stats catalogDomain.StatsUpdater) domain.SaleRepository {
	return &PgSaleRepository{db: db, stats: stats}
}

func (r *PgSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	prepare(sale)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertSale(ctx, tx, sale); err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	// Manual completed sales carry the same aggregate side effect as the
	// gateway flow; pending ones contribute nothing until completed.
	if sale.PaymentStatus == domain.PaymentStatusCompleted {
		if err := r.stats.Increment(ctx, tx, sale.TrackID, sale.Price); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CreateCompleted records a gateway-confirmed sale, conditional on its
// transaction id. The insert and the track aggregate increment commit
// together, so a duplicate callback can neither create a second sale nor
// double-count the statistics.
func (r *PgSaleRepository) CreateCompleted(ctx context.Context, sale *domain.Sale) (bool, error) {
	sale.PaymentStatus = domain.PaymentStatusCompleted
	prepare(sale)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// The unique index on transaction_id is partial; the arbiter must repeat
	// its predicate or Postgres refuses to infer it (42P10).
	query := `
		INSERT INTO sales (
			id, serial_id, track_id, track_title, price, payment_status,
			payment_method, payment_id, transaction_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (transaction_id) WHERE transaction_id IS NOT NULL DO NOTHING`

	res, err := tx.ExecContext(ctx, query,
		sale.ID, sale.SerialID, sale.TrackID, sale.TrackTitle, sale.Price,
		sale.PaymentStatus, sale.PaymentMethod, sale.PaymentID, sale.TransactionID,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create sale: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	if err := r.stats.Increment(ctx, tx, sale.TrackID, sale.Price); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// MarkCompleted transitions a pending sale to completed and applies its
// aggregate contribution in the same transaction.
func (r *PgSaleRepository) MarkCompleted(ctx context.Context, serialID string) (*domain.Sale, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sale := &domain.Sale{}
	query := `
		UPDATE sales SET payment_status = $1, updated_at = NOW()
		WHERE serial_id = $2 AND payment_status = $3
		RETURNING *`
	err = tx.GetContext(ctx, sale, query,
		domain.PaymentStatusCompleted, serialID, domain.PaymentStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSaleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark sale completed: %w", err)
	}

	if err := r.stats.Increment(ctx, tx, sale.TrackID, sale.Price); err != nil {
		return nil, err
	}

	return sale, tx.Commit()
}

// MarkRefunded transitions a completed sale to refunded and reverses its
// aggregate contribution in the same transaction.
func (r *PgSaleRepository) MarkRefunded(ctx context.Context, transactionID string) (*domain.Sale, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sale := &domain.Sale{}
	query := `
		UPDATE sales SET payment_status = $1, updated_at = NOW()
		WHERE transaction_id = $2 AND payment_status = $3
		RETURNING *`
	err = tx.GetContext(ctx, sale, query,
		domain.PaymentStatusRefunded, transactionID, domain.PaymentStatusCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSaleNotCompleted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark sale refunded: %w", err)
	}

	if err := r.stats.Decrement(ctx, tx, sale.TrackID, sale.Price); err != nil {
		return nil, err
	}

	return sale, tx.Commit()
}

func (r *PgSaleRepository) GetBySerialID(ctx context.Context, serialID string) (*domain.Sale, error) {
	return r.get(ctx, `SELECT * FROM sales WHERE serial_id = $1`, serialID)
}

func (r *PgSaleRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Sale, error) {
	return r.get(ctx, `SELECT * FROM sales WHERE transaction_id = $1`, transactionID)
}

func (r *PgSaleRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Sale, error) {
	return r.get(ctx, `SELECT * FROM sales WHERE payment_id = $1`, paymentID)
}

func (r *PgSaleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	query := `UPDATE sales SET payment_status = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update sale status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSaleNotFound
	}
	return nil
}

func (r *PgSaleRepository) List(ctx context.Context, limit, offset int) ([]domain.Sale, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sales`); err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	var sales []domain.Sale
	query := `SELECT * FROM sales ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &sales, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, total, nil
}

// get returns a nil sale on no rows; callers gate on the sale pointer.
func (r *PgSaleRepository) get(ctx context.Context, query string, arg any) (*domain.Sale, error) {
	sale := &domain.Sale{}
	err := r.db.GetContext(ctx, sale, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func insertSale(ctx context.Context, tx *sqlx.Tx, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (
			id, serial_id, track_id, track_title, price, payment_status,
			payment_method, payment_id, transaction_id, created_at, updated_at
		) VALUES (
			:id, :serial_id, :track_id, :track_title, :price, :payment_status,
			:payment_method, :payment_id, :transaction_id, :created_at, :updated_at
		)`
	_, err := tx.NamedExecContext(ctx, query, sale)
	return err
}

func prepare(sale *domain.Sale) {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	sale.UpdatedAt = time.Now()
}
