package domain

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Track is a sellable media track. Only the fields the purchase flow reads
// and the aggregates it maintains live here; the full catalog surface is
// owned elsewhere.
type Track struct {
	ID             string          `json:"id" db:"id"`
	Title          string          `json:"title" db:"title"`
	Artist         string          `json:"artist" db:"artist"`
	Price          decimal.Decimal `json:"price" db:"price"`
	CoverURL       *string         `json:"cover_url,omitempty" db:"cover_url"`
	AudioURL       *string         `json:"audio_url,omitempty" db:"audio_url"`
	SaleCount      int             `json:"sale_count" db:"sale_count"`
	TotalSoldPrice decimal.Decimal `json:"total_sold_price" db:"total_sold_price"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// TrackFinder is the read surface the payment module depends on.
type TrackFinder interface {
	GetByID(ctx context.Context, id string) (*Track, error)
}

// StatsUpdater applies a track's sale aggregates. Implementations must issue
// a single atomic UPDATE; a read-modify-write would lose concurrent sales.
// The tx parameter lets the sale insert and the aggregate change commit
// together; pass nil to run against the base connection.
type StatsUpdater interface {
	Increment(ctx context.Context, tx *sqlx.Tx, trackID string, amount decimal.Decimal) error
	Decrement(ctx context.Context, tx *sqlx.Tx, trackID string, amount decimal.Decimal) error
}
