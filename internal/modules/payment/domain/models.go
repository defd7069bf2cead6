package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Sale is one purchase that reached payment confirmation. Unconfirmed
// checkout attempts are never persisted; only the manual admin path may
// create a sale in a non-completed status.
type Sale struct {
	ID       uuid.UUID `json:"id" db:"id"`
	SerialID string    `json:"serial_id" db:"serial_id"`
	TrackID  string    `json:"track_id" db:"track_id"`

	// TrackTitle and Price snapshot the track at sale time; later catalog
	// edits must not change what the buyer paid for.
	TrackTitle string          `json:"track_title" db:"track_title"`
	Price      decimal.Decimal `json:"price" db:"price"`

	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentMethod string        `json:"payment_method" db:"payment_method"`

	// PaymentID is the gateway's checkout session id, TransactionID the id
	// of the executed payment. Both correlate with the gateway's records.
	PaymentID     *string `json:"payment_id,omitempty" db:"payment_id"`
	TransactionID *string `json:"transaction_id,omitempty" db:"transaction_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SaleRepository owns Sale persistence.
type SaleRepository interface {
	// Create persists a sale as-is (manual admin path). A completed manual
	// sale increments the track aggregates in the same transaction.
	Create(ctx context.Context, sale *Sale) error

	// CreateCompleted records a gateway-confirmed sale and increments the
	// track aggregates in one transaction. It is conditional on the
	// transaction id: a duplicate callback reports created=false and
	// changes nothing.
	CreateCompleted(ctx context.Context, sale *Sale) (created bool, err error)

	// MarkCompleted flips a pending sale to completed and increments the
	// track aggregates in one transaction (legacy orderId fallback path).
	MarkCompleted(ctx context.Context, serialID string) (*Sale, error)

	// MarkRefunded flips a completed sale to refunded and decrements the
	// track aggregates in one transaction.
	MarkRefunded(ctx context.Context, transactionID string) (*Sale, error)

	GetBySerialID(ctx context.Context, serialID string) (*Sale, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Sale, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*Sale, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error
	List(ctx context.Context, limit, offset int) ([]Sale, int, error)
}

// CreatePaymentRequest is the merchant-side input to a gateway create call.
type CreatePaymentRequest struct {
	Amount      decimal.Decimal
	InvoiceRef  string
	Intent      string
	CallbackURL string
}

// CreatePaymentResult is the gateway's answer to a create call.
type CreatePaymentResult struct {
	PaymentID   string
	RedirectURL string
}

// ExecutePaymentResult is the gateway's answer to finalizing a payment.
type ExecutePaymentResult struct {
	Success       bool
	TransactionID string
	Status        string
	StatusMessage string
}

// QueryPaymentResult is the gateway's read-only view of a payment.
type QueryPaymentResult struct {
	PaymentID     string
	Status        string
	TransactionID string
	Amount        string
}

// RefundRequest is the merchant-side input to a gateway refund call.
type RefundRequest struct {
	PaymentID     string
	Amount        decimal.Decimal
	TransactionID string
	Reason        string
}

// RefundResult is the gateway's answer to a refund call.
type RefundResult struct {
	RefundID string
	Success  bool
	Status   string
}

// Gateway is the tokenized-checkout payment gateway contract. All calls are
// outbound network calls; business rejections surface as *GatewayError from
// the implementing package.
type Gateway interface {
	Name() string
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error)
	ExecutePayment(ctx context.Context, paymentID string) (*ExecutePaymentResult, error)
	QueryPayment(ctx context.Context, paymentID string) (*QueryPaymentResult, error)
	RefundPayment(ctx context.Context, req RefundRequest) (*RefundResult, error)
}
