package application

import (
	"github.com/shopspring/decimal"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
)

type CreatePaymentInput struct {
	TrackID     string `json:"trackId"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

type CreatePaymentResponse struct {
	PaymentID             string          `json:"paymentID"`
	PaymentURL            string          `json:"paymentURL"`
	MerchantInvoiceNumber string          `json:"merchantInvoiceNumber"`
	Amount                decimal.Decimal `json:"amount"`
	TrackTitle            string          `json:"trackTitle"`
}

// CallbackParams are the untrusted query parameters the gateway's browser
// redirect carries back.
type CallbackParams struct {
	PaymentID   string
	Status      string
	TrackID     string
	RedirectURL string
	OrderID     string
	Signature   string
}

// CallbackRedirect is where the buyer's browser is sent next. The callback
// handler never answers with a body, only with this location.
type CallbackRedirect struct {
	Location string
}

type StatusResponse struct {
	PaymentID     string       `json:"paymentID"`
	GatewayStatus string       `json:"gatewayStatus"`
	SaleStatus    string       `json:"saleStatus"`
	Sale          *domain.Sale `json:"sale,omitempty"`
}

type RefundInput struct {
	PaymentID     string          `json:"paymentID"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"trxID"`
	Reason        string          `json:"reason,omitempty"`
}

type RefundResponse struct {
	RefundID string `json:"refundID"`
	Message  string `json:"message"`
}

type ManualSaleInput struct {
	TrackID       string               `json:"trackId"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentMethod string               `json:"paymentMethod,omitempty"`
	TransactionID string               `json:"transactionId,omitempty"`
}

type SaleListResponse struct {
	Sales  []domain.Sale `json:"sales"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
