package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
)

// RefundService reverses a completed sale: gateway refund first, then the
// local status flip plus aggregate decrement. A gateway failure leaves the
// sale untouched.
type RefundService struct {
	gateways Gateways
	sales    domain.SaleRepository
	logger   zerolog.Logger
}

func NewRefundService(gateways Gateways, sales domain.SaleRepository, logger zerolog.Logger) *RefundService {
	return &RefundService{
		gateways: gateways,
		sales:    sales,
		logger:   logger.With().Str("component", "refund").Logger(),
	}
}

func (s *RefundService) Refund(ctx context.Context, gatewayName string, in RefundInput) (*RefundResponse, error) {
	gw, err := s.gateways.Resolve(gatewayName)
	if err != nil {
		return nil, err
	}
	if in.PaymentID == "" {
		return nil, domain.ErrMissingPaymentID
	}
	if in.TransactionID == "" {
		return nil, domain.ErrMissingTrxID
	}
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	sale, err := s.sales.GetByTransactionID(ctx, in.TransactionID)
	if err != nil {
		return nil, err
	}
	if sale.PaymentStatus != domain.PaymentStatusCompleted {
		return nil, domain.ErrSaleNotCompleted
	}

	result, err := gw.RefundPayment(ctx, domain.RefundRequest{
		PaymentID:     in.PaymentID,
		Amount:        in.Amount,
		TransactionID: in.TransactionID,
		Reason:        in.Reason,
	})
	if err != nil {
		paymentRefundsTotal.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).
			Str("payment_id", in.PaymentID).
			Str("trx_id", in.TransactionID).
			Msg("gateway refund failed")
		return nil, err
	}

	if _, err := s.sales.MarkRefunded(ctx, in.TransactionID); err != nil {
		// Money left the gateway but the local flip failed; this needs an
		// operator, so it is loud in the logs and surfaced to the caller.
		paymentRefundsTotal.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).
			Str("trx_id", in.TransactionID).
			Str("refund_id", result.RefundID).
			Msg("gateway refunded but sale not updated")
		return nil, fmt.Errorf("refund executed but sale update failed: %w", err)
	}

	paymentRefundsTotal.WithLabelValues("success").Inc()
	s.logger.Info().
		Str("serial_id", sale.SerialID).
		Str("refund_id", result.RefundID).
		Msg("sale refunded")

	return &RefundResponse{
		RefundID: result.RefundID,
		Message:  "refund completed",
	}, nil
}
