package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	catalogDomain "github.com/trackhaus/trackhaus-backend/internal/modules/catalog/domain"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
	"github.com/trackhaus/trackhaus-backend/internal/shared/infrastructure/config"
)

// Gateways maps a route's {gateway} segment to its adapter.
type Gateways map[string]domain.Gateway

func (g Gateways) Resolve(name string) (domain.Gateway, error) {
	gw, ok := g[name]
	if !ok {
		return nil, domain.ErrUnknownGateway
	}
	return gw, nil
}

// Redirect reason codes encoded on the failure page. Precise diagnostics go
// to the logs only; the buyer's browser sees these coarse codes.
const (
	reasonMissingPaymentID  = "missing-payment-id"
	reasonMissingTrackID    = "missing-track-id"
	reasonTrackNotFound     = "track-not-found"
	reasonPaymentFailed     = "payment-failed"
	reasonInvalidSignature  = "invalid-signature"
	reasonDuplicateCallback = "duplicate-callback"
)

const fallbackRedirectBase = "http://localhost:4200"

// callbackLockTTL bounds how long a paymentID stays locked when its first
// callback never finished.
const callbackLockTTL = 2 * time.Minute

// CheckoutService drives a purchase from intent through the gateway
// round-trip to a durably recorded sale.
type CheckoutService struct {
	gateways Gateways
	sales    domain.SaleRepository
	tracks   catalogDomain.TrackFinder
	locks    *redis.Client
	cfg      config.CheckoutConfig
	logger   zerolog.Logger
}

func NewCheckoutService(
	gateways Gateways,
	sales domain.SaleRepository,
	tracks catalogDomain.TrackFinder,
	locks *redis.Client,
	cfg config.CheckoutConfig,
	logger zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		gateways: gateways,
		sales:    sales,
		tracks:   tracks,
		locks:    locks,
		cfg:      cfg,
		logger:   logger.With().Str("component", "checkout").Logger(),
	}
}

// CreatePayment opens a checkout session at the gateway. No sale is
// persisted here; that happens only when the callback confirms execution.
func (s *CheckoutService) CreatePayment(ctx context.Context, gatewayName string, in CreatePaymentInput) (*CreatePaymentResponse, error) {
	gw, err := s.gateways.Resolve(gatewayName)
	if err != nil {
		return nil, err
	}
	if in.TrackID == "" {
		return nil, catalogDomain.ErrTrackNotFound
	}

	track, err := s.tracks.GetByID(ctx, in.TrackID)
	if err != nil {
		return nil, err
	}
	if !track.Price.IsPositive() {
		return nil, domain.ErrInvalidPrice
	}

	invoiceRef := GenerateInvoiceRef(track.ID, time.Now())

	result, err := gw.CreatePayment(ctx, domain.CreatePaymentRequest{
		Amount:      track.Price,
		InvoiceRef:  invoiceRef,
		Intent:      "sale",
		CallbackURL: s.buildCallbackURL(gatewayName, track.ID, in.RedirectURL),
	})
	if err != nil {
		return nil, err
	}

	paymentsCreatedTotal.Inc()
	s.logger.Info().
		Str("payment_id", result.PaymentID).
		Str("track_id", track.ID).
		Str("invoice", invoiceRef).
		Msg("checkout session created")

	return &CreatePaymentResponse{
		PaymentID:             result.PaymentID,
		PaymentURL:            result.RedirectURL,
		MerchantInvoiceNumber: invoiceRef,
		Amount:                track.Price,
		TrackTitle:            track.Title,
	}, nil
}

// HandleCallback processes the gateway's browser redirect. Every input is
// untrusted, every outcome is a redirect; errors are encoded as a reason
// query parameter and logged server-side with full context.
func (s *CheckoutService) HandleCallback(ctx context.Context, gatewayName string, p CallbackParams) CallbackRedirect {
	log := s.logger.With().
		Str("payment_id", p.PaymentID).
		Str("track_id", p.TrackID).
		Str("status", p.Status).
		Logger()

	// The trackId/redirectUrl pair only counts if we signed it when
	// building the callback URL; tampered params fall back to configured
	// redirect bases and the payment is not recorded.
	if s.cfg.CallbackSecret != "" && !VerifyCallbackParams(s.cfg.CallbackSecret, p.TrackID, p.RedirectURL, p.Signature) {
		log.Error().Msg("callback signature mismatch")
		paymentCallbacksTotal.WithLabelValues("failed").Inc()
		return s.failedRedirect("", reasonInvalidSignature, p.PaymentID)
	}

	gw, err := s.gateways.Resolve(gatewayName)
	if err != nil {
		log.Error().Str("gateway", gatewayName).Msg("callback for unknown gateway")
		paymentCallbacksTotal.WithLabelValues("failed").Inc()
		return s.failedRedirect(p.RedirectURL, reasonPaymentFailed, p.PaymentID)
	}

	if p.PaymentID == "" {
		log.Warn().Msg("callback without payment id")
		paymentCallbacksTotal.WithLabelValues("failed").Inc()
		return s.failedRedirect(p.RedirectURL, reasonMissingPaymentID, "")
	}

	// A cancel or failure verdict from the gateway is final; executing such
	// a payment would only burn the callback lock and a network round-trip.
	if p.Status == "cancel" || p.Status == "failure" {
		log.Info().Msg("payment cancelled or failed at gateway")
		paymentCallbacksTotal.WithLabelValues("cancelled").Inc()
		return s.cancelRedirect(p.RedirectURL)
	}

	// Short lock per paymentID so a browser back-button or gateway retry
	// cannot run execute twice concurrently. The unique transaction id
	// constraint below is the durable guard; this one is best effort.
	if !s.acquireCallbackLock(ctx, p.PaymentID) {
		return s.duplicateCallback(ctx, p, log)
	}

	exec, err := gw.ExecutePayment(ctx, p.PaymentID)
	if err != nil {
		log.Error().Err(err).Msg("gateway execution failed")
		paymentCallbacksTotal.WithLabelValues("failed").Inc()
		return s.failedRedirect(p.RedirectURL, reasonPaymentFailed, p.PaymentID)
	}
	if !exec.Success {
		log.Error().
			Str("gateway_status", exec.Status).
			Str("gateway_message", exec.StatusMessage).
			Msg("payment not successful")
		paymentCallbacksTotal.WithLabelValues("failed").Inc()
		return s.failedRedirect(p.RedirectURL, reasonPaymentFailed, p.PaymentID)
	}

	if p.TrackID == "" {
		return s.completeLegacyOrder(ctx, p, log)
	}

	track, err := s.tracks.GetByID(ctx, p.TrackID)
	if err != nil {
		log.Error().Err(err).Msg("payment executed but track is gone")
		paymentCallbacksTotal.WithLabelValues("failed").Inc()
		return s.failedRedirect(p.RedirectURL, reasonTrackNotFound, p.PaymentID)
	}

	sale := &domain.Sale{
		SerialID:      GenerateSerialID(time.Now()),
		TrackID:       track.ID,
		TrackTitle:    track.Title,
		Price:         track.Price,
		PaymentMethod: gw.Name(),
		PaymentID:     &p.PaymentID,
		TransactionID: &exec.TransactionID,
	}

	created, err := s.sales.CreateCompleted(ctx, sale)
	if err != nil {
		log.Error().Err(err).Str("trx_id", exec.TransactionID).Msg("payment executed but sale not recorded")
		paymentCallbacksTotal.WithLabelValues("failed").Inc()
		return s.failedRedirect(p.RedirectURL, reasonPaymentFailed, p.PaymentID)
	}
	if !created {
		// A previous callback for the same transaction already recorded
		// the sale; answer with its serial instead of minting another.
		existing, err := s.sales.GetByTransactionID(ctx, exec.TransactionID)
		if err != nil {
			log.Error().Err(err).Str("trx_id", exec.TransactionID).Msg("duplicate callback but original sale missing")
			paymentCallbacksTotal.WithLabelValues("failed").Inc()
			return s.failedRedirect(p.RedirectURL, reasonPaymentFailed, p.PaymentID)
		}
		sale = existing
		log.Info().Str("serial_id", sale.SerialID).Msg("duplicate callback resolved to existing sale")
	} else {
		log.Info().
			Str("serial_id", sale.SerialID).
			Str("trx_id", exec.TransactionID).
			Msg("sale recorded")
	}

	paymentCallbacksTotal.WithLabelValues("success").Inc()
	return s.successRedirect(p.RedirectURL, sale.SerialID, track.ID)
}

// QueryStatus combines the gateway's view with the local sale record.
// Read-only; admin/debug visibility.
func (s *CheckoutService) QueryStatus(ctx context.Context, gatewayName, paymentID string) (*StatusResponse, error) {
	gw, err := s.gateways.Resolve(gatewayName)
	if err != nil {
		return nil, err
	}
	if paymentID == "" {
		return nil, domain.ErrMissingPaymentID
	}

	query, err := gw.QueryPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	resp := &StatusResponse{
		PaymentID:     paymentID,
		GatewayStatus: query.Status,
		SaleStatus:    "none",
	}

	sale, err := s.lookupSale(ctx, paymentID, query.TransactionID)
	if err != nil && !errors.Is(err, domain.ErrSaleNotFound) {
		return nil, err
	}
	if sale != nil {
		resp.SaleStatus = string(sale.PaymentStatus)
		resp.Sale = sale
	}
	return resp, nil
}

func (s *CheckoutService) lookupSale(ctx context.Context, paymentID, transactionID string) (*domain.Sale, error) {
	if transactionID != "" {
		sale, err := s.sales.GetByTransactionID(ctx, transactionID)
		if err == nil {
			return sale, nil
		}
		if !errors.Is(err, domain.ErrSaleNotFound) {
			return nil, err
		}
	}
	return s.sales.GetByPaymentID(ctx, paymentID)
}

// completeLegacyOrder is the fallback for callbacks that carry no trackId:
// an order created before the context-passing scheme can still be closed by
// its serial. It never creates a sale, only completes a pending one.
func (s *CheckoutService) completeLegacyOrder(ctx context.Context, p CallbackParams, log zerolog.Logger) CallbackRedirect {
	if p.OrderID == "" {
		log.Error().Msg("callback without track id or order id")
		paymentCallbacksTotal.WithLabelValues("failed").Inc()
		return s.failedRedirect(p.RedirectURL, reasonMissingTrackID, p.PaymentID)
	}

	sale, err := s.sales.GetBySerialID(ctx, p.OrderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", p.OrderID).Msg("legacy callback for unknown order")
		paymentCallbacksTotal.WithLabelValues("failed").Inc()
		return s.failedRedirect(p.RedirectURL, reasonMissingTrackID, p.PaymentID)
	}

	switch sale.PaymentStatus {
	case domain.PaymentStatusPending:
		sale, err = s.sales.MarkCompleted(ctx, sale.SerialID)
		if err != nil {
			log.Error().Err(err).Str("order_id", p.OrderID).Msg("failed to complete legacy order")
			paymentCallbacksTotal.WithLabelValues("failed").Inc()
			return s.failedRedirect(p.RedirectURL, reasonPaymentFailed, p.PaymentID)
		}
	case domain.PaymentStatusCompleted:
		// Retried callback for an order that already closed.
	default:
		// Refunded or failed orders must not land on the success page.
		log.Error().Str("order_id", p.OrderID).Str("sale_status", string(sale.PaymentStatus)).Msg("legacy callback for non-completable order")
		paymentCallbacksTotal.WithLabelValues("failed").Inc()
		return s.failedRedirect(p.RedirectURL, reasonPaymentFailed, p.PaymentID)
	}

	log.Info().Str("serial_id", sale.SerialID).Msg("legacy order completed")
	paymentCallbacksTotal.WithLabelValues("success").Inc()
	return s.successRedirect(p.RedirectURL, sale.SerialID, sale.TrackID)
}

// duplicateCallback answers a callback whose paymentID is already being, or
// has been, processed. If the sale exists the buyer still lands on the
// success page.
func (s *CheckoutService) duplicateCallback(ctx context.Context, p CallbackParams, log zerolog.Logger) CallbackRedirect {
	sale, err := s.sales.GetByPaymentID(ctx, p.PaymentID)
	if err == nil && sale.PaymentStatus == domain.PaymentStatusCompleted {
		log.Info().Str("serial_id", sale.SerialID).Msg("duplicate callback for recorded sale")
		paymentCallbacksTotal.WithLabelValues("duplicate").Inc()
		return s.successRedirect(p.RedirectURL, sale.SerialID, sale.TrackID)
	}
	log.Warn().Msg("duplicate callback while original still in flight")
	paymentCallbacksTotal.WithLabelValues("duplicate").Inc()
	return s.failedRedirect(p.RedirectURL, reasonDuplicateCallback, p.PaymentID)
}

// acquireCallbackLock is best effort: when Redis is not deployed or down,
// the database uniqueness constraint still prevents double recording.
func (s *CheckoutService) acquireCallbackLock(ctx context.Context, paymentID string) bool {
	if s.locks == nil {
		return true
	}
	ok, err := s.locks.SetNX(ctx, "payment:callback:"+paymentID, 1, callbackLockTTL).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("callback lock unavailable, relying on db constraint")
		return true
	}
	return ok
}

// buildCallbackURL embeds the business context the gateway cannot carry for
// us, plus the HMAC the handler verifies on the way back.
func (s *CheckoutService) buildCallbackURL(gatewayName, trackID, redirectURL string) string {
	q := url.Values{}
	q.Set("trackId", trackID)
	if redirectURL != "" {
		q.Set("redirectUrl", redirectURL)
	}
	if s.cfg.CallbackSecret != "" {
		q.Set("sig", SignCallbackParams(s.cfg.CallbackSecret, trackID, redirectURL))
	}
	base := strings.TrimRight(s.cfg.CallbackBaseURL, "/")
	return fmt.Sprintf("%s/payments/%s/callback?%s", base, gatewayName, q.Encode())
}

// redirectBase picks the buyer-facing base URL: explicit target, then the
// configured portfolio, then the admin frontend, then localhost.
func (s *CheckoutService) redirectBase(redirectURL string) string {
	for _, base := range []string{redirectURL, s.cfg.PortfolioURL, s.cfg.AdminURL} {
		if base != "" {
			return strings.TrimRight(base, "/")
		}
	}
	return fallbackRedirectBase
}

func (s *CheckoutService) successRedirect(redirectURL, serialID, trackID string) CallbackRedirect {
	q := url.Values{}
	q.Set("orderId", serialID)
	q.Set("trackId", trackID)
	return CallbackRedirect{Location: s.redirectBase(redirectURL) + "/payment-success.html?" + q.Encode()}
}

func (s *CheckoutService) failedRedirect(redirectURL, reason, paymentID string) CallbackRedirect {
	q := url.Values{}
	q.Set("reason", reason)
	if paymentID != "" {
		q.Set("paymentID", paymentID)
	}
	return CallbackRedirect{Location: s.redirectBase(redirectURL) + "/payment-failed.html?" + q.Encode()}
}

func (s *CheckoutService) cancelRedirect(redirectURL string) CallbackRedirect {
	return CallbackRedirect{Location: s.redirectBase(redirectURL) + "/payment-cancel.html"}
}
