package payment

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	catalogDomain "github.com/trackhaus/trackhaus-backend/internal/modules/catalog/domain"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/application"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/infrastructure/bkash"
	persistence "github.com/trackhaus/trackhaus-backend/internal/modules/payment/infrastructure/persistence/postgres"
	paymentHttp "github.com/trackhaus/trackhaus-backend/internal/modules/payment/interfaces/http"
	"github.com/trackhaus/trackhaus-backend/internal/shared/infrastructure/config"
)

// Module wires the purchase lifecycle: gateway adapters, sale persistence
// and the checkout/refund orchestration behind one HTTP handler.
type Module struct {
	saleRepo domain.SaleRepository
	handler  *paymentHttp.PaymentHandler
}

// NewModule creates and initializes the Payment module. locks may be nil
// when Redis is not deployed.
func NewModule(
	db *sqlx.DB,
	locks *redis.Client,
	trackFinder catalogDomain.TrackFinder,
	statsUpdater catalogDomain.StatsUpdater,
	cfg config.Config,
	logger zerolog.Logger,
) *Module {
	gateways := application.Gateways{
		"bkash": bkash.NewClient(cfg.Bkash, logger),
	}

	saleRepo := persistence.NewSaleRepository(db, statsUpdater)

	checkout := application.NewCheckoutService(gateways, saleRepo, trackFinder, locks, cfg.Checkout, logger)
	refunds := application.NewRefundService(gateways, saleRepo, logger)
	sales := application.NewSalesService(saleRepo, trackFinder, logger)

	return &Module{
		saleRepo: saleRepo,
		handler:  paymentHttp.NewPaymentHandler(checkout, refunds, sales),
	}
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *paymentHttp.PaymentHandler {
	return m.handler
}

// SaleRepository exposes sale persistence to the reporting module.
func (m *Module) SaleRepository() domain.SaleRepository {
	return m.saleRepo
}
