package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trackhaus/trackhaus-backend/internal/gateway/middleware"
	payment_http "github.com/trackhaus/trackhaus-backend/internal/modules/payment/interfaces/http"
	reporting_http "github.com/trackhaus/trackhaus-backend/internal/modules/reporting/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthMiddleware   *middleware.AuthMiddleware
	PaymentHandler   *payment_http.PaymentHandler
	ReportingHandler *reporting_http.ReportingHandler
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Health Check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Checkout Routes. The callback is hit by the buyer's browser on the
	// gateway's redirect; it must stay unauthenticated.
	mux.HandleFunc("POST /payments/{gateway}/create", config.PaymentHandler.CreatePayment)
	mux.HandleFunc("GET /payments/{gateway}/callback", config.PaymentHandler.Callback)
	mux.HandleFunc("POST /payments/{gateway}/callback", config.PaymentHandler.CallbackPost)
	mux.HandleFunc("GET /payments/{gateway}/status/{paymentID}", config.PaymentHandler.Status)

	// Privileged Routes
	mux.Handle("POST /payments/{gateway}/refund", config.AuthMiddleware.RequireAdmin(http.HandlerFunc(config.PaymentHandler.Refund)))
	mux.Handle("POST /sales", config.AuthMiddleware.RequireAdmin(http.HandlerFunc(config.PaymentHandler.CreateSale)))
	mux.Handle("GET /sales", config.AuthMiddleware.RequireAdmin(http.HandlerFunc(config.PaymentHandler.ListSales)))
	mux.Handle("GET /reports/earnings", config.AuthMiddleware.RequireAdmin(http.HandlerFunc(config.ReportingHandler.Earnings)))

	return mux
}
