package reporting

import (
	paymentDomain "github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
	"github.com/trackhaus/trackhaus-backend/internal/modules/reporting/application"
	reportingHttp "github.com/trackhaus/trackhaus-backend/internal/modules/reporting/interfaces/http"
)

// Module exposes earnings reporting over recorded sales.
type Module struct {
	handler *reportingHttp.ReportingHandler
}

// NewModule creates and initializes the Reporting module
func NewModule(sales paymentDomain.SaleRepository) *Module {
	service := application.NewReportingService(sales, nil)
	return &Module{handler: reportingHttp.NewReportingHandler(service)}
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *reportingHttp.ReportingHandler {
	return m.handler
}
