package application

import (
	"context"

	"github.com/shopspring/decimal"
	paymentApp "github.com/trackhaus/trackhaus-backend/internal/modules/payment/application"
	paymentDomain "github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
)

// SaleEarnings pairs a sale with its profit-distribution breakdown.
type SaleEarnings struct {
	SerialID   string                       `json:"serial_id"`
	TrackID    string                       `json:"track_id"`
	TrackTitle string                       `json:"track_title"`
	Price      decimal.Decimal              `json:"price"`
	Status     paymentDomain.PaymentStatus  `json:"status"`
	Breakdown  *paymentApp.Distribution     `json:"breakdown"`
}

// EarningsReport aggregates the per-sale breakdowns for the admin panel.
type EarningsReport struct {
	Sales         []SaleEarnings  `json:"sales"`
	Total         int             `json:"total"`
	PlatformTotal decimal.Decimal `json:"platform_total"`
	ArtistTotal   decimal.Decimal `json:"artist_total"`
	ProducerTotal decimal.Decimal `json:"producer_total"`
}

// ReportingService derives earnings figures from sale records. Read-only.
type ReportingService struct {
	sales paymentDomain.SaleRepository
	rules *paymentApp.DistributionRules
}

// NewReportingService builds the service; rules nil means the default split.
func NewReportingService(sales paymentDomain.SaleRepository, rules *paymentApp.DistributionRules) *ReportingService {
	return &ReportingService{sales: sales, rules: rules}
}

// Earnings pages through sales and attaches each one's distribution.
// Non-completed sales contribute a zero breakdown tagged pending.
func (s *ReportingService) Earnings(ctx context.Context, page int) (*EarningsReport, error) {
	limit := 50
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	sales, total, err := s.sales.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	report := &EarningsReport{
		Sales:         make([]SaleEarnings, 0, len(sales)),
		Total:         total,
		PlatformTotal: decimal.Zero,
		ArtistTotal:   decimal.Zero,
		ProducerTotal: decimal.Zero,
	}

	for i := range sales {
		sale := &sales[i]
		breakdown, err := paymentApp.DistributeSale(sale, s.rules)
		if err != nil {
			return nil, err
		}

		report.Sales = append(report.Sales, SaleEarnings{
			SerialID:   sale.SerialID,
			TrackID:    sale.TrackID,
			TrackTitle: sale.TrackTitle,
			Price:      sale.Price,
			Status:     sale.PaymentStatus,
			Breakdown:  breakdown,
		})

		if sale.PaymentStatus == paymentDomain.PaymentStatusCompleted {
			report.PlatformTotal = report.PlatformTotal.Add(breakdown.PlatformFee)
			report.ArtistTotal = report.ArtistTotal.Add(breakdown.ArtistShare)
			report.ProducerTotal = report.ProducerTotal.Add(breakdown.ProducerShare)
		}
	}

	return report, nil
}
