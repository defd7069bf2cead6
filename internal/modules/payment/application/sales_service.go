package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	catalogDomain "github.com/trackhaus/trackhaus-backend/internal/modules/catalog/domain"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
)

// SalesService is the admin surface over sale records: manual creation
// (offline purchases) and listing. The gateway flow never goes through it.
type SalesService struct {
	sales  domain.SaleRepository
	tracks catalogDomain.TrackFinder
	logger zerolog.Logger
}

func NewSalesService(sales domain.SaleRepository, tracks catalogDomain.TrackFinder, logger zerolog.Logger) *SalesService {
	return &SalesService{
		sales:  sales,
		tracks: tracks,
		logger: logger.With().Str("component", "sales").Logger(),
	}
}

// CreateManualSale records a sale entered by an admin. This is the only
// path that may leave a sale in pending.
func (s *SalesService) CreateManualSale(ctx context.Context, in ManualSaleInput) (*domain.Sale, error) {
	if in.TrackID == "" {
		return nil, catalogDomain.ErrTrackNotFound
	}

	status := in.PaymentStatus
	if status == "" {
		status = domain.PaymentStatusPending
	}
	switch status {
	case domain.PaymentStatusPending, domain.PaymentStatusCompleted:
	default:
		return nil, domain.ErrInvalidStatus
	}

	track, err := s.tracks.GetByID(ctx, in.TrackID)
	if err != nil {
		return nil, err
	}

	method := in.PaymentMethod
	if method == "" {
		method = "manual"
	}

	sale := &domain.Sale{
		SerialID:      GenerateSerialID(time.Now()),
		TrackID:       track.ID,
		TrackTitle:    track.Title,
		Price:         track.Price,
		PaymentStatus: status,
		PaymentMethod: method,
	}
	if in.TransactionID != "" {
		sale.TransactionID = &in.TransactionID
	}

	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("serial_id", sale.SerialID).
		Str("track_id", sale.TrackID).
		Str("status", string(status)).
		Msg("manual sale created")
	return sale, nil
}

// ListSales pages through sale records, newest first.
func (s *SalesService) ListSales(ctx context.Context, page int) (*SaleListResponse, error) {
	limit := 20
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	sales, total, err := s.sales.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &SaleListResponse{Sales: sales, Total: total, Limit: limit, Offset: offset}, nil
}
