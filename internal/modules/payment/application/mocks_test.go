package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	catalogDomain "github.com/trackhaus/trackhaus-backend/internal/modules/catalog/domain"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
)

type saleRepoMock struct {
	mock.Mock
}

func (m *saleRepoMock) Create(ctx context.Context, sale *domain.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *saleRepoMock) CreateCompleted(ctx context.Context, sale *domain.Sale) (bool, error) {
	args := m.Called(ctx, sale)
	return args.Bool(0), args.Error(1)
}

func (m *saleRepoMock) MarkCompleted(ctx context.Context, serialID string) (*domain.Sale, error) {
	args := m.Called(ctx, serialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *saleRepoMock) MarkRefunded(ctx context.Context, transactionID string) (*domain.Sale, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *saleRepoMock) GetBySerialID(ctx context.Context, serialID string) (*domain.Sale, error) {
	args := m.Called(ctx, serialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *saleRepoMock) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Sale, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *saleRepoMock) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Sale, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *saleRepoMock) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *saleRepoMock) List(ctx context.Context, limit, offset int) ([]domain.Sale, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Sale), args.Int(1), args.Error(2)
}

type trackFinderMock struct {
	mock.Mock
}

func (m *trackFinderMock) GetByID(ctx context.Context, id string) (*catalogDomain.Track, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogDomain.Track), args.Error(1)
}

type gatewayMock struct {
	mock.Mock
}

func (m *gatewayMock) Name() string {
	return "bkash"
}

func (m *gatewayMock) CreatePayment(ctx context.Context, req domain.CreatePaymentRequest) (*domain.CreatePaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatePaymentResult), args.Error(1)
}

func (m *gatewayMock) ExecutePayment(ctx context.Context, paymentID string) (*domain.ExecutePaymentResult, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExecutePaymentResult), args.Error(1)
}

func (m *gatewayMock) QueryPayment(ctx context.Context, paymentID string) (*domain.QueryPaymentResult, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryPaymentResult), args.Error(1)
}

func (m *gatewayMock) RefundPayment(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundResult), args.Error(1)
}
