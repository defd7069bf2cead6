package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogDomain "github.com/trackhaus/trackhaus-backend/internal/modules/catalog/domain"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/application"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
	"github.com/trackhaus/trackhaus-backend/internal/shared/infrastructure/config"
)

// Function-field stubs keep each test focused on the HTTP surface; the
// service logic itself is covered in the application package.

type trackFinderStub struct {
	getByID func(ctx context.Context, id string) (*catalogDomain.Track, error)
}

func (s *trackFinderStub) GetByID(ctx context.Context, id string) (*catalogDomain.Track, error) {
	return s.getByID(ctx, id)
}

type saleRepoStub struct {
	domain.SaleRepository

	create             func(ctx context.Context, sale *domain.Sale) error
	createCompleted    func(ctx context.Context, sale *domain.Sale) (bool, error)
	getByTransactionID func(ctx context.Context, trxID string) (*domain.Sale, error)
	getByPaymentID     func(ctx context.Context, paymentID string) (*domain.Sale, error)
	markRefunded       func(ctx context.Context, trxID string) (*domain.Sale, error)
	list               func(ctx context.Context, limit, offset int) ([]domain.Sale, int, error)
}

func (s *saleRepoStub) Create(ctx context.Context, sale *domain.Sale) error {
	return s.create(ctx, sale)
}

func (s *saleRepoStub) CreateCompleted(ctx context.Context, sale *domain.Sale) (bool, error) {
	return s.createCompleted(ctx, sale)
}

func (s *saleRepoStub) GetByTransactionID(ctx context.Context, trxID string) (*domain.Sale, error) {
	return s.getByTransactionID(ctx, trxID)
}

func (s *saleRepoStub) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Sale, error) {
	return s.getByPaymentID(ctx, paymentID)
}

func (s *saleRepoStub) MarkRefunded(ctx context.Context, trxID string) (*domain.Sale, error) {
	return s.markRefunded(ctx, trxID)
}

func (s *saleRepoStub) List(ctx context.Context, limit, offset int) ([]domain.Sale, int, error) {
	return s.list(ctx, limit, offset)
}

type gatewayStub struct {
	create  func(ctx context.Context, req domain.CreatePaymentRequest) (*domain.CreatePaymentResult, error)
	execute func(ctx context.Context, paymentID string) (*domain.ExecutePaymentResult, error)
	query   func(ctx context.Context, paymentID string) (*domain.QueryPaymentResult, error)
	refund  func(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error)
}

func (s *gatewayStub) Name() string { return "bkash" }

func (s *gatewayStub) CreatePayment(ctx context.Context, req domain.CreatePaymentRequest) (*domain.CreatePaymentResult, error) {
	return s.create(ctx, req)
}

func (s *gatewayStub) ExecutePayment(ctx context.Context, paymentID string) (*domain.ExecutePaymentResult, error) {
	return s.execute(ctx, paymentID)
}

func (s *gatewayStub) QueryPayment(ctx context.Context, paymentID string) (*domain.QueryPaymentResult, error) {
	return s.query(ctx, paymentID)
}

func (s *gatewayStub) RefundPayment(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	return s.refund(ctx, req)
}

func newHandler(gw domain.Gateway, sales domain.SaleRepository, tracks catalogDomain.TrackFinder) *PaymentHandler {
	gateways := application.Gateways{"bkash": gw}
	cfg := config.CheckoutConfig{CallbackBaseURL: "http://localhost:8080"}
	log := zerolog.Nop()
	return NewPaymentHandler(
		application.NewCheckoutService(gateways, sales, tracks, nil, cfg, log),
		application.NewRefundService(gateways, sales, log),
		application.NewSalesService(sales, tracks, log),
	)
}

func trackT1() *catalogDomain.Track {
	return &catalogDomain.Track{ID: "T1", Title: "Midnight Drive", Price: decimal.NewFromInt(500)}
}

func TestCreatePaymentEndpoint(t *testing.T) {
	gw := &gatewayStub{
		create: func(ctx context.Context, req domain.CreatePaymentRequest) (*domain.CreatePaymentResult, error) {
			return &domain.CreatePaymentResult{PaymentID: "TR1", RedirectURL: "https://gateway.example.com/checkout/TR1"}, nil
		},
	}
	tracks := &trackFinderStub{getByID: func(ctx context.Context, id string) (*catalogDomain.Track, error) {
		return trackT1(), nil
	}}
	handler := newHandler(gw, &saleRepoStub{}, tracks)

	req := httptest.NewRequest(http.MethodPost, "/payments/bkash/create", strings.NewReader(`{"trackId":"T1"}`))
	req.SetPathValue("gateway", "bkash")
	rec := httptest.NewRecorder()
	handler.CreatePayment(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TR1", resp["paymentID"])
	assert.Equal(t, "https://gateway.example.com/checkout/TR1", resp["paymentURL"])
	assert.Contains(t, resp["merchantInvoiceNumber"], "TRK-T1-")
}

func TestCreatePaymentEndpoint_InvalidBody(t *testing.T) {
	handler := newHandler(&gatewayStub{}, &saleRepoStub{}, &trackFinderStub{})

	req := httptest.NewRequest(http.MethodPost, "/payments/bkash/create", strings.NewReader(`{`))
	req.SetPathValue("gateway", "bkash")
	rec := httptest.NewRecorder()
	handler.CreatePayment(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePaymentEndpoint_UnknownGateway(t *testing.T) {
	handler := newHandler(&gatewayStub{}, &saleRepoStub{}, &trackFinderStub{})

	req := httptest.NewRequest(http.MethodPost, "/payments/stripe/create", strings.NewReader(`{"trackId":"T1"}`))
	req.SetPathValue("gateway", "stripe")
	rec := httptest.NewRecorder()
	handler.CreatePayment(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePaymentEndpoint_GatewayErrorPayload(t *testing.T) {
	gw := &gatewayStub{
		create: func(ctx context.Context, req domain.CreatePaymentRequest) (*domain.CreatePaymentResult, error) {
			return nil, &domain.GatewayError{Gateway: "bkash", Operation: "create payment", StatusCode: "2001", StatusMessage: "Invalid App Key"}
		},
	}
	tracks := &trackFinderStub{getByID: func(ctx context.Context, id string) (*catalogDomain.Track, error) {
		return trackT1(), nil
	}}
	handler := newHandler(gw, &saleRepoStub{}, tracks)

	req := httptest.NewRequest(http.MethodPost, "/payments/bkash/create", strings.NewReader(`{"trackId":"T1"}`))
	req.SetPathValue("gateway", "bkash")
	rec := httptest.NewRecorder()
	handler.CreatePayment(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2001", resp["statusCode"])
	assert.Equal(t, "Invalid App Key", resp["statusMessage"])
}

func TestCallbackEndpoint_RedirectsBrowser(t *testing.T) {
	gw := &gatewayStub{
		execute: func(ctx context.Context, paymentID string) (*domain.ExecutePaymentResult, error) {
			return &domain.ExecutePaymentResult{Success: true, TransactionID: "TRX99"}, nil
		},
	}
	sales := &saleRepoStub{
		createCompleted: func(ctx context.Context, sale *domain.Sale) (bool, error) { return true, nil },
	}
	tracks := &trackFinderStub{getByID: func(ctx context.Context, id string) (*catalogDomain.Track, error) {
		return trackT1(), nil
	}}
	handler := newHandler(gw, sales, tracks)

	req := httptest.NewRequest(http.MethodGet, "/payments/bkash/callback?paymentID=TR1&status=success&trackId=T1", nil)
	req.SetPathValue("gateway", "bkash")
	rec := httptest.NewRecorder()
	handler.Callback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "/payment-success.html?")
	assert.Contains(t, location, "trackId=T1")
}

func TestCallbackEndpoint_FailureStillRedirects(t *testing.T) {
	handler := newHandler(&gatewayStub{}, &saleRepoStub{}, &trackFinderStub{})

	req := httptest.NewRequest(http.MethodGet, "/payments/bkash/callback?status=success", nil)
	req.SetPathValue("gateway", "bkash")
	rec := httptest.NewRecorder()
	handler.Callback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "reason=missing-payment-id")
}

func TestCallbackPostEndpoint_BodyFieldsWin(t *testing.T) {
	var executed string
	gw := &gatewayStub{
		execute: func(ctx context.Context, paymentID string) (*domain.ExecutePaymentResult, error) {
			executed = paymentID
			return &domain.ExecutePaymentResult{Success: true, TransactionID: "TRX99"}, nil
		},
	}
	sales := &saleRepoStub{
		createCompleted: func(ctx context.Context, sale *domain.Sale) (bool, error) { return true, nil },
	}
	tracks := &trackFinderStub{getByID: func(ctx context.Context, id string) (*catalogDomain.Track, error) {
		return trackT1(), nil
	}}
	handler := newHandler(gw, sales, tracks)

	req := httptest.NewRequest(http.MethodPost,
		"/payments/bkash/callback?paymentID=QUERY&status=success&trackId=T1",
		strings.NewReader(`{"paymentID":"BODY"}`))
	req.SetPathValue("gateway", "bkash")
	rec := httptest.NewRecorder()
	handler.CallbackPost(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "BODY", executed)
}

func TestRefundEndpoint_Validation(t *testing.T) {
	handler := newHandler(&gatewayStub{}, &saleRepoStub{}, &trackFinderStub{})

	req := httptest.NewRequest(http.MethodPost, "/payments/bkash/refund", strings.NewReader(`{"trxID":"TRX99","amount":500}`))
	req.SetPathValue("gateway", "bkash")
	rec := httptest.NewRecorder()
	handler.Refund(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrMissingPaymentID.Error())
}

func TestRefundEndpoint_Success(t *testing.T) {
	trxID := "TRX99"
	gw := &gatewayStub{
		refund: func(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
			return &domain.RefundResult{RefundID: "RF1", Success: true}, nil
		},
	}
	sales := &saleRepoStub{
		getByTransactionID: func(ctx context.Context, id string) (*domain.Sale, error) {
			return &domain.Sale{SerialID: "ORDER-20260101-AAAAAA", PaymentStatus: domain.PaymentStatusCompleted, TransactionID: &trxID}, nil
		},
		markRefunded: func(ctx context.Context, id string) (*domain.Sale, error) {
			return &domain.Sale{PaymentStatus: domain.PaymentStatusRefunded}, nil
		},
	}
	handler := newHandler(gw, sales, &trackFinderStub{})

	req := httptest.NewRequest(http.MethodPost, "/payments/bkash/refund",
		strings.NewReader(`{"paymentID":"TR1","trxID":"TRX99","amount":500}`))
	req.SetPathValue("gateway", "bkash")
	rec := httptest.NewRecorder()
	handler.Refund(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"refundID":"RF1"`)
}

func TestCreateSaleEndpoint(t *testing.T) {
	sales := &saleRepoStub{
		create: func(ctx context.Context, sale *domain.Sale) error { return nil },
	}
	tracks := &trackFinderStub{getByID: func(ctx context.Context, id string) (*catalogDomain.Track, error) {
		return trackT1(), nil
	}}
	handler := newHandler(&gatewayStub{}, sales, tracks)

	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{"trackId":"T1"}`))
	rec := httptest.NewRecorder()
	handler.CreateSale(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"payment_status":"pending"`)
}

func TestListSalesEndpoint_PageParam(t *testing.T) {
	var gotLimit, gotOffset int
	sales := &saleRepoStub{
		list: func(ctx context.Context, limit, offset int) ([]domain.Sale, int, error) {
			gotLimit, gotOffset = limit, offset
			return []domain.Sale{}, 0, nil
		},
	}
	handler := newHandler(&gatewayStub{}, sales, &trackFinderStub{})

	req := httptest.NewRequest(http.MethodGet, "/sales?page=3", nil)
	rec := httptest.NewRecorder()
	handler.ListSales(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 40, gotOffset)
}

func TestStatusEndpoint(t *testing.T) {
	gw := &gatewayStub{
		query: func(ctx context.Context, paymentID string) (*domain.QueryPaymentResult, error) {
			return &domain.QueryPaymentResult{PaymentID: paymentID, Status: "Completed", TransactionID: "TRX99"}, nil
		},
	}
	sales := &saleRepoStub{
		getByTransactionID: func(ctx context.Context, id string) (*domain.Sale, error) {
			return &domain.Sale{SerialID: "ORDER-20260101-AAAAAA", PaymentStatus: domain.PaymentStatusCompleted}, nil
		},
	}
	handler := newHandler(gw, sales, &trackFinderStub{})

	req := httptest.NewRequest(http.MethodGet, "/payments/bkash/status/TR1", nil)
	req.SetPathValue("gateway", "bkash")
	req.SetPathValue("paymentID", "TR1")
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"gatewayStatus":"Completed"`)
	assert.Contains(t, rec.Body.String(), `"saleStatus":"completed"`)
}
