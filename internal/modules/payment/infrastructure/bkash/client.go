// Package bkash implements the tokenized-checkout gateway contract against
// the bKash API: an id token is granted from app credentials, then payments
// are created, executed on the browser callback, queried and refunded.
package bkash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
	"github.com/trackhaus/trackhaus-backend/internal/shared/infrastructure/config"
)

// SuccessStatusCode is the gateway's status code for a successful operation.
const SuccessStatusCode = "0000"

// ErrMissingCredentials is returned before any network call when the
// gateway credentials were not configured.
var ErrMissingCredentials = fmt.Errorf("bkash credentials are not configured")

// Client talks to the bKash tokenized checkout API. It caches the granted
// id token and refreshes it shortly before expiry.
type Client struct {
	cfg    config.BkashConfig
	http   *http.Client
	logger zerolog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg config.BkashConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger.With().Str("gateway", "bkash").Logger(),
	}
}

func (c *Client) Name() string { return "bkash" }

type grantTokenRequest struct {
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
}

type grantTokenResponse struct {
	IDToken       string `json:"id_token"`
	TokenType     string `json:"token_type"`
	ExpiresIn     int    `json:"expires_in"`
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

type createRequest struct {
	Mode                  string `json:"mode"`
	PayerReference        string `json:"payerReference"`
	CallbackURL           string `json:"callbackURL"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	Intent                string `json:"intent"`
	MerchantInvoiceNumber string `json:"merchantInvoiceNumber"`
}

type createResponse struct {
	PaymentID     string `json:"paymentID"`
	BkashURL      string `json:"bkashURL"`
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

type executeResponse struct {
	PaymentID         string `json:"paymentID"`
	TrxID             string `json:"trxID"`
	TransactionStatus string `json:"transactionStatus"`
	StatusCode        string `json:"statusCode"`
	StatusMessage     string `json:"statusMessage"`
}

type queryResponse struct {
	PaymentID         string `json:"paymentID"`
	TrxID             string `json:"trxID"`
	TransactionStatus string `json:"transactionStatus"`
	Amount            string `json:"amount"`
	StatusCode        string `json:"statusCode"`
	StatusMessage     string `json:"statusMessage"`
}

type refundRequest struct {
	PaymentID string `json:"paymentID"`
	Amount    string `json:"amount"`
	TrxID     string `json:"trxID"`
	SKU       string `json:"sku"`
	Reason    string `json:"reason"`
}

type refundResponse struct {
	RefundTrxID       string `json:"refundTrxID"`
	TransactionStatus string `json:"transactionStatus"`
	StatusCode        string `json:"statusCode"`
	StatusMessage     string `json:"statusMessage"`
}

// CreatePayment opens a checkout session and returns the hosted payment URL
// the buyer's browser is sent to.
func (c *Client) CreatePayment(ctx context.Context, req domain.CreatePaymentRequest) (*domain.CreatePaymentResult, error) {
	intent := req.Intent
	if intent == "" {
		intent = "sale"
	}
	payload := createRequest{
		Mode:                  "0011",
		PayerReference:        " ",
		CallbackURL:           req.CallbackURL,
		Amount:                req.Amount.StringFixed(2),
		Currency:              "BDT",
		Intent:                intent,
		MerchantInvoiceNumber: req.InvoiceRef,
	}

	var resp createResponse
	if err := c.post(ctx, "create payment", "/tokenized/checkout/create", payload, &resp); err != nil {
		return nil, err
	}
	if resp.StatusCode != SuccessStatusCode {
		return nil, &domain.GatewayError{Gateway: "bkash", Operation: "create payment", StatusCode: resp.StatusCode, StatusMessage: resp.StatusMessage}
	}

	return &domain.CreatePaymentResult{
		PaymentID:   resp.PaymentID,
		RedirectURL: resp.BkashURL,
	}, nil
}

// ExecutePayment finalizes a created payment. Business failure is part of
// the result rather than an error: the callback path branches on it.
func (c *Client) ExecutePayment(ctx context.Context, paymentID string) (*domain.ExecutePaymentResult, error) {
	payload := map[string]string{"paymentID": paymentID}

	var resp executeResponse
	if err := c.post(ctx, "execute payment", "/tokenized/checkout/execute", payload, &resp); err != nil {
		return nil, err
	}

	return &domain.ExecutePaymentResult{
		Success:       resp.StatusCode == SuccessStatusCode,
		TransactionID: resp.TrxID,
		Status:        resp.TransactionStatus,
		StatusMessage: resp.StatusMessage,
	}, nil
}

// QueryPayment reads the gateway's view of a payment. Side-effect free.
func (c *Client) QueryPayment(ctx context.Context, paymentID string) (*domain.QueryPaymentResult, error) {
	payload := map[string]string{"paymentID": paymentID}

	var resp queryResponse
	if err := c.post(ctx, "query payment", "/tokenized/checkout/payment/status", payload, &resp); err != nil {
		return nil, err
	}
	if resp.StatusCode != SuccessStatusCode {
		return nil, &domain.GatewayError{Gateway: "bkash", Operation: "query payment", StatusCode: resp.StatusCode, StatusMessage: resp.StatusMessage}
	}

	return &domain.QueryPaymentResult{
		PaymentID:     resp.PaymentID,
		Status:        resp.TransactionStatus,
		TransactionID: resp.TrxID,
		Amount:        resp.Amount,
	}, nil
}

// RefundPayment reverses an executed payment against its transaction id.
func (c *Client) RefundPayment(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	payload := refundRequest{
		PaymentID: req.PaymentID,
		Amount:    req.Amount.StringFixed(2),
		TrxID:     req.TransactionID,
		SKU:       "track",
		Reason:    req.Reason,
	}

	var resp refundResponse
	if err := c.post(ctx, "refund payment", "/tokenized/checkout/payment/refund", payload, &resp); err != nil {
		return nil, err
	}
	if resp.StatusCode != SuccessStatusCode {
		return nil, &domain.GatewayError{Gateway: "bkash", Operation: "refund payment", StatusCode: resp.StatusCode, StatusMessage: resp.StatusMessage}
	}

	return &domain.RefundResult{
		RefundID: resp.RefundTrxID,
		Success:  true,
		Status:   resp.TransactionStatus,
	}, nil
}

// grantToken exchanges the app credentials for an id token, reusing the
// cached one until shortly before it expires.
func (c *Client) grantToken(ctx context.Context) (string, error) {
	if c.cfg.AppKey == "" || c.cfg.AppSecret == "" || c.cfg.Username == "" || c.cfg.Password == "" {
		return "", ErrMissingCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(grantTokenRequest{AppKey: c.cfg.AppKey, AppSecret: c.cfg.AppSecret})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/tokenized/checkout/token/grant", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("username", c.cfg.Username)
	httpReq.Header.Set("password", c.cfg.Password)

	var resp grantTokenResponse
	if err := c.do(httpReq, "grant token", &resp); err != nil {
		return "", err
	}
	if resp.IDToken == "" {
		return "", &domain.GatewayError{Gateway: "bkash", Operation: "grant token", StatusCode: resp.StatusCode, StatusMessage: resp.StatusMessage}
	}

	c.token = resp.IDToken
	// Refresh one minute early so in-flight calls never race expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(resp.ExpiresIn)*time.Second - time.Minute)

	c.logger.Debug().Msg("gateway token granted")
	return c.token, nil
}

// post sends an authorized JSON request and decodes the response into out.
func (c *Client) post(ctx context.Context, operation, path string, payload any, out any) error {
	token, err := c.grantToken(ctx)
	if err != nil {
		return fmt.Errorf("bkash %s: %w", operation, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bkash %s: %w", operation, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bkash %s: %w", operation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", token)
	httpReq.Header.Set("X-APP-Key", c.cfg.AppKey)

	return c.do(httpReq, operation, out)
}

func (c *Client) do(req *http.Request, operation string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bkash %s: %w", operation, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("bkash %s: %w", operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.GatewayError{
			Gateway:       "bkash",
			Operation:     operation,
			StatusCode:    fmt.Sprintf("http-%d", resp.StatusCode),
			StatusMessage: string(data),
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("bkash %s: decode response: %w", operation, err)
	}
	return nil
}
