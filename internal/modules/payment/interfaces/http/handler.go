package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	catalogDomain "github.com/trackhaus/trackhaus-backend/internal/modules/catalog/domain"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/application"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
)

type PaymentHandler struct {
	checkout *application.CheckoutService
	refunds  *application.RefundService
	sales    *application.SalesService
}

func NewPaymentHandler(
	checkout *application.CheckoutService,
	refunds *application.RefundService,
	sales *application.SalesService,
) *PaymentHandler {
	return &PaymentHandler{checkout: checkout, refunds: refunds, sales: sales}
}

// CreatePayment handles POST /payments/{gateway}/create
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req application.CreatePaymentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.checkout.CreatePayment(r.Context(), r.PathValue("gateway"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Callback handles GET /payments/{gateway}/callback. The caller is the
// buyer's browser mid-redirect, so the answer is always a 302, never JSON.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := application.CallbackParams{
		PaymentID:   q.Get("paymentID"),
		Status:      q.Get("status"),
		TrackID:     q.Get("trackId"),
		RedirectURL: q.Get("redirectUrl"),
		OrderID:     q.Get("orderId"),
		Signature:   q.Get("sig"),
	}

	redirect := h.checkout.HandleCallback(r.Context(), r.PathValue("gateway"), params)
	http.Redirect(w, r, redirect.Location, http.StatusFound)
}

// CallbackPost handles POST /payments/{gateway}/callback: a compatibility
// shim for gateways that POST their webhook instead of redirecting. Body
// fields win; query parameters fill the gaps.
func (h *PaymentHandler) CallbackPost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PaymentID   string `json:"paymentID"`
		Status      string `json:"status"`
		TrackID     string `json:"trackId"`
		RedirectURL string `json:"redirectUrl"`
		OrderID     string `json:"orderId"`
		Signature   string `json:"sig"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	q := r.URL.Query()
	params := application.CallbackParams{
		PaymentID:   firstNonEmpty(body.PaymentID, q.Get("paymentID")),
		Status:      firstNonEmpty(body.Status, q.Get("status")),
		TrackID:     firstNonEmpty(body.TrackID, q.Get("trackId")),
		RedirectURL: firstNonEmpty(body.RedirectURL, q.Get("redirectUrl")),
		OrderID:     firstNonEmpty(body.OrderID, q.Get("orderId")),
		Signature:   firstNonEmpty(body.Signature, q.Get("sig")),
	}

	redirect := h.checkout.HandleCallback(r.Context(), r.PathValue("gateway"), params)
	http.Redirect(w, r, redirect.Location, http.StatusFound)
}

// Status handles GET /payments/{gateway}/status/{paymentID}
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp, err := h.checkout.QueryStatus(r.Context(), r.PathValue("gateway"), r.PathValue("paymentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Refund handles POST /payments/{gateway}/refund (admin only)
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req application.RefundInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.refunds.Refund(r.Context(), r.PathValue("gateway"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateSale handles POST /sales (admin only, manual entry)
func (h *PaymentHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req application.ManualSaleInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.sales.CreateManualSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

// ListSales handles GET /sales (admin only)
func (h *PaymentHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	resp, err := h.sales.ListSales(r.Context(), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors onto the JSON API surface. Gateway
// rejections keep their status payload; everything unexpected degrades to a
// generic 500 so internals never leak.
func writeServiceError(w http.ResponseWriter, err error) {
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":         gwErr.Error(),
			"statusCode":    gwErr.StatusCode,
			"statusMessage": gwErr.StatusMessage,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnknownGateway):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalogDomain.ErrTrackNotFound),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrMissingPaymentID),
		errors.Is(err, domain.ErrMissingTrxID),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrSaleNotFound),
		errors.Is(err, domain.ErrSaleNotCompleted):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
