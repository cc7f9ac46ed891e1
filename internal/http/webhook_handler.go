package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wrightlabs/marketplace/internal/order"
	"github.com/wrightlabs/marketplace/internal/payfast"
	"github.com/wrightlabs/marketplace/internal/payment"
)

const maxNotificationBytes = 64 * 1024

type WebhookHandler struct {
	payments *payment.Service
}

func NewWebhookHandler(payments *payment.Service) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

// HandlePayFast accepts the gateway's server-to-server notification. The
// endpoint is unauthenticated; trust comes solely from the payload signature.
// The response is a plain-text acknowledgment so the gateway's retry policy
// can tell success from failure.
func (h *WebhookHandler) HandlePayFast(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
	if err != nil {
		writeText(w, http.StatusBadRequest, "Error: unreadable body")
		return
	}

	// the raw body is parsed directly because the signature is computed over
	// the pairs in wire order
	fields, err := payfast.ParseNotification(body)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Error: malformed notification")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.payments.ProcessNotification(ctx, fields); err != nil {
		switch {
		case errors.Is(err, payfast.ErrInvalidSignature):
			writeText(w, http.StatusBadRequest, "Invalid signature")
		case errors.Is(err, order.ErrOrderNotFound):
			writeText(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, order.ErrConflictingTransition):
			writeText(w, http.StatusConflict, "Conflicting notification")
		default:
			writeText(w, http.StatusInternalServerError, "Error: processing failed")
		}
		return
	}

	writeText(w, http.StatusOK, "Success")
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
