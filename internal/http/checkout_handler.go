package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wrightlabs/marketplace/internal/cart"
	"github.com/wrightlabs/marketplace/internal/order"
	"github.com/wrightlabs/marketplace/internal/payfast"
)

type CheckoutHandler struct {
	carts   *cart.Service
	orders  *order.Service
	adapter *payfast.Adapter
}

func NewCheckoutHandler(carts *cart.Service, orders *order.Service, adapter *payfast.Adapter) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, orders: orders, adapter: adapter}
}

type checkoutResponse struct {
	Order      *order.Order   `json:"order"`
	PaymentURL string         `json:"paymentUrl"`
	Fields     payfast.Fields `json:"fields"`
}

// Checkout converts the caller's cart into a PENDING order and returns the
// signed redirect form for the gateway. The web layer renders the fields as
// an auto-submitting form; their order must be preserved.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.carts.Resolve(ctx, id.CartOwner())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	buyer := order.Buyer{ID: id.UserID, Email: id.Email, Name: id.Name}
	o, err := h.orders.CreateFromCart(ctx, c, buyer)
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			writeError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{
		Order:      o,
		PaymentURL: h.adapter.PaymentURL(),
		Fields:     h.adapter.PaymentData(o),
	})
}

// Success is the browser return page. It is advisory only: the webhook is
// the source of truth, so the order may legitimately still be PENDING when
// the buyer lands here.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"message": "Thank you for your purchase! You will receive a confirmation email shortly.",
	}

	if orderNumber := r.URL.Query().Get(payfast.FieldPaymentID); orderNumber != "" {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		o, err := h.orders.GetByNumber(ctx, orderNumber)
		if err == nil {
			resp["order"] = o
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Payment was cancelled. You can try again from your cart.",
	})
}
