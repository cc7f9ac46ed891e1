package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wrightlabs/marketplace/internal/library"
	"github.com/wrightlabs/marketplace/internal/order"
)

type OrderHandler struct {
	orders  *order.Service
	library *library.Service
}

func NewOrderHandler(orders *order.Service, lib *library.Service) *OrderHandler {
	return &OrderHandler{orders: orders, library: lib}
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	if orderNumber == "" {
		writeError(w, http.StatusBadRequest, "missing orderNumber")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) ListOrdersByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.orders.ListByBuyer(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetLibrary lists the products the authenticated buyer owns, derived from
// their paid orders.
func (h *OrderHandler) GetLibrary(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())
	if id.UserID == "" {
		writeError(w, http.StatusUnauthorized, "missing required header: "+HeaderUserID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	products, err := h.library.Products(ctx, id.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load library")
		return
	}

	writeJSON(w, http.StatusOK, products)
}
