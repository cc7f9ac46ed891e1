package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/wrightlabs/marketplace/internal/cart"
	"github.com/wrightlabs/marketplace/internal/catalog"
)

type CartHandler struct {
	carts *cart.Service
}

func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartResponse struct {
	Cart  *cart.Cart      `json:"cart"`
	Lines []cart.Line     `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.carts.Resolve(ctx, id.CartOwner())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	h.respondCart(ctx, w, c)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())

	var body struct {
		ProductID string `json:"productId"`
	}
	if err := decodeJSON(r, &body); err != nil || body.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid json: productId required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.carts.Add(ctx, id.CartOwner(), body.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, cart.ErrDuplicateItem):
			writeError(w, http.StatusConflict, "product already in cart")
		default:
			writeError(w, http.StatusInternalServerError, "failed to add item")
		}
		return
	}

	h.respondCart(ctx, w, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "missing itemId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.carts.Remove(ctx, itemID); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "cart item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *CartHandler) respondCart(ctx context.Context, w http.ResponseWriter, c *cart.Cart) {
	lines, err := h.carts.Lines(ctx, c)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart lines")
		return
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price)
	}

	// let anonymous clients persist their session key
	if c.SessionID != "" {
		w.Header().Set(HeaderSessionID, c.SessionID)
	}

	writeJSON(w, http.StatusOK, cartResponse{Cart: c, Lines: lines, Total: total})
}
