package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(carts *CartHandler, checkout *CheckoutHandler, orders *OrderHandler, webhook *WebhookHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(WithIdentity)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cart", carts.GetCart)
		r.Post("/cart/items", carts.AddItem)
		r.Delete("/cart/items/{itemId}", carts.RemoveItem)

		r.Post("/checkout", checkout.Checkout)
		r.Get("/checkout/success", checkout.Success)
		r.Get("/checkout/cancel", checkout.Cancel)

		r.Get("/orders/{orderNumber}", orders.GetOrder)
		r.Get("/users/{userId}/orders", orders.ListOrdersByUser)
		r.Get("/library", orders.GetLibrary)
	})

	// unauthenticated; trust comes from the payload signature
	r.Post("/webhook/payfast", webhook.HandlePayFast)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "marketplace",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
