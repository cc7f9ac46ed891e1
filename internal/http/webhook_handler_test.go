package httpapi

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrightlabs/marketplace/internal/cart"
	"github.com/wrightlabs/marketplace/internal/catalog"
	"github.com/wrightlabs/marketplace/internal/config"
	"github.com/wrightlabs/marketplace/internal/fulfillment"
	"github.com/wrightlabs/marketplace/internal/order"
	"github.com/wrightlabs/marketplace/internal/payfast"
	"github.com/wrightlabs/marketplace/internal/payment"
)

const webhookPassphrase = "secret"

type stubOrderRepo struct {
	markPaid   func(ctx context.Context, orderNumber, providerRef string) (order.TransitionResult, error)
	markFailed func(ctx context.Context, orderNumber string) (order.TransitionResult, error)
}

func (s *stubOrderRepo) Create(ctx context.Context, o *order.Order) error { return nil }
func (s *stubOrderRepo) GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	return &order.Order{
		OrderNumber: orderNumber,
		CartID:      "cart-1",
		BuyerEmail:  "jane@example.com",
		TotalAmount: decimal.RequireFromString("350.00"),
		Status:      order.StatusPaid,
	}, nil
}
func (s *stubOrderRepo) ListByBuyer(ctx context.Context, buyerID string) ([]order.Order, error) {
	return nil, nil
}
func (s *stubOrderRepo) MarkPaid(ctx context.Context, orderNumber, providerRef string) (order.TransitionResult, error) {
	if s.markPaid != nil {
		return s.markPaid(ctx, orderNumber, providerRef)
	}
	return order.TransitionApplied, nil
}
func (s *stubOrderRepo) MarkFailed(ctx context.Context, orderNumber string) (order.TransitionResult, error) {
	if s.markFailed != nil {
		return s.markFailed(ctx, orderNumber)
	}
	return order.TransitionApplied, nil
}
func (s *stubOrderRepo) MarkRefunded(ctx context.Context, orderNumber string) (order.TransitionResult, error) {
	return order.TransitionApplied, nil
}

type stubProducts struct{}

func (stubProducts) GetByID(ctx context.Context, productID string) (*catalog.Product, error) {
	return nil, catalog.ErrProductNotFound
}
func (stubProducts) IncrementPurchases(ctx context.Context, productID string) error { return nil }

type stubCarts struct{}

func (stubCarts) GetByOwner(ctx context.Context, owner cart.Identity) (*cart.Cart, error) {
	return nil, nil
}
func (stubCarts) Create(ctx context.Context, c *cart.Cart) error { return nil }
func (stubCarts) AddItem(ctx context.Context, cartID, productID string) (*cart.Item, error) {
	return nil, nil
}
func (stubCarts) RemoveItem(ctx context.Context, itemID string) error          { return nil }
func (stubCarts) Lines(ctx context.Context, cartID string) ([]cart.Line, error) { return nil, nil }
func (stubCarts) Clear(ctx context.Context, cartID string) error               { return nil }
func (stubCarts) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type stubPublisher struct{}

func (stubPublisher) PublishOrderPaid(ctx context.Context, o *order.Order) error { return nil }

func newWebhookHandler(orders order.Repository) *WebhookHandler {
	logger := log.New(io.Discard, "", 0)
	adapter := payfast.NewAdapter(config.PayFast{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  webhookPassphrase,
	}, logger)
	trigger := fulfillment.NewTrigger(stubProducts{}, stubCarts{}, stubPublisher{}, logger)
	return NewWebhookHandler(payment.NewService(adapter, orders, trigger, logger))
}

func notificationBody(orderNumber, status string) string {
	fields := payfast.Fields{
		{Key: payfast.FieldPaymentID, Value: orderNumber},
		{Key: payfast.FieldPaymentStatus, Value: status},
		{Key: payfast.FieldProviderRef, Value: "1089250"},
	}
	sig := payfast.Sign(fields, webhookPassphrase)
	fields = append(fields, payfast.Field{Key: payfast.FieldSignature, Value: sig})
	return fields.Encode()
}

func postWebhook(t *testing.T, h *WebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/payfast", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandlePayFast(rec, req)
	return rec
}

func TestHandlePayFast_Success(t *testing.T) {
	h := newWebhookHandler(&stubOrderRepo{})

	rec := postWebhook(t, h, notificationBody("ORD-20250101-ABCDEF12", "COMPLETE"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success", rec.Body.String())
}

func TestHandlePayFast_InvalidSignature(t *testing.T) {
	h := newWebhookHandler(&stubOrderRepo{})

	body := notificationBody("ORD-20250101-ABCDEF12", "COMPLETE")
	tampered := strings.Replace(body, "COMPLETE", "COMPLETED", 1)

	rec := postWebhook(t, h, tampered)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid signature", rec.Body.String())
}

func TestHandlePayFast_EmptyBody(t *testing.T) {
	h := newWebhookHandler(&stubOrderRepo{})

	rec := postWebhook(t, h, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Error: malformed notification", rec.Body.String())
}

func TestHandlePayFast_UnknownOrder(t *testing.T) {
	h := newWebhookHandler(&stubOrderRepo{
		markPaid: func(ctx context.Context, orderNumber, providerRef string) (order.TransitionResult, error) {
			return 0, order.ErrOrderNotFound
		},
	})

	rec := postWebhook(t, h, notificationBody("ORD-missing", "COMPLETE"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", rec.Body.String())
}

func TestHandlePayFast_Conflict(t *testing.T) {
	h := newWebhookHandler(&stubOrderRepo{
		markFailed: func(ctx context.Context, orderNumber string) (order.TransitionResult, error) {
			return order.TransitionConflict, nil
		},
	})

	rec := postWebhook(t, h, notificationBody("ORD-20250101-ABCDEF12", "CANCELLED"))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Conflicting notification", rec.Body.String())
}
