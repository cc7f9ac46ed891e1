package fulfillment

import (
	"context"
	"log"

	"github.com/wrightlabs/marketplace/internal/cart"
	"github.com/wrightlabs/marketplace/internal/catalog"
	"github.com/wrightlabs/marketplace/internal/order"
)

// Publisher hands the paid order to the email collaborator.
type Publisher interface {
	PublishOrderPaid(ctx context.Context, o *order.Order) error
}

// Trigger runs the side effects of a confirmed payment. Everything here is
// best-effort: the order is already PAID and its status must never depend on
// a counter increment or a confirmation email going through.
type Trigger struct {
	products catalog.Repository
	carts    cart.Repository
	events   Publisher
	logger   *log.Logger
}

func NewTrigger(products catalog.Repository, carts cart.Repository, events Publisher, logger *log.Logger) *Trigger {
	return &Trigger{products: products, carts: carts, events: events, logger: logger}
}

// OrderPaid increments purchase counters, clears the originating cart and
// emits the confirmation-email event. Callers invoke it exactly once, on the
// winning PENDING -> PAID transition.
func (t *Trigger) OrderPaid(ctx context.Context, o *order.Order) {
	for _, it := range o.Items {
		if it.ProductID == "" {
			continue
		}
		if err := t.products.IncrementPurchases(ctx, it.ProductID); err != nil {
			t.logger.Printf("order %s: increment purchases for product %s failed: %v",
				o.OrderNumber, it.ProductID, err)
		}
	}

	if o.CartID != "" {
		if err := t.carts.Clear(ctx, o.CartID); err != nil {
			t.logger.Printf("order %s: clear cart %s failed: %v", o.OrderNumber, o.CartID, err)
		}
	}

	if err := t.events.PublishOrderPaid(ctx, o); err != nil {
		t.logger.Printf("order %s: publish order.paid failed: %v", o.OrderNumber, err)
	}
}
