package email

import (
	"context"
	"log"

	"github.com/wrightlabs/marketplace/internal/events"
)

// Sender delivers an order confirmation. The real SMTP implementation lives
// outside this service; LogSender stands in for local development.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, ev events.OrderPaid) error
}

type LogSender struct {
	Logger *log.Logger
}

func (s *LogSender) SendOrderConfirmation(ctx context.Context, ev events.OrderPaid) error {
	s.Logger.Printf("order confirmation to %s for %s (%s %s, %d items)",
		ev.BuyerEmail, ev.OrderNumber, ev.TotalAmount.StringFixed(2), ev.Currency, len(ev.Items))
	return nil
}
