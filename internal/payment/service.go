package payment

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/wrightlabs/marketplace/internal/fulfillment"
	"github.com/wrightlabs/marketplace/internal/order"
	"github.com/wrightlabs/marketplace/internal/payfast"
)

// Service reconciles gateway webhook notifications into authoritative order
// state. ProcessNotification is safe under at-least-once, out-of-order and
// concurrent delivery: the conditional update in the order repository lets
// exactly one delivery win the PENDING -> PAID transition.
type Service struct {
	adapter *payfast.Adapter
	orders  order.Repository
	fulfill *fulfillment.Trigger
	logger  *log.Logger
}

func NewService(adapter *payfast.Adapter, orders order.Repository, fulfill *fulfillment.Trigger, logger *log.Logger) *Service {
	return &Service{adapter: adapter, orders: orders, fulfill: fulfill, logger: logger}
}

// ProcessNotification validates and applies one webhook payload.
//
// Invalid signatures are rejected before any state is touched. A replayed
// notification for an order already in the same terminal status is a no-op
// success; a contradictory notification (FAILED after PAID or vice versa) is
// rejected and logged for manual investigation, never silently overwritten.
func (s *Service) ProcessNotification(ctx context.Context, fields payfast.Fields) error {
	if !s.adapter.ValidateSignature(fields) {
		// security event: either a forged payload or a misconfigured passphrase
		s.logger.Printf("SECURITY rejected webhook with invalid signature (m_payment_id=%q)",
			fields.Get(payfast.FieldPaymentID))
		return payfast.ErrInvalidSignature
	}

	orderNumber := fields.Get(payfast.FieldPaymentID)
	status := fields.Get(payfast.FieldPaymentStatus)
	providerRef := fields.Get(payfast.FieldProviderRef)

	s.logger.Printf("processing notification for order %s, status %s", orderNumber, status)

	if strings.EqualFold(status, payfast.StatusComplete) {
		return s.confirm(ctx, orderNumber, providerRef)
	}
	return s.fail(ctx, orderNumber, status)
}

func (s *Service) confirm(ctx context.Context, orderNumber, providerRef string) error {
	res, err := s.orders.MarkPaid(ctx, orderNumber, providerRef)
	if err != nil {
		return err
	}

	switch res {
	case order.TransitionApplied:
		o, err := s.orders.GetByNumber(ctx, orderNumber)
		if err != nil {
			// the transition stands; fulfillment is best-effort on top of it
			s.logger.Printf("order %s marked PAID but reload failed: %v", orderNumber, err)
			return nil
		}
		s.fulfill.OrderPaid(ctx, o)
		s.logger.Printf("order %s marked as PAID", orderNumber)
		return nil
	case order.TransitionAlreadyApplied:
		s.logger.Printf("order %s already PAID, replayed notification ignored", orderNumber)
		return nil
	default:
		s.logger.Printf("order %s: PAID notification conflicts with terminal status", orderNumber)
		return fmt.Errorf("order %s: %w", orderNumber, order.ErrConflictingTransition)
	}
}

func (s *Service) fail(ctx context.Context, orderNumber, gatewayStatus string) error {
	res, err := s.orders.MarkFailed(ctx, orderNumber)
	if err != nil {
		return err
	}

	switch res {
	case order.TransitionApplied:
		s.logger.Printf("order %s payment failed or was cancelled (status %q)", orderNumber, gatewayStatus)
		return nil
	case order.TransitionAlreadyApplied:
		s.logger.Printf("order %s already FAILED, replayed notification ignored", orderNumber)
		return nil
	default:
		s.logger.Printf("order %s: FAILED notification conflicts with terminal status", orderNumber)
		return fmt.Errorf("order %s: %w", orderNumber, order.ErrConflictingTransition)
	}
}
