package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wrightlabs/marketplace/internal/cart"
)

var ErrEmptyCart = errors.New("cart is empty")

const paymentProvider = "PayFast"

// Service is the order factory: it turns a cart into an immutable order with
// per-item revenue split snapshots.
type Service struct {
	repo           Repository
	carts          cart.Repository
	commissionRate decimal.Decimal
	logger         *log.Logger
}

func NewService(repo Repository, carts cart.Repository, commissionRate decimal.Decimal, logger *log.Logger) *Service {
	return &Service{
		repo:           repo,
		carts:          carts,
		commissionRate: commissionRate,
		logger:         logger,
	}
}

// CreateFromCart snapshots the cart's live prices and titles into a new
// PENDING order. The cart itself is left untouched; it is cleared only once
// payment is confirmed, so an abandoned payment does not lose the cart.
func (s *Service) CreateFromCart(ctx context.Context, c *cart.Cart, buyer Buyer) (*Order, error) {
	lines, err := s.carts.Lines(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	if buyer.Email == "" {
		buyer.Email = "guest@example.com"
	}
	if buyer.Name == "" {
		buyer.Name = "Guest"
	}

	now := time.Now().UTC()
	o := &Order{
		OrderNumber:     NewOrderNumber(now),
		CartID:          c.ID,
		BuyerID:         buyer.ID,
		BuyerEmail:      buyer.Email,
		BuyerName:       buyer.Name,
		Currency:        "ZAR",
		Status:          StatusPending,
		PaymentProvider: paymentProvider,
		CreatedAt:       now,
	}

	total := decimal.Zero
	for _, l := range lines {
		fee, sellerAmount := Split(l.Price, s.commissionRate)
		o.Items = append(o.Items, Item{
			ProductID:    l.ProductID,
			SellerID:     l.SellerID,
			ProductTitle: l.Title,
			Price:        l.Price,
			PlatformFee:  fee,
			SellerAmount: sellerAmount,
			Quantity:     1,
		})
		total = total.Add(l.Price)
	}
	o.TotalAmount = total

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Printf("created order %s (%s %s) for buyer %s",
		o.OrderNumber, o.TotalAmount.StringFixed(2), o.Currency, o.BuyerEmail)
	return o, nil
}

// Split divides a price into the platform fee and the seller payout. The fee
// is rounded half-up to 2 decimals and the payout is the exact remainder, so
// fee + payout always equals the price.
func Split(price, rate decimal.Decimal) (fee, sellerAmount decimal.Decimal) {
	fee = price.Mul(rate).Round(2)
	sellerAmount = price.Sub(fee)
	return fee, sellerAmount
}

// GetByNumber returns the order or ErrOrderNotFound.
func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return s.repo.GetByNumber(ctx, orderNumber)
}

// ListByBuyer returns the buyer's orders, newest first.
func (s *Service) ListByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	return s.repo.ListByBuyer(ctx, buyerID)
}
