package cart

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wrightlabs/marketplace/internal/catalog"
)

// TTL is how long an untouched cart lives before the sweeper removes it.
const TTL = 30 * 24 * time.Hour

// Service resolves and mutates carts. Prices returned here are live catalog
// reads; order snapshots are taken by the order service at checkout.
type Service struct {
	repo     Repository
	products catalog.Repository
	logger   *log.Logger
}

func NewService(repo Repository, products catalog.Repository, logger *log.Logger) *Service {
	return &Service{repo: repo, products: products, logger: logger}
}

// Resolve returns the owner's cart, creating one if absent. Anonymous owners
// without a session key get a fresh one.
func (s *Service) Resolve(ctx context.Context, owner Identity) (*Cart, error) {
	if owner.Anonymous() && owner.SessionID == "" {
		owner.SessionID = uuid.NewString()
	}

	c, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	c = &Cart{
		UserID:    owner.UserID,
		SessionID: owner.SessionID,
		ExpiresAt: time.Now().UTC().Add(TTL),
	}
	if !owner.Anonymous() {
		// authenticated carts are keyed by user only
		c.SessionID = ""
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	s.logger.Printf("created cart %s", c.ID)
	return c, nil
}

// Add puts a product in the owner's cart. The product must exist and be
// published; a product can appear at most once per cart.
func (s *Service) Add(ctx context.Context, owner Identity, productID string) (*Cart, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Purchasable() {
		return nil, catalog.ErrProductNotFound
	}

	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}

	it, err := s.repo.AddItem(ctx, c.ID, productID)
	if err != nil {
		return nil, err
	}
	c.Items = append(c.Items, *it)
	s.logger.Printf("added product %s to cart %s", productID, c.ID)
	return c, nil
}

func (s *Service) Remove(ctx context.Context, itemID string) error {
	if err := s.repo.RemoveItem(ctx, itemID); err != nil {
		return err
	}
	s.logger.Printf("removed cart item %s", itemID)
	return nil
}

// Lines returns the cart's items joined with live product data.
func (s *Service) Lines(ctx context.Context, c *Cart) ([]Line, error) {
	return s.repo.Lines(ctx, c.ID)
}

// Total sums the live prices of everything in the cart.
func (s *Service) Total(ctx context.Context, c *Cart) (decimal.Decimal, error) {
	lines, err := s.repo.Lines(ctx, c.ID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price)
	}
	return total, nil
}
