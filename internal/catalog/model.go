package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

// Product is the narrow slice of the catalog the settlement pipeline needs:
// live price/title for snapshots and the purchase counter.
type Product struct {
	ID        string          `json:"productId"`
	SellerID  string          `json:"sellerId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Status    Status          `json:"status"`
	Purchases int             `json:"purchases"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Purchasable reports whether the product can be added to a cart.
func (p *Product) Purchasable() bool {
	return p.Status == StatusPublished
}
