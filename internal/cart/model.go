package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Identity is the owner of a cart: an authenticated user or an anonymous
// session, never both.
type Identity struct {
	UserID    string
	SessionID string
}

func (id Identity) Anonymous() bool { return id.UserID == "" }

type Item struct {
	ID        string    `json:"itemId"`
	CartID    string    `json:"cartId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

type Cart struct {
	ID        string    `json:"cartId"`
	UserID    string    `json:"userId,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Line is a cart item joined with the live product row. Prices here are
// pre-order reads; once an order exists its snapshot is authoritative.
type Line struct {
	ItemID    string          `json:"itemId"`
	ProductID string          `json:"productId"`
	SellerID  string          `json:"sellerId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
}
