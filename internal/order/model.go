package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a per-product snapshot taken at order creation. Price, title and
// the revenue split never change afterwards, whatever happens to the live
// product row.
type Item struct {
	ID           string          `json:"itemId"`
	OrderID      string          `json:"orderId"`
	ProductID    string          `json:"productId"`
	SellerID     string          `json:"sellerId"`
	ProductTitle string          `json:"productTitle"`
	Price        decimal.Decimal `json:"price"`
	PlatformFee  decimal.Decimal `json:"platformFee"`
	SellerAmount decimal.Decimal `json:"sellerAmount"`
	Quantity     int             `json:"quantity"`
}

// Order identity fields are immutable once created. Only Status,
// PaymentProviderRef and PaidAt are written later, and only through the
// repository's conditional transitions.
type Order struct {
	ID                 string          `json:"orderId"`
	OrderNumber        string          `json:"orderNumber"`
	CartID             string          `json:"cartId,omitempty"`
	BuyerID            string          `json:"buyerId,omitempty"`
	BuyerEmail         string          `json:"buyerEmail"`
	BuyerName          string          `json:"buyerName,omitempty"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Currency           string          `json:"currency"`
	Status             Status          `json:"status"`
	PaymentProvider    string          `json:"paymentProvider,omitempty"`
	PaymentProviderRef string          `json:"paymentProviderRef,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	PaidAt             *time.Time      `json:"paidAt,omitempty"`
	Items              []Item          `json:"items"`
}

// Buyer is the identity snapshot stored on the order.
type Buyer struct {
	ID    string
	Email string
	Name  string
}
