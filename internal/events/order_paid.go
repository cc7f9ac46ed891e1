package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderPaidQueue = "order.paid"

// OrderPaid is published once per confirmed payment and consumed by the
// mailer. Amounts are the order snapshot, not live prices.
type OrderPaid struct {
	EventType   string          `json:"eventType"`
	OrderNumber string          `json:"orderNumber"`
	BuyerEmail  string          `json:"buyerEmail"`
	BuyerName   string          `json:"buyerName,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Items       []OrderPaidItem `json:"items"`
	PaidAt      time.Time       `json:"paidAt"`
}

type OrderPaidItem struct {
	ProductTitle string          `json:"productTitle"`
	Price        decimal.Decimal `json:"price"`
}
