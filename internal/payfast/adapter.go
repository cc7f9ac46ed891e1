package payfast

import (
	"errors"
	"log"

	"github.com/wrightlabs/marketplace/internal/config"
	"github.com/wrightlabs/marketplace/internal/order"
)

var ErrInvalidSignature = errors.New("invalid payfast signature")

// Adapter builds signed outbound payment payloads and verifies inbound
// webhook payloads with the same signing primitive.
type Adapter struct {
	cfg    config.PayFast
	logger *log.Logger
}

func NewAdapter(cfg config.PayFast, logger *log.Logger) *Adapter {
	return &Adapter{cfg: cfg, logger: logger}
}

// PaymentData assembles the redirect form fields for an order. Field names
// and their order are fixed by the gateway contract and must not be
// reordered; the signature is computed over exactly this sequence.
func (a *Adapter) PaymentData(o *order.Order) Fields {
	fields := Fields{
		{Key: "merchant_id", Value: a.cfg.MerchantID},
		{Key: "merchant_key", Value: a.cfg.MerchantKey},
		{Key: "return_url", Value: a.cfg.ReturnURL},
		{Key: "cancel_url", Value: a.cfg.CancelURL},
		{Key: "notify_url", Value: a.cfg.NotifyURL},
		{Key: "name_first", Value: o.BuyerName},
		{Key: "email_address", Value: o.BuyerEmail},
		{Key: FieldPaymentID, Value: o.OrderNumber},
		{Key: "amount", Value: o.TotalAmount.StringFixed(2)},
		{Key: "item_name", Value: "Order " + o.OrderNumber},
		{Key: "item_description", Value: "Digital resources purchase"},
	}

	signature := Sign(fields, a.cfg.Passphrase)
	fields = append(fields, Field{Key: FieldSignature, Value: signature})

	a.logger.Printf("generated payment data for order %s", o.OrderNumber)
	return fields
}

// PaymentURL is the gateway endpoint the signed form is submitted to.
func (a *Adapter) PaymentURL() string {
	return a.cfg.BaseURL + "/eng/process"
}

// ValidateSignature checks an inbound notification payload.
func (a *Adapter) ValidateSignature(fields Fields) bool {
	return VerifySignature(fields, a.cfg.Passphrase)
}
