package payfast

import (
	"fmt"
	"net/url"
	"strings"
)

// Well-known PayFast field names.
const (
	FieldSignature     = "signature"
	FieldPaymentID     = "m_payment_id"
	FieldPaymentStatus = "payment_status"
	FieldProviderRef   = "pf_payment_id"
)

// StatusComplete is the payment_status value PayFast sends for a successful
// payment. Anything else is treated as a failure.
const StatusComplete = "COMPLETE"

// Field is one key/value pair of a PayFast payload.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Fields is an insertion-ordered payload. Order matters: the gateway signs
// and verifies over the pairs in the order they appear, so a map cannot be
// used here.
type Fields []Field

func (f Fields) Get(key string) string {
	for _, fl := range f {
		if fl.Key == key {
			return fl.Value
		}
	}
	return ""
}

// Without returns a copy with every occurrence of key removed.
func (f Fields) Without(key string) Fields {
	out := make(Fields, 0, len(f))
	for _, fl := range f {
		if fl.Key != key {
			out = append(out, fl)
		}
	}
	return out
}

// ParseNotification decodes a form-encoded webhook body preserving the wire
// order of the pairs. url.ParseQuery cannot be used because it loses ordering,
// and the signature can only be recomputed over the original order.
func ParseNotification(body []byte) (Fields, error) {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return nil, fmt.Errorf("empty notification body")
	}

	var fields Fields
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("decode key %q: %w", key, err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("decode value for %q: %w", k, err)
		}
		fields = append(fields, Field{Key: k, Value: v})
	}
	return fields, nil
}

// Encode renders the fields back into form encoding, in order.
func (f Fields) Encode() string {
	var b strings.Builder
	for i, fl := range f {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(fl.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fl.Value))
	}
	return b.String()
}
