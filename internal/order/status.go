package order

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusFailed   Status = "FAILED"
	// Reachable only from PAID, via an administrative refund.
	StatusRefunded Status = "REFUNDED"
)

// Terminal reports whether the webhook path may no longer move the order.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusFailed || s == StatusRefunded
}
