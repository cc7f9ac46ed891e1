package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber returns a globally unique order number of the form
// ORD-YYYYMMDD-XXXXXXXX. The suffix is random (uuid prefix), not sequential,
// so collisions are negligible and numbers leak no volume information.
func NewOrderNumber(now time.Time) string {
	datePart := now.Format("20060102")
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%s-%s", datePart, suffix)
}
