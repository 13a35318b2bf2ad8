package checkout

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrMissingOrder = errors.New("order number missing")

var orderRe = regexp.MustCompile(`^[A-Z0-9]{9}$`)

// Confirmation is what the order confirmation page shows.
type Confirmation struct {
	Order string          `json:"order"`
	Total decimal.Decimal `json:"total"`
}

// NewOrderNumber returns a 9 character uppercase alphanumeric token.
func NewOrderNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
}

// IsOrderNumber reports whether s has the shape of NewOrderNumber's output.
func IsOrderNumber(s string) bool {
	return orderRe.MatchString(s)
}

// ParseConfirmation reads the order and total query parameters. A missing
// or malformed total reads as zero.
func ParseConfirmation(q url.Values) (Confirmation, error) {
	order := strings.TrimSpace(q.Get("order"))
	if order == "" {
		return Confirmation{}, ErrMissingOrder
	}

	total, err := decimal.NewFromString(q.Get("total"))
	if err != nil {
		total = decimal.Zero
	}
	return Confirmation{Order: order, Total: total}, nil
}
