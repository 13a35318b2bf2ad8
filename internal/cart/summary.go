package cart

import "github.com/shopspring/decimal"

var (
	// FreeShippingThreshold is the subtotal that must be exceeded for free shipping.
	FreeShippingThreshold = decimal.RequireFromString("50")
	ShippingFee           = decimal.RequireFromString("9.99")
	TaxRate               = decimal.RequireFromString("0.08")
)

// Summary is the order summary shown next to the cart and checkout form.
type Summary struct {
	TotalItems               int             `json:"total_items"`
	Subtotal                 decimal.Decimal `json:"subtotal"`
	Shipping                 decimal.Decimal `json:"shipping"`
	Tax                      decimal.Decimal `json:"tax"`
	Total                    decimal.Decimal `json:"total"`
	FreeShipping             bool            `json:"free_shipping"`
	RemainingForFreeShipping decimal.Decimal `json:"remaining_for_free_shipping"`
}

// Summarize derives the summary from the current cart state.
func Summarize(s *Store) Summary {
	s.mu.RLock()
	items := s.items
	subtotal := totalPrice(items)
	count := totalItems(items)
	s.mu.RUnlock()

	sum := Summary{
		TotalItems:               count,
		Subtotal:                 subtotal,
		Shipping:                 ShippingFee,
		Tax:                      subtotal.Mul(TaxRate).Round(2),
		RemainingForFreeShipping: decimal.Zero,
	}
	if subtotal.GreaterThan(FreeShippingThreshold) {
		sum.Shipping = decimal.Zero
		sum.FreeShipping = true
	} else if subtotal.IsPositive() {
		sum.RemainingForFreeShipping = FreeShippingThreshold.Sub(subtotal)
	}
	sum.Total = sum.Subtotal.Add(sum.Shipping).Add(sum.Tax)
	return sum
}
