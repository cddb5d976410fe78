package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Pricing is the flat order pricing policy: a tax rate applied to the
// subtotal and a flat shipping fee waived above a threshold.
type Pricing struct {
	TaxRate          decimal.Decimal
	ShippingFlat     decimal.Decimal
	FreeShippingOver decimal.Decimal
}

// DefaultPricing is 10% tax and $10 shipping, free for subtotals over $100.
func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:          decimal.RequireFromString("0.10"),
		ShippingFlat:     decimal.RequireFromString("10.00"),
		FreeShippingOver: decimal.RequireFromString("100.00"),
	}
}

// Totals is the priced breakdown of a cart.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// Totals prices a subtotal. An empty cart owes nothing, shipping included.
func (p Pricing) Totals(subtotal decimal.Decimal, itemCount int) Totals {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(p.TaxRate).Round(2)

	shipping := decimal.Zero
	if itemCount > 0 && !subtotal.GreaterThan(p.FreeShippingOver) {
		shipping = p.ShippingFlat.Round(2)
	}

	return Totals{
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     subtotal.Add(tax).Add(shipping),
		ItemCount: itemCount,
	}
}

// MarshalJSON renders amounts with exactly two decimal places.
func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal  string `json:"subtotal"`
		Tax       string `json:"tax"`
		Shipping  string `json:"shipping"`
		Total     string `json:"total"`
		ItemCount int    `json:"item_count"`
	}{
		Subtotal:  t.Subtotal.StringFixed(2),
		Tax:       t.Tax.StringFixed(2),
		Shipping:  t.Shipping.StringFixed(2),
		Total:     t.Total.StringFixed(2),
		ItemCount: t.ItemCount,
	})
}
