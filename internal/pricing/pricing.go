package pricing

import "github.com/shopspring/decimal"

// Line is a priced quantity of one product. Both the session store and the
// order service feed their line items through Quote so the totals a client
// shows before checkout match what the server persists.
type Line struct {
	Price    float64
	Quantity int
}

// Quote is the price breakdown derived from a set of lines.
type Quote struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

var (
	taxRate           = decimal.NewFromFloat(0.15)
	freeShippingAbove = decimal.NewFromInt(100)
	flatShippingFee   = decimal.NewFromInt(10)
)

// Compute derives the full breakdown for the given lines.
//
// Rounding is half-up to 2 decimals and happens only at the tax and total
// steps, never per line; rounding each line first would let the error
// compound and break reconciliation between client and server.
func Compute(lines []Line) Quote {
	items := decimal.Zero
	for _, l := range lines {
		items = items.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	shipping := flatShippingFee
	if items.GreaterThan(freeShippingAbove) {
		shipping = decimal.Zero
	}

	tax := items.Mul(taxRate).Round(2)
	total := items.Add(shipping).Add(tax).Round(2)

	q := Quote{}
	q.ItemsPrice, _ = items.Round(2).Float64()
	q.ShippingPrice, _ = shipping.Float64()
	q.TaxPrice, _ = tax.Float64()
	q.TotalPrice, _ = total.Float64()
	return q
}
