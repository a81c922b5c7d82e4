package cart

import (
	"cart-engine/internal/domain/coupon"
	"cart-engine/internal/domain/money"
)

type Totals struct {
	Subtotal     money.Money
	Discount     money.Money
	Tax          money.Money
	Shipping     money.Money
	Total        money.Money
	FreeShipping bool
}

// CalculateTotals combines the merchandise discount with tax and shipping.
// A free-shipping coupon adds the shipping charge to the discount, and the
// discount is clamped so the total is never negative.
func CalculateTotals(subtotal money.Money, discounts coupon.Result, tax, shipping money.Money) (Totals, error) {
	discount := discounts.Discount
	if discounts.FreeShipping {
		var err error
		if discount, err = discount.Add(shipping); err != nil {
			return Totals{}, err
		}
	}
	gross, err := money.Sum(subtotal, tax, shipping)
	if err != nil {
		return Totals{}, err
	}
	discount = discount.Min(gross).ClampZero()
	return Totals{
		Subtotal:     subtotal,
		Discount:     discount,
		Tax:          tax,
		Shipping:     shipping,
		Total:        gross.Sub(discount),
		FreeShipping: discounts.FreeShipping,
	}, nil
}

// PriceQuote is the catalog's current view of a product.
type PriceQuote struct {
	UnitPrice money.Money
	Available bool
}
