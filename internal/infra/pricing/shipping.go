package pricing

import (
	"context"

	"cart-engine/internal/domain/money"
	"cart-engine/internal/pkg/config"
	"cart-engine/internal/usecase/shared"
)

// FlatShippingEngine charges a flat fee per order, waived at or above the
// free-shipping threshold. Empty carts ship for free.
type FlatShippingEngine struct {
	flat      money.Money
	threshold money.Money
}

func NewFlatShippingEngine(cfg config.PricingConfig) *FlatShippingEngine {
	return &FlatShippingEngine{
		flat:      money.FromCents(cfg.ShippingFlatCents),
		threshold: money.FromCents(cfg.FreeShippingThresholdCents),
	}
}

func (e *FlatShippingEngine) ComputeShipping(_ context.Context, in shared.ShippingInput) (money.Money, error) {
	if in.ItemCount == 0 {
		return money.Zero(), nil
	}
	if !e.threshold.IsZero() && !in.Subtotal.Sub(e.threshold).IsNegative() {
		return money.Zero(), nil
	}
	return e.flat, nil
}
