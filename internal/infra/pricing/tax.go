package pricing

import (
	"context"
	"strings"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/domain/money"
	"cart-engine/internal/pkg/config"
)

// FlatTaxEngine applies one basis-point rate per destination country. Carts
// without a shipping address use the default rate.
type FlatTaxEngine struct {
	rates       map[string]int64
	defaultRate int64
}

func NewFlatTaxEngine(cfg config.PricingConfig) *FlatTaxEngine {
	rates := make(map[string]int64, len(cfg.TaxRates))
	for country, bps := range cfg.TaxRates {
		rates[strings.ToUpper(strings.TrimSpace(country))] = bps
	}
	return &FlatTaxEngine{
		rates:       rates,
		defaultRate: cfg.DefaultTaxRateBps,
	}
}

func (e *FlatTaxEngine) ComputeTax(_ context.Context, taxable money.Money, _ money.Currency, address *cart.Address) (money.Money, error) {
	if taxable.Cents() <= 0 {
		return money.Zero(), nil
	}
	return taxable.BasisPoints(e.rateFor(address)), nil
}

func (e *FlatTaxEngine) rateFor(address *cart.Address) int64 {
	if address == nil {
		return e.defaultRate
	}
	if bps, ok := e.rates[address.Country]; ok {
		return bps
	}
	return e.defaultRate
}
