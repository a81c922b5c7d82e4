package coupon

import (
	"sort"

	"cart-engine/internal/domain/money"
)

type Result struct {
	Discount     money.Money
	FreeShipping bool
}

// Ordered returns a copy of rules sorted by (priority asc, code asc).
func Ordered(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// ApplyAll evaluates rules sequentially in priority order. Each rule sees the
// subtotal reduced by every discount granted before it, so the result does
// not depend on the order coupons were applied in.
func ApplyAll(subtotal money.Money, rules []Rule) Result {
	var res Result
	running := subtotal
	for _, r := range Ordered(rules) {
		running = running.Sub(r.Evaluate(running, subtotal))
		if r.GrantsFreeShipping(subtotal) {
			res.FreeShipping = true
		}
	}
	// Each discount is capped at the running amount, so this never exceeds
	// the subtotal.
	res.Discount = subtotal.Sub(running)
	return res
}

// CanStack reports whether incoming can join the already applied set
// instead of replacing it.
func CanStack(applied []Rule, incoming Rule) bool {
	if !incoming.Stackable {
		return false
	}
	for _, r := range applied {
		if r.Code == incoming.Code {
			continue
		}
		if !r.Stackable {
			return false
		}
	}
	return true
}
