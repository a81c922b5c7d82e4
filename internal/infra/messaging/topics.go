package messaging

import (
	"strconv"

	"cart-engine/internal/usecase/shared"
)

// Routing keys equal the event type, so consumers can bind with topic
// patterns such as "cart.item.*" or "cart.#".
func RoutingKey(e shared.Event) string {
	return string(e.Type)
}

// MessageID is unique per event. A merge emits several events at the same
// cart version, so the type is part of the id.
func MessageID(e shared.Event) string {
	return e.CartID.String() + ":" + strconv.FormatInt(e.Version, 10) + ":" + string(e.Type)
}
