package memstore

import (
	"context"
	"sync"

	"cart-engine/internal/domain/cart"

	"github.com/google/uuid"
)

type SnapshotCache struct {
	mu    sync.RWMutex
	items map[uuid.UUID]cart.Snapshot
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{items: make(map[uuid.UUID]cart.Snapshot)}
}

func (c *SnapshotCache) Get(_ context.Context, id uuid.UUID) (*cart.Snapshot, bool, error) {
	c.mu.RLock()
	s, ok := c.items[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	out := cloneSnapshot(s)
	return &out, true, nil
}

// Put never replaces a newer snapshot with an older one.
func (c *SnapshotCache) Put(_ context.Context, s cart.Snapshot) error {
	clone := cloneSnapshot(s)
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.items[s.ID]; ok && cur.Version > s.Version {
		return nil
	}
	c.items[s.ID] = clone
	return nil
}

func (c *SnapshotCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

// cloneSnapshot copies everything a caller could mutate. Coupon rules hold
// immutable decimals, so copying the slice elements is enough for them.
func cloneSnapshot(s cart.Snapshot) cart.Snapshot {
	out := s
	out.Items = make([]cart.ItemSnapshot, len(s.Items))
	for i, item := range s.Items {
		out.Items[i] = item
		if item.Attributes != nil {
			attrs := make(map[string]string, len(item.Attributes))
			for k, v := range item.Attributes {
				attrs[k] = v
			}
			out.Items[i].Attributes = attrs
		}
	}
	out.Coupons = append([]cart.AppliedCoupon(nil), s.Coupons...)
	if s.ShippingAddress != nil {
		a := *s.ShippingAddress
		out.ShippingAddress = &a
	}
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		out.ExpiresAt = &t
	}
	if s.PricesVerifiedAt != nil {
		t := *s.PricesVerifiedAt
		out.PricesVerifiedAt = &t
	}
	return out
}
