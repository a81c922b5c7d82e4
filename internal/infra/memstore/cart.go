package memstore

import (
	"context"
	"encoding/json"
	"sync"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/pkg/errs"
	"cart-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// CartStore is an in-process CartRepository. Carts are kept as encoded
// snapshots so callers never share memory with the store.
type CartStore struct {
	mu     sync.Mutex
	docs   map[uuid.UUID][]byte
	active map[string]uuid.UUID
}

func NewCartStore() *CartStore {
	return &CartStore{
		docs:   make(map[uuid.UUID][]byte),
		active: make(map[string]uuid.UUID),
	}
}

func (s *CartStore) Load(_ context.Context, id uuid.UUID) (*cart.Cart, error) {
	s.mu.Lock()
	doc, ok := s.docs[id]
	s.mu.Unlock()
	if !ok {
		return nil, errs.Wrapf(errs.ErrCartNotFound, "cart %s", id)
	}
	return decode(doc)
}

func (s *CartStore) LoadActiveForOwner(ctx context.Context, owner cart.OwnerRef) (*cart.Cart, error) {
	s.mu.Lock()
	id, ok := s.active[owner.Key()]
	s.mu.Unlock()
	if !ok {
		return nil, errs.Wrapf(errs.ErrCartNotFound, "no active cart for %s", owner.Key())
	}
	return s.Load(ctx, id)
}

// Save checks every cart's version before writing any of them.
func (s *CartStore) Save(_ context.Context, carts ...*cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type entry struct {
		snap  cart.Snapshot
		owner string
	}
	pending := make(map[uuid.UUID]entry, len(carts))
	for _, c := range carts {
		stored, exists, err := s.storedVersion(c.ID())
		if err != nil {
			return err
		}
		switch {
		case c.Version() == 0 && exists:
			return errs.Wrapf(shared.ErrVersionConflict, "cart %s already exists", c.ID())
		case c.Version() != 0 && (!exists || stored != c.Version()):
			return errs.Wrapf(shared.ErrVersionConflict, "cart %s is at version %d, not %d", c.ID(), stored, c.Version())
		}
		snap := c.ToSnapshot()
		snap.Version = c.Version() + 1
		pending[c.ID()] = entry{snap: snap, owner: c.Owner().Key()}
	}

	active := make(map[string]uuid.UUID, len(s.active))
	for k, id := range s.active {
		if _, touched := pending[id]; !touched {
			active[k] = id
		}
	}
	for id, e := range pending {
		if e.snap.Status != cart.StatusActive {
			continue
		}
		if other, taken := active[e.owner]; taken && other != id {
			return errs.Wrapf(shared.ErrActiveCartExists, "owner %s", e.owner)
		}
		active[e.owner] = id
	}

	docs := make(map[uuid.UUID][]byte, len(pending))
	for id, e := range pending {
		doc, err := json.Marshal(e.snap)
		if err != nil {
			return errs.Wrap(err, "encode cart")
		}
		docs[id] = doc
	}

	for id, doc := range docs {
		s.docs[id] = doc
	}
	s.active = active
	for _, c := range carts {
		c.MarkPersisted(c.Version() + 1)
	}
	return nil
}

// Len reports how many carts are stored.
func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *CartStore) storedVersion(id uuid.UUID) (int64, bool, error) {
	doc, ok := s.docs[id]
	if !ok {
		return 0, false, nil
	}
	var head struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		return 0, true, errs.Wrap(err, "decode cart version")
	}
	return head.Version, true, nil
}

func decode(doc []byte) (*cart.Cart, error) {
	var snap cart.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return nil, errs.Wrap(err, "decode cart")
	}
	return cart.FromSnapshot(snap)
}
