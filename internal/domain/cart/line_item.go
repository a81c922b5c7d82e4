package cart

import (
	"time"

	"cart-engine/internal/domain/money"

	"github.com/google/uuid"
)

type LineItem struct {
	id          uuid.UUID
	cartID      uuid.UUID
	product     ProductRef
	quantity    int
	unitPrice   money.Money
	total       money.Money
	attributes  Attributes
	unavailable bool
	addedAt     time.Time
	updatedAt   time.Time
}

func newLineItem(id, cartID uuid.UUID, product ProductRef, quantity int, unitPrice money.Money, attrs Attributes, now time.Time) (*LineItem, error) {
	total, err := unitPrice.Mul(quantity)
	if err != nil {
		return nil, err
	}
	return &LineItem{
		id:         id,
		cartID:     cartID,
		product:    product,
		quantity:   quantity,
		unitPrice:  unitPrice,
		total:      total,
		attributes: attrs.Clone(),
		addedAt:    now,
		updatedAt:  now,
	}, nil
}

// Duplicates are lines for the same product with identical attributes.
func (li *LineItem) sameVariant(productID string, attrs Attributes) bool {
	return li.product.ID == productID && li.attributes.Equal(attrs)
}

// setQuantity and setUnitPrice leave the line untouched when the new total
// is out of range.
func (li *LineItem) setQuantity(q int, now time.Time) error {
	total, err := li.unitPrice.Mul(q)
	if err != nil {
		return err
	}
	li.quantity = q
	li.total = total
	li.updatedAt = now
	return nil
}

func (li *LineItem) setUnitPrice(p money.Money, now time.Time) error {
	total, err := p.Mul(li.quantity)
	if err != nil {
		return err
	}
	li.unitPrice = p
	li.total = total
	li.updatedAt = now
	return nil
}

func (li *LineItem) TotalPrice() money.Money {
	return li.total
}

func (li *LineItem) ID() uuid.UUID          { return li.id }
func (li *LineItem) CartID() uuid.UUID      { return li.cartID }
func (li *LineItem) Product() ProductRef    { return li.product }
func (li *LineItem) Quantity() int          { return li.quantity }
func (li *LineItem) UnitPrice() money.Money { return li.unitPrice }
func (li *LineItem) Attributes() Attributes { return li.attributes.Clone() }
func (li *LineItem) Unavailable() bool      { return li.unavailable }
func (li *LineItem) AddedAt() time.Time     { return li.addedAt }
func (li *LineItem) UpdatedAt() time.Time   { return li.updatedAt }
