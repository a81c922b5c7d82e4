package repository

import (
	"encoding/json"
	"time"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type cartRow struct {
	id               uuid.UUID
	userID           pgtype.Text
	sessionID        pgtype.Text
	status           string
	currency         string
	coupons          []byte
	address          []byte
	subtotal         int64
	discount         int64
	tax              int64
	shipping         int64
	total            int64
	freeShipping     bool
	expiresAt        pgtype.Timestamptz
	pricesVerifiedAt pgtype.Timestamptz
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

type itemRow struct {
	id          uuid.UUID
	productID   string
	productName string
	sku         pgtype.Text
	imageURL    pgtype.Text
	quantity    int
	unitPrice   int64
	attributes  []byte
	unavailable bool
	addedAt     time.Time
	updatedAt   time.Time
}

func snapshotToRow(s cart.Snapshot) (cartRow, error) {
	coupons := s.Coupons
	if coupons == nil {
		coupons = []cart.AppliedCoupon{}
	}
	couponsJSON, err := json.Marshal(coupons)
	if err != nil {
		return cartRow{}, err
	}

	var addressJSON []byte
	if s.ShippingAddress != nil {
		if addressJSON, err = jsonOrNull(s.ShippingAddress); err != nil {
			return cartRow{}, err
		}
	}

	return cartRow{
		id:               s.ID,
		userID:           pgconv.StringToPgtype(s.UserID),
		sessionID:        pgconv.StringToPgtype(s.SessionID),
		status:           string(s.Status),
		currency:         s.Currency,
		coupons:          couponsJSON,
		address:          addressJSON,
		subtotal:         s.SubtotalCents,
		discount:         s.DiscountCents,
		tax:              s.TaxCents,
		shipping:         s.ShippingCents,
		total:            s.TotalCents,
		freeShipping:     s.FreeShipping,
		expiresAt:        pgconv.TimePtrToPgtype(s.ExpiresAt),
		pricesVerifiedAt: pgconv.TimePtrToPgtype(s.PricesVerifiedAt),
		version:          s.Version,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
	}, nil
}

func itemToRow(item cart.ItemSnapshot) (itemRow, error) {
	attrs := item.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return itemRow{}, err
	}
	return itemRow{
		id:          item.ID,
		productID:   item.Product.ID,
		productName: item.Product.Name,
		sku:         pgconv.StringToPgtype(item.Product.SKU),
		imageURL:    pgconv.StringToPgtype(item.Product.ImageURL),
		quantity:    item.Quantity,
		unitPrice:   item.UnitPriceCents,
		attributes:  attrsJSON,
		unavailable: item.Unavailable,
		addedAt:     item.AddedAt,
		updatedAt:   item.UpdatedAt,
	}, nil
}

func rowToSnapshot(row cartRow, items []itemRow) (cart.Snapshot, error) {
	s := cart.Snapshot{
		ID:               row.id,
		UserID:           pgconv.StringFromPgtype(row.userID),
		SessionID:        pgconv.StringFromPgtype(row.sessionID),
		Status:           cart.Status(row.status),
		Currency:         row.currency,
		Items:            make([]cart.ItemSnapshot, 0, len(items)),
		SubtotalCents:    row.subtotal,
		DiscountCents:    row.discount,
		TaxCents:         row.tax,
		ShippingCents:    row.shipping,
		TotalCents:       row.total,
		FreeShipping:     row.freeShipping,
		ExpiresAt:        utcPtr(pgconv.TimePtrFromPgtype(row.expiresAt)),
		PricesVerifiedAt: utcPtr(pgconv.TimePtrFromPgtype(row.pricesVerifiedAt)),
		Version:          row.version,
		CreatedAt:        row.createdAt.UTC(),
		UpdatedAt:        row.updatedAt.UTC(),
	}

	if len(row.coupons) > 0 {
		if err := json.Unmarshal(row.coupons, &s.Coupons); err != nil {
			return cart.Snapshot{}, err
		}
	}
	if len(row.address) > 0 {
		var addr cart.Address
		if err := json.Unmarshal(row.address, &addr); err != nil {
			return cart.Snapshot{}, err
		}
		s.ShippingAddress = &addr
	}

	for _, ir := range items {
		var attrs map[string]string
		if len(ir.attributes) > 0 {
			if err := json.Unmarshal(ir.attributes, &attrs); err != nil {
				return cart.Snapshot{}, err
			}
		}
		s.Items = append(s.Items, cart.ItemSnapshot{
			ID:     ir.id,
			CartID: row.id,
			Product: cart.ProductRef{
				ID:       ir.productID,
				Name:     ir.productName,
				SKU:      pgconv.StringFromPgtype(ir.sku),
				ImageURL: pgconv.StringFromPgtype(ir.imageURL),
			},
			Quantity:        ir.quantity,
			UnitPriceCents:  ir.unitPrice,
			TotalPriceCents: ir.unitPrice * int64(ir.quantity),
			Attributes:      attrs,
			Unavailable:     ir.unavailable,
			AddedAt:         ir.addedAt.UTC(),
			UpdatedAt:       ir.updatedAt.UTC(),
		})
	}
	return s, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
