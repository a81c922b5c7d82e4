//go:build e2e

package cart_test

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"cart-engine/internal/domain/money"
	"cart-engine/internal/handler/dto/request"
	"cart-engine/internal/handler/dto/response"
	"cart-engine/tests/common/dbtest"
	"cart-engine/tests/common/httptest"
	"cart-engine/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	cartsURL    = "/api/carts"
	cartURL     = "/api/carts/%s"
	itemsURL    = "/api/carts/%s/items"
	itemURL     = "/api/carts/%s/items/%s"
	couponsURL  = "/api/carts/%s/coupons"
	addressURL  = "/api/carts/%s/shipping-address"
	repriceURL  = "/api/carts/%s/reprice"
	mergeURL    = "/api/carts/%s/merge"
	checkoutURL = "/api/carts/%s/checkout"
)

type CartSuite struct {
	e2e.SharedSuite
}

func (s *CartSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestCartSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(CartSuite))
}

func userHeaders(userID string) map[string]string {
	return map[string]string{"X-User-ID": userID}
}

func sessionHeaders(sessionID string) map[string]string {
	return map[string]string{"X-Session-ID": sessionID}
}

func (s *CartSuite) createCart(headers map[string]string) response.CartResponse {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, cartsURL, request.CreateCartRequest{}, headers)

	var res response.CartResponse
	httptest.AssertSuccessResponse(t, w, http.StatusOK, &res)
	require.NotEqual(t, uuid.Nil, res.ID)
	return res
}

func (s *CartSuite) addItem(cartID string, productID string, qty int, unitCents int64, headers map[string]string) response.CartResponse {
	t := s.T()
	body := request.AddItemRequest{ProductID: productID, Name: "Product " + productID, Quantity: qty, UnitPrice: money.FromCents(unitCents).String()}
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(itemsURL, cartID), body, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res response.CartResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
	return res
}

func ifMatch(version int64) map[string]string {
	return map[string]string{"If-Match": `"` + strconv.FormatInt(version, 10) + `"`}
}

// =============================================================================
// TestGetOrCreate
// =============================================================================

func (s *CartSuite) TestGetOrCreate() {
	s.Run("success: the same owner gets the same active cart", func() {
		t := s.T()

		first := s.createCart(userHeaders("user-e2e-1"))
		second := s.createCart(userHeaders("user-e2e-1"))

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "active", first.Status)
		assert.Equal(t, "USD", first.Currency)
		assert.Equal(t, int64(1), first.Version)
		assert.Nil(t, first.ExpiresAt, "user carts do not expire by default")
	})

	s.Run("success: anonymous carts carry an expiry", func() {
		t := s.T()

		res := s.createCart(sessionHeaders("sess-e2e-1"))
		assert.Equal(t, "sess-e2e-1", res.SessionID)
		assert.NotNil(t, res.ExpiresAt)
	})

	s.Run("success: current cart is visible for the owner", func() {
		t := s.T()

		created := s.createCart(userHeaders("user-e2e-2"))
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, cartsURL+"/current", nil, userHeaders("user-e2e-2"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		httptest.AssertHeaders(t, w, map[string]string{"ETag": `"1"`})

		var res response.CartResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
		assert.Equal(t, created.ID, res.ID)
	})

	s.Run("error: missing owner headers", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, cartsURL, request.CreateCartRequest{}, nil)
		httptest.AssertErrorResponse(t, w, http.StatusBadRequest, "X-User-ID or X-Session-ID")
	})
}

// =============================================================================
// TestItems
// =============================================================================

func (s *CartSuite) TestItems() {
	s.Run("success: same product and attributes merge into one line", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-items-1"))
		s.addItem(c.ID.String(), "sku-a", 2, 1000, nil)
		res := s.addItem(c.ID.String(), "sku-a", 1, 1000, nil)

		require.Len(t, res.Items, 1)
		assert.Equal(t, 3, res.Items[0].Quantity)
		assert.Equal(t, int64(3000), res.SubtotalCents)
		assert.Equal(t, int64(3), res.Version)
	})

	s.Run("success: a replayed idempotency key does not add twice", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-items-2"))
		headers := map[string]string{"Idempotency-Key": "add-once"}
		first := s.addItem(c.ID.String(), "sku-a", 1, 500, headers)
		replay := s.addItem(c.ID.String(), "sku-a", 1, 500, headers)

		require.Len(t, replay.Items, 1)
		assert.Equal(t, 1, replay.Items[0].Quantity)
		assert.Equal(t, first.Version, replay.Version)
	})

	s.Run("success: quantity zero removes the line", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-items-3"))
		added := s.addItem(c.ID.String(), "sku-a", 2, 1000, nil)
		zero := 0

		w := httptest.PerformRequest(t, s.Router, http.MethodPatch, fmt.Sprintf(itemURL, c.ID, added.Items[0].ID),
			request.UpdateQuantityRequest{Quantity: &zero}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res response.CartResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
		assert.Empty(t, res.Items)
		assert.Equal(t, int64(0), res.TotalCents)
	})

	s.Run("success: removing an item", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-items-4"))
		s.addItem(c.ID.String(), "sku-a", 1, 1000, nil)
		added := s.addItem(c.ID.String(), "sku-b", 1, 700, nil)
		require.Len(t, added.Items, 2)

		w := httptest.PerformRequest(t, s.Router, http.MethodDelete, fmt.Sprintf(itemURL, c.ID, added.Items[1].ID), nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res response.CartResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
		require.Len(t, res.Items, 1)
		assert.Equal(t, "sku-a", res.Items[0].ProductID)
	})

	s.Run("error: quantity above the line limit", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-items-5"))
		body := request.AddItemRequest{ProductID: "sku-a", Name: "A", Quantity: s.Config.Cart.MaxLineQuantity + 1, UnitPrice: "1.00"}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(itemsURL, c.ID), body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	s.Run("error: unit price above the configured ceiling leaves the cart empty", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-items-7"))
		price := money.FromCents(s.Config.Cart.MaxUnitPriceCents + 1).String()
		body := request.AddItemRequest{ProductID: "sku-a", Name: "A", Quantity: 2, UnitPrice: price}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(itemsURL, c.ID), body, nil)
		httptest.AssertErrorResponse(t, w, http.StatusBadRequest, "Invalid unit price")
		assert.Equal(t, c.Version, dbtest.CartVersion(t, s.DB, c.ID))
	})

	s.Run("error: stale If-Match is rejected and the cart is unchanged", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-items-6"))
		s.addItem(c.ID.String(), "sku-a", 1, 1000, nil)

		body := request.AddItemRequest{ProductID: "sku-b", Name: "B", Quantity: 1, UnitPrice: "1.00"}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(itemsURL, c.ID), body, ifMatch(c.Version))
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "modified concurrently")
		assert.Equal(t, int64(2), dbtest.CartVersion(t, s.DB, c.ID))
	})

	s.Run("error: unknown cart", func() {
		t := s.T()

		body := request.AddItemRequest{ProductID: "sku-a", Name: "A", Quantity: 1, UnitPrice: "1.00"}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(itemsURL, uuid.New()), body, nil)
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "Cart not found")
	})
}

// =============================================================================
// TestCoupons
// =============================================================================

func (s *CartSuite) TestCoupons() {
	s.Run("success: a percentage coupon discounts the subtotal", func() {
		t := s.T()

		dbtest.SeedPercentCoupon(t, s.DB, "SAVE10", "10", 0)
		c := s.createCart(userHeaders("user-coupon-1"))
		s.addItem(c.ID.String(), "sku-a", 3, 1000, nil)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(couponsURL, c.ID), request.ApplyCouponRequest{Code: "SAVE10"}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res response.CartResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
		assert.Equal(t, int64(3000), res.SubtotalCents)
		assert.Equal(t, int64(300), res.DiscountCents)
		assert.Equal(t, res.SubtotalCents-res.DiscountCents+res.TaxCents+res.ShippingCents, res.TotalCents)

		want := []response.CouponResponse{{Code: "SAVE10", Kind: "percentage", PercentOff: "10"}}
		if diff := cmp.Diff(want, res.Coupons, cmpopts.IgnoreFields(response.CouponResponse{}, "AppliedAt")); diff != "" {
			t.Errorf("coupon mismatch (-want +got):\n%s", diff)
		}

		w = httptest.PerformRequest(t, s.Router, http.MethodDelete, fmt.Sprintf(couponsURL, c.ID)+"/SAVE10", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
		assert.Empty(t, res.Coupons)
		assert.Equal(t, int64(0), res.DiscountCents)
	})

	s.Run("success: a non-stackable coupon replaces the applied set", func() {
		t := s.T()

		dbtest.SeedFixedCoupon(t, s.DB, "TAKE5", 500, "USD", true)
		dbtest.SeedFixedCoupon(t, s.DB, "TAKE7", 700, "USD", true)
		dbtest.SeedPercentCoupon(t, s.DB, "HALF", "50", 0)
		c := s.createCart(userHeaders("user-coupon-stack"))
		s.addItem(c.ID.String(), "sku-a", 2, 1000, nil)

		apply := func(code string) response.CartResponse {
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(couponsURL, c.ID), request.ApplyCouponRequest{Code: code}, nil)
			var res response.CartResponse
			httptest.AssertSuccessResponse(t, w, http.StatusOK, &res)
			return res
		}

		apply("TAKE5")
		res := apply("TAKE7")
		require.Len(t, res.Coupons, 2)
		assert.Equal(t, int64(1200), res.DiscountCents)

		res = apply("HALF")
		require.Len(t, res.Coupons, 1)
		assert.Equal(t, "HALF", res.Coupons[0].Code)
		assert.Equal(t, int64(1000), res.DiscountCents)
	})

	s.Run("error: unknown code", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-coupon-2"))
		s.addItem(c.ID.String(), "sku-a", 1, 1000, nil)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(couponsURL, c.ID), request.ApplyCouponRequest{Code: "NOPE"}, nil)
		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "Coupon cannot be applied")
	})

	s.Run("error: expired coupon", func() {
		t := s.T()

		dbtest.SeedPercentCoupon(t, s.DB, "OLD20", "20", 0)
		dbtest.ExpireCoupon(t, s.DB, "OLD20")
		c := s.createCart(userHeaders("user-coupon-3"))
		s.addItem(c.ID.String(), "sku-a", 1, 1000, nil)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(couponsURL, c.ID), request.ApplyCouponRequest{Code: "OLD20"}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})
}

// =============================================================================
// TestShippingAddress
// =============================================================================

func (s *CartSuite) TestShippingAddress() {
	s.Run("success: set then patch keeps untouched fields", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-addr-1"))
		put := request.ShippingAddressRequest{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
		w := httptest.PerformRequest(t, s.Router, http.MethodPut, fmt.Sprintf(addressURL, c.ID), put, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		city := "Shelbyville"
		w = httptest.PerformRequest(t, s.Router, http.MethodPatch, fmt.Sprintf(addressURL, c.ID),
			request.PatchShippingAddressRequest{City: &city}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res response.CartResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
		want := &response.AddressResponse{Line1: "1 Main St", City: "Shelbyville", PostalCode: "12345", Country: "US"}
		if diff := cmp.Diff(want, res.ShippingAddress); diff != "" {
			t.Errorf("address mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("error: invalid country", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-addr-2"))
		put := request.ShippingAddressRequest{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "USA"}
		w := httptest.PerformRequest(t, s.Router, http.MethodPut, fmt.Sprintf(addressURL, c.ID), put, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// =============================================================================
// TestRepriceAndCheckout
// =============================================================================

func (s *CartSuite) TestRepriceAndCheckout() {
	s.Run("success: reprice picks up catalog prices and checkout locks the cart", func() {
		t := s.T()

		dbtest.SeedProduct(t, s.DB, "sku-a", "USD", 1200, true)
		c := s.createCart(userHeaders("user-co-1"))
		s.addItem(c.ID.String(), "sku-a", 2, 1000, nil)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(repriceURL, c.ID), nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var repriced response.RepriceResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &repriced))
		assert.Empty(t, repriced.StaleItems)
		require.Len(t, repriced.Cart.Items, 1)
		assert.Equal(t, int64(1200), repriced.Cart.Items[0].UnitPriceCents)
		assert.Equal(t, int64(2400), repriced.Cart.SubtotalCents)
		assert.NotNil(t, repriced.Cart.PricesVerifiedAt)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(checkoutURL, c.ID), nil, ifMatch(repriced.Cart.Version))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var done response.CartResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &done))
		assert.Equal(t, "converted", done.Status)

		body := request.AddItemRequest{ProductID: "sku-b", Name: "B", Quantity: 1, UnitPrice: "1.00"}
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(itemsURL, c.ID), body, nil)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "can no longer be modified")
	})

	s.Run("error: unavailable products block checkout", func() {
		t := s.T()

		dbtest.SeedProduct(t, s.DB, "sku-gone", "USD", 500, false)
		c := s.createCart(userHeaders("user-co-2"))
		s.addItem(c.ID.String(), "sku-gone", 1, 500, nil)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(repriceURL, c.ID), nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var repriced response.RepriceResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &repriced))
		require.Len(t, repriced.StaleItems, 1)
		assert.True(t, repriced.StaleItems[0].Unavailable)
		assert.Nil(t, repriced.Cart.PricesVerifiedAt)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(checkoutURL, c.ID), nil, nil)
		assert.Equal(t, http.StatusPreconditionFailed, w.Code, w.Body.String())
	})

	s.Run("error: empty cart cannot check out", func() {
		t := s.T()

		c := s.createCart(userHeaders("user-co-3"))
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(checkoutURL, c.ID), nil, nil)
		httptest.AssertErrorResponse(t, w, http.StatusPreconditionFailed, "not ready for checkout")
	})
}

// =============================================================================
// TestMerge
// =============================================================================

func (s *CartSuite) TestMerge() {
	s.Run("success: anonymous lines move into the user cart", func() {
		t := s.T()

		guest := s.createCart(sessionHeaders("sess-merge-1"))
		s.addItem(guest.ID.String(), "sku-a", 2, 1000, nil)
		s.addItem(guest.ID.String(), "sku-b", 1, 500, nil)

		user := s.createCart(userHeaders("user-merge-1"))
		s.addItem(user.ID.String(), "sku-a", 1, 1000, nil)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(mergeURL, user.ID),
			request.MergeRequest{SourceCartID: guest.ID}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res response.MergeResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
		require.Len(t, res.Target.Items, 2)
		assert.Equal(t, int64(3500), res.Target.SubtotalCents)
		assert.Equal(t, "merged", res.Source.Status)
		assert.Empty(t, res.Warnings)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(cartURL, guest.ID), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var source response.CartResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &source))
		assert.Empty(t, source.Items)
	})

	s.Run("error: merging a cart into itself", func() {
		t := s.T()

		user := s.createCart(userHeaders("user-merge-2"))
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(mergeURL, user.ID),
			request.MergeRequest{SourceCartID: user.ID}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}
