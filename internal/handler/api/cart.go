package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cart-engine/internal/domain/cart"
	reqdto "cart-engine/internal/handler/dto/request"
	resdto "cart-engine/internal/handler/dto/response"
	"cart-engine/internal/handler/httperr"
	"cart-engine/internal/handler/middleware"
	"cart-engine/internal/usecase/commands"
	"cart-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderIfMatch        = "If-Match"
	HeaderETag           = "ETag"
	HeaderIdempotencyKey = "Idempotency-Key"
)

var (
	errInvalidIfMatch = errors.New("if-match header must carry a positive cart version")
	errOwnerRequired  = errors.New("request owner is required")
)

type CartHandler struct {
	cmds commands.CartCommands
	q    queries.CartQueries
}

func NewCartHandler(cmds commands.CartCommands, q queries.CartQueries) *CartHandler {
	return &CartHandler{cmds: cmds, q: q}
}

// @Summary Get or create cart
// @Description Return the caller's active cart, creating one when none exists
// @Tags carts
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Authenticated user id"
// @Param X-Session-ID header string false "Anonymous session id"
// @Param request body reqdto.CreateCartRequest false "Cart currency"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Router /carts [post]
func (h *CartHandler) GetOrCreate(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusBadRequest, errOwnerRequired, "X-User-ID or X-Session-ID header is required", nil)
		return
	}
	var req reqdto.CreateCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
			return
		}
	}
	snap, err := h.cmds.GetOrCreateCart(c.Request.Context(), commands.GetOrCreateRequest{Owner: owner, Currency: req.Currency})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// @Summary Get current cart
// @Description Return the caller's active cart without creating one
// @Tags carts
// @Produce json
// @Param X-User-ID header string false "Authenticated user id"
// @Param X-Session-ID header string false "Anonymous session id"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /carts/current [get]
func (h *CartHandler) GetCurrent(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusBadRequest, errOwnerRequired, "X-User-ID or X-Session-ID header is required", nil)
		return
	}
	snap, err := h.q.GetActiveForOwner(c.Request.Context(), owner)
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// @Summary Get cart
// @Description Get a cart by ID. An overdue cart is reported as expired.
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /carts/{id} [get]
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	snap, err := h.q.Get(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// @Summary Add item
// @Description Add a product to the cart. An existing line for the same variant is incremented.
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param If-Match header string false "Expected cart version"
// @Param Idempotency-Key header string false "Client retry key"
// @Param request body reqdto.AddItemRequest true "Item"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Router /carts/{id}/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	expected, ok := parseIfMatch(c)
	if !ok {
		return
	}
	var req reqdto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	cmd, err := req.ToCommand(id, c.GetHeader(HeaderIdempotencyKey), expected)
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	snap, err := h.cmds.AddItem(c.Request.Context(), cmd)
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// @Summary Update item quantity
// @Description Set a line's quantity. Quantity 0 removes the line.
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param itemId path string true "Item ID"
// @Param If-Match header string false "Expected cart version"
// @Param request body reqdto.UpdateQuantityRequest true "Quantity"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /carts/{id}/items/{itemId} [patch]
func (h *CartHandler) UpdateItemQuantity(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	expected, ok := parseIfMatch(c)
	if !ok {
		return
	}
	var req reqdto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	snap, err := h.cmds.UpdateItemQuantity(c.Request.Context(), commands.UpdateItemQuantityRequest{
		CartID:          id,
		ItemID:          itemID,
		Quantity:        *req.Quantity,
		ExpectedVersion: expected,
	})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// @Summary Remove item
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Param itemId path string true "Item ID"
// @Param If-Match header string false "Expected cart version"
// @Success 200 {object} resdto.CartResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /carts/{id}/items/{itemId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	expected, ok := parseIfMatch(c)
	if !ok {
		return
	}
	snap, err := h.cmds.RemoveItem(c.Request.Context(), commands.RemoveItemRequest{CartID: id, ItemID: itemID, ExpectedVersion: expected})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// @Summary Apply coupon
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param If-Match header string false "Expected cart version"
// @Param request body reqdto.ApplyCouponRequest true "Coupon"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /carts/{id}/coupons [post]
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	expected, ok := parseIfMatch(c)
	if !ok {
		return
	}
	var req reqdto.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	snap, err := h.cmds.ApplyCoupon(c.Request.Context(), commands.ApplyCouponRequest{CartID: id, Code: req.Code, ExpectedVersion: expected})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// @Summary Remove coupon
// @Description Removing a coupon that is not applied leaves the cart unchanged
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Param code path string true "Coupon code"
// @Param If-Match header string false "Expected cart version"
// @Success 200 {object} resdto.CartResponse
// @Failure 404 {object} map[string]string
// @Router /carts/{id}/coupons/{code} [delete]
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	expected, ok := parseIfMatch(c)
	if !ok {
		return
	}
	snap, err := h.cmds.RemoveCoupon(c.Request.Context(), commands.RemoveCouponRequest{CartID: id, Code: c.Param("code"), ExpectedVersion: expected})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// @Summary Set shipping address
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param If-Match header string false "Expected cart version"
// @Param request body reqdto.ShippingAddressRequest true "Address"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Router /carts/{id}/shipping-address [put]
func (h *CartHandler) SetShippingAddress(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	expected, ok := parseIfMatch(c)
	if !ok {
		return
	}
	var req reqdto.ShippingAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	snap, err := h.cmds.SetShippingAddress(c.Request.Context(), req.ToCommand(id, expected))
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// @Summary Patch shipping address
// @Description Update some address fields; absent fields keep their current value
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param If-Match header string false "Expected cart version"
// @Param request body reqdto.PatchShippingAddressRequest true "Address fields"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Router /carts/{id}/shipping-address [patch]
func (h *CartHandler) PatchShippingAddress(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	expected, ok := parseIfMatch(c)
	if !ok {
		return
	}
	var req reqdto.PatchShippingAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	current, err := h.q.Get(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	// Pin the version we read so a concurrent address change is not overwritten.
	if expected == nil {
		v := current.Version
		expected = &v
	}
	snap, err := h.cmds.SetShippingAddress(c.Request.Context(), req.ToCommand(id, current.ShippingAddress, expected))
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// @Summary Reprice cart
// @Description Refresh unit prices and availability from the catalog
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Param If-Match header string false "Expected cart version"
// @Success 200 {object} resdto.RepriceResponse
// @Failure 502 {object} map[string]string
// @Failure 504 {object} map[string]string
// @Router /carts/{id}/reprice [post]
func (h *CartHandler) Reprice(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	expected, ok := parseIfMatch(c)
	if !ok {
		return
	}
	res, err := h.cmds.Reprice(c.Request.Context(), commands.RepriceRequest{CartID: id, ExpectedVersion: expected})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.Header(HeaderETag, etag(res.Cart.Version))
	c.JSON(http.StatusOK, resdto.FromRepriceResult(res))
}

// @Summary Merge carts
// @Description Move the source cart's lines into this cart. The source becomes merged.
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Target cart ID"
// @Param If-Match header string false "Expected target cart version"
// @Param request body reqdto.MergeRequest true "Source cart"
// @Success 200 {object} resdto.MergeResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /carts/{id}/merge [post]
func (h *CartHandler) Merge(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	expected, ok := parseIfMatch(c)
	if !ok {
		return
	}
	var req reqdto.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	res, err := h.cmds.MergeInto(c.Request.Context(), commands.MergeRequest{
		SourceCartID:          req.SourceCartID,
		TargetCartID:          id,
		ExpectedTargetVersion: expected,
	})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.Header(HeaderETag, etag(res.Target.Version))
	c.JSON(http.StatusOK, resdto.FromMergeResult(res))
}

// @Summary Checkout
// @Description Convert the cart. Requires items, a shipping address and fresh prices.
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Param If-Match header string false "Expected cart version"
// @Success 200 {object} resdto.CartResponse
// @Failure 409 {object} map[string]string
// @Failure 412 {object} map[string]string
// @Router /carts/{id}/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	expected, ok := parseIfMatch(c)
	if !ok {
		return
	}
	snap, err := h.cmds.Checkout(c.Request.Context(), commands.CheckoutRequest{CartID: id, ExpectedVersion: expected})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

func respondCart(c *gin.Context, status int, snap *cart.Snapshot) {
	c.Header(HeaderETag, etag(snap.Version))
	c.JSON(status, resdto.FromSnapshot(snap))
}

func etag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseIfMatch accepts `"3"`, `W/"3"` and a bare `3`. A missing header means
// the caller does not pin a version.
func parseIfMatch(c *gin.Context) (*int64, bool) {
	raw := strings.TrimSpace(c.GetHeader(HeaderIfMatch))
	if raw == "" || raw == "*" {
		return nil, true
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidIfMatch, "Invalid If-Match header", nil)
		return nil, false
	}
	return &v, true
}
