package httperr

import (
	"net/http"

	"cart-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type mapping struct {
	target  error
	status  int
	message string
}

// Order matters: the first matching sentinel wins. Lifecycle errors come
// before validation so a wrapped "source cart expired" is reported as 410.
var mappings = []mapping{
	{errs.ErrCartNotFound, http.StatusNotFound, "Cart not found"},
	{errs.ErrItemNotFound, http.StatusNotFound, "Cart item not found"},
	{errs.ErrCartExpired, http.StatusGone, "Cart has expired"},
	{errs.ErrCartNotMutable, http.StatusConflict, "Cart can no longer be modified"},
	{errs.ErrConcurrentModification, http.StatusConflict, "Cart was modified concurrently"},
	{errs.ErrIdempotencyInProgress, http.StatusConflict, "Request with this idempotency key is in progress"},
	{errs.ErrInvalidCoupon, http.StatusUnprocessableEntity, "Coupon cannot be applied"},
	{errs.ErrCurrencyMismatch, http.StatusUnprocessableEntity, "Cart currencies differ"},
	{errs.ErrCheckoutPrecondition, http.StatusPreconditionFailed, "Cart is not ready for checkout"},
	{errs.ErrInvalidQuantity, http.StatusBadRequest, "Invalid quantity"},
	{errs.ErrInvalidPrice, http.StatusBadRequest, "Invalid unit price"},
	{errs.ErrInvalidOwner, http.StatusBadRequest, "Invalid cart owner"},
	{errs.ErrInvalidCurrency, http.StatusBadRequest, "Invalid currency"},
	{errs.ErrInvalidAttributes, http.StatusBadRequest, "Invalid item"},
	{errs.ErrInvalidAddress, http.StatusBadRequest, "Invalid shipping address"},
	{errs.ErrSameCart, http.StatusBadRequest, "Cannot merge a cart into itself"},
	{errs.ErrCollaboratorTimeout, http.StatusGatewayTimeout, "Upstream service timed out"},
	{errs.ErrCollaboratorFailure, http.StatusBadGateway, "Upstream service failed"},
}

// StatusFor maps an engine error to its HTTP status and public message.
func StatusFor(err error) (int, string) {
	for _, m := range mappings {
		if errs.Is(err, m.target) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// AbortWithEngineError classifies err and aborts with the matching status.
// Reasons attached by the engine are returned as the detail.
func AbortWithEngineError(c *gin.Context, err error) {
	status, msg := StatusFor(err)
	var detail any
	if status != http.StatusInternalServerError {
		if reasons := errs.Reasons(err); len(reasons) > 0 {
			detail = gin.H{"reasons": reasons}
		}
	}
	AbortWithError(c, status, err, msg, detail)
}
