package middleware

import (
	"errors"
	"net/http"
	"strings"

	"cart-engine/internal/domain/cart"
	"cart-engine/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderSessionID = "X-Session-ID"

	ownerContextKey = "cart_owner"
)

var errOwnerMissing = errors.New("request carries neither a user id nor a session id")

// ResolveOwner reads the caller's identity from headers. It only identifies
// the caller; verifying the identity is the gateway's job. A user id takes
// precedence over a session id.
func ResolveOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		sessionID := strings.TrimSpace(c.GetHeader(HeaderSessionID))

		var (
			owner cart.OwnerRef
			err   error
		)
		switch {
		case userID != "":
			owner, err = cart.UserOwner(userID)
		case sessionID != "":
			owner, err = cart.SessionOwner(sessionID)
		default:
			c.Next()
			return
		}
		if err == nil {
			c.Set(ownerContextKey, owner)
		}
		c.Next()
	}
}

// RequireOwner aborts with 400 when ResolveOwner found no identity.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetOwner(c); !ok {
			httperr.AbortWithError(c, http.StatusBadRequest, errOwnerMissing, "X-User-ID or X-Session-ID header is required", nil)
			return
		}
		c.Next()
	}
}

func GetOwner(c *gin.Context) (cart.OwnerRef, bool) {
	v, exists := c.Get(ownerContextKey)
	if !exists {
		return cart.OwnerRef{}, false
	}
	owner, ok := v.(cart.OwnerRef)
	return owner, ok
}
