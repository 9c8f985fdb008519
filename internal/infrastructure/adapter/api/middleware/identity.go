package middleware

import (
	"crypto/subtle"
	"strconv"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
)

// Headers set by the upstream auth layer
const (
	UserIDHeader     = "X-User-ID"
	AdminTokenHeader = "X-Admin-Token"
	DeviceIDHeader   = "X-Device-ID"
)

const userIDKey = "user_id"

// UserIdentity requires a positive numeric X-User-ID
func UserIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.GetHeader(UserIDHeader), 10, 64)
		if err != nil || id == 0 {
			_ = c.Error(errs.ErrUnauthenticated)
			c.Abort()
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// UserID returns the caller set by UserIdentity
func UserID(c *gin.Context) uint64 {
	return c.GetUint64(userIDKey)
}

// AdminToken compares X-Admin-Token with the configured token; an empty token disables the admin routes
func AdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given := c.GetHeader(AdminTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			_ = c.Error(errs.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
