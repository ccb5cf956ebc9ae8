package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/common"
)

// InternalAuth guards service-to-service endpoints with a shared secret.
// An empty secret disables the internal surface entirely.
func InternalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			common.Fail(c, http.StatusNotFound, 40400, "route not found")
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.Fail(c, http.StatusUnauthorized, 40110, "missing internal token")
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(secret)) != 1 {
			common.Fail(c, http.StatusUnauthorized, 40111, "invalid internal token")
			c.Abort()
			return
		}
		c.Next()
	}
}
