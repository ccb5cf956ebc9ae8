package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/auth"
	"github.com/docvault/docvault/internal/common"
)

const (
	ActorKey    = "actor"
	TokenIDKey  = "token_id"
	TokenExpKey = "token_exp"
)

// TokenDenylist is the revocation check behind logout. A nil denylist
// disables revocation (tests, worker-only deployments).
type TokenDenylist interface {
	IsTokenDenied(ctx context.Context, jti string) (bool, error)
}

func AuthRequired(secret string, denylist TokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			common.Fail(c, http.StatusUnauthorized, 40101, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := auth.ParseJWT(parts[1], secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40102, "invalid token")
			c.Abort()
			return
		}

		if denylist != nil && claims.ID != "" {
			denied, err := denylist.IsTokenDenied(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail open: an unreachable denylist must not take auth down.
				log.Printf("auth: denylist check jti=%s: %v", claims.ID, err)
			} else if denied {
				common.Fail(c, http.StatusUnauthorized, 40103, "token revoked")
				c.Abort()
				return
			}
		}

		c.Set(ActorKey, auth.Actor{ID: claims.Subject, Role: claims.Role})
		c.Set(TokenIDKey, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(TokenExpKey, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

func ActorFromContext(c *gin.Context) (auth.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return auth.Actor{}, false
	}
	actor, ok := v.(auth.Actor)
	return actor, ok
}

func TokenFromContext(c *gin.Context) (jti string, exp time.Time, ok bool) {
	v, found := c.Get(TokenIDKey)
	if !found {
		return "", time.Time{}, false
	}
	jti, ok = v.(string)
	if !ok || jti == "" {
		return "", time.Time{}, false
	}
	if v, found := c.Get(TokenExpKey); found {
		exp, _ = v.(time.Time)
	}
	return jti, exp, true
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
			c.Abort()
			return
		}
		if !actor.IsAdmin() {
			common.Fail(c, http.StatusForbidden, 40301, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}
