package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/udyamsetu/platform/internal/auth"
	"github.com/udyamsetu/platform/internal/common"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// SessionResolver is the slice of the session store the middleware needs.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sid string) (uint64, error)
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)
		c.Set("request_id", rid)
		c.Next()
	}
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered path=%s err=%v", c.FullPath(), r)
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// AuthRequired accepts either the browser session cookie or a Bearer JWT
// (non-browser API clients). On success the user id lands in the gin
// context under UserIDKey.
func AuthRequired(jwtSecret, sessionCookie string, sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid, err := c.Cookie(sessionCookie); err == nil && sid != "" {
			uid, err := sessions.ResolveSession(c.Request.Context(), sid)
			if err == nil && uid != 0 {
				c.Set(UserIDKey, uid)
				c.Next()
				return
			}
		}

		authz := c.GetHeader("Authorization")
		if strings.HasPrefix(authz, "Bearer ") {
			uid, err := auth.ParseJWT(strings.TrimPrefix(authz, "Bearer "), jwtSecret)
			if err == nil && uid != 0 {
				c.Set(UserIDKey, uid)
				c.Next()
				return
			}
		}

		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		c.Abort()
	}
}
