package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
	"github.com/oksasatya/go-ddd-lms/pkg/response"
)

// Context keys set by Auth.
const (
	CtxUserID = "userID"
	CtxRole   = "role"
	CtxClaims = "claims"
)

// RefreshHeader advises clients to call /auth/refresh.
const RefreshHeader = "X-Token-Refresh"

var (
	errMissingToken = apperr.Unauthorized("token_missing", "authentication required")
	errForbidden    = apperr.Forbidden("role_forbidden", "insufficient role")
)

// Authenticator resolves a session token into the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*application.Principal, error)
}

// RefreshAdvisor reports whether a token is close enough to expiry to refresh.
type RefreshAdvisor interface {
	NeedsRefresh(c *helpers.Claims, now time.Time) bool
}

// Auth reads the session from the "token" cookie or an Authorization bearer
// header and stores the caller id, role and claims in the Gin context.
func Auth(auth Authenticator, advisor RefreshAdvisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			response.Fail(c, errMissingToken)
			return
		}
		p, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, err)
			return
		}
		if advisor != nil && advisor.NeedsRefresh(p.Claims, time.Now()) {
			c.Header(RefreshHeader, "recommended")
		}

		c.Set(CtxUserID, p.User.ID)
		c.Set(CtxRole, string(p.User.Role))
		c.Set(CtxClaims, p.Claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid session is present and
// otherwise lets the request through anonymously.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFrom(c); token != "" {
			if p, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(CtxUserID, p.User.ID)
				c.Set(CtxRole, string(p.User.Role))
				c.Set(CtxClaims, p.Claims)
			}
		}
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := entity.Role(c.GetString(CtxRole))
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Fail(c, errForbidden)
	}
}

func tokenFrom(c *gin.Context) string {
	if tok, err := c.Cookie(helpers.SessionCookie); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// UserID returns the authenticated caller id.
func UserID(c *gin.Context) string { return c.GetString(CtxUserID) }

// Actor returns the authenticated caller as a service actor.
func Actor(c *gin.Context) application.Actor {
	return application.Actor{ID: c.GetString(CtxUserID), Role: entity.Role(c.GetString(CtxRole))}
}

// Claims returns the verified token claims, nil outside Auth.
func Claims(c *gin.Context) *helpers.Claims {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*helpers.Claims)
	return claims
}
