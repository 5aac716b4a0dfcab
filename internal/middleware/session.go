package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/pkg"
)

// SessionChecker is satisfied by *session.Manager.
type SessionChecker interface {
	Authenticated(ctx context.Context) bool
}

// RequireSession lets the request through only when a session with a valid,
// unexpired access token exists. Otherwise the client is sent to the login
// view: a 302 for browser navigations, a 401 carrying the redirect target
// for API calls.
func RequireSession(s SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Authenticated(c.Request.Context()) {
			c.Next()
			return
		}
		pkg.LoginRedirect(c, 0)
	}
}
