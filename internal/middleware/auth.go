package middleware

import (
	"hospital_training_portal/internal/session"
	"hospital_training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

// RequireSession gates the endpoints that need an authenticated session.
// The check is local; token validity against the upstream is the session
// manager's business.
func RequireSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := sessions.CurrentUser()
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// RequireAdmin allows only admin roles through. It must run after
// RequireSession.
func RequireAdmin(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := sessions.CurrentUser()
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
