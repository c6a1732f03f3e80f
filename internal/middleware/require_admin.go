package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/auth"
)

const principalKey = "admin_principal"

// RequireAdmin aborts with 401 unless the session carries the admin flag.
// On success the principal is attached to the request context.
func RequireAdmin(s *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := s.Principal(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"authenticated": false,
				"error":         "authentication required",
			})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// Admin returns the principal set by RequireAdmin.
func Admin(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
