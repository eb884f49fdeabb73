// README: Bearer-token auth middleware backed by the external auth service.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gocab/internal/infra"
)

const (
	ctxUID  = "auth_uid"
	ctxRole = "auth_role"
	ctxName = "auth_name"
)

func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		identity, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUID, identity.ID)
		c.Set(ctxRole, identity.Role)
		c.Set(ctxName, identity.Name)
		c.Next()
	}
}

// RequireRole guards a route group to one role. Runs after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: " + role + " role required"})
			return
		}
		c.Next()
	}
}

func CallerUID(c *gin.Context) string  { return c.GetString(ctxUID) }
func CallerRole(c *gin.Context) string { return c.GetString(ctxRole) }
func CallerName(c *gin.Context) string { return c.GetString(ctxName) }
