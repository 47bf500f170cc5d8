package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const internalTokenHeader = "X-Internal-Token"

// InternalToken guards service-to-service endpoints with a shared token.
// Endpoints stay closed when no token is configured.
func InternalToken(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(internalTokenHeader)
		if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid internal token"})
			return
		}
		c.Next()
	}
}
