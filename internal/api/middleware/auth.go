package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/epigraph/internal/identity"
)

// Auth moves a bearer token from the Authorization header into the request
// context. Requests without one continue anonymously.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, ok := bearerToken(header); ok {
			c.Request = c.Request.WithContext(identity.WithAccessToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
