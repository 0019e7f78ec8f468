package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maricastroc/minerva-ai/internal/domain"
)

const ownerKey = "owner_id"

// TokenVerifier resolves a bearer token to an owner id. Session
// issuance lives in an external service; this side only verifies.
type TokenVerifier interface {
	Verify(token string) (ownerID string, ok bool)
}

// StaticVerifier is a fixed token -> owner lookup, fed from
// configuration. Also used by handler tests.
type StaticVerifier map[string]string

func (v StaticVerifier) Verify(token string) (string, bool) {
	owner, ok := v[token]
	return owner, ok
}

// Auth returns middleware that requires a valid bearer token and puts
// the owner id on the request context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthorized.Error()})
			return
		}

		owner, ok := verifier.Verify(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthorized.Error()})
			return
		}

		c.Set(ownerKey, owner)
		c.Next()
	}
}

// Owner returns the authenticated owner id set by Auth.
func Owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}
