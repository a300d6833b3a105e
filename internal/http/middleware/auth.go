package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"vacai/internal/domain"
	"vacai/internal/identity"

	"github.com/gin-gonic/gin"
)

const (
	authKey  = "auth"
	tokenKey = "auth_token"
)

// TokenVerifier is satisfied by *identity.Provider.
type TokenVerifier interface {
	Verify(token string) (identity.Claims, error)
}

// RequireAuth accepts "Authorization: Bearer <token>". EventSource clients
// cannot set headers, so access_token in the query is accepted as well.
func RequireAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = strings.TrimSpace(c.Query("access_token"))
		}
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		claims, err := v.Verify(token)
		if err != nil {
			abortUnauthorized(c, identity.Message(err))
			return
		}
		c.Set(authKey, domain.RequestContext{UID: claims.Subject, Email: claims.Email, TokenID: claims.ID})
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireAgentKey guards endpoints called by the external agent process.
// With no key configured the endpoints are disabled.
func RequireAgentKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":      "agent sync is disabled",
				"code":       "agent_sync_disabled",
				"request_id": GetRequestID(c),
			})
			return
		}
		got := c.GetHeader("X-Agent-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			abortUnauthorized(c, "invalid agent key")
			return
		}
		c.Next()
	}
}

// GetRequestContext returns the identity set by RequireAuth.
func GetRequestContext(c *gin.Context) domain.RequestContext {
	if v, ok := c.Get(authKey); ok {
		if rc, ok := v.(domain.RequestContext); ok {
			return rc
		}
	}
	return domain.RequestContext{}
}

// GetToken returns the raw token RequireAuth accepted.
func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
