package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const requestIDKey = "request_id"

// RequestID ensures every request has an ID for tracing and logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.Request.Header.Get("X-Request-ID"))
		if rid == "" || len(rid) > 64 {
			rid = ulid.Make().String()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// GetRequestID extracts request_id from gin context when available.
func GetRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
