package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "empty_body", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid payload", err.Error())
		return false
	}
	return true
}

// queryWidth reads ?width=; missing means 0, which lays out one hop per row.
func queryWidth(c *gin.Context) (float64, bool) {
	raw := strings.TrimSpace(c.Query("width"))
	if raw == "" {
		return 0, true
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_width", "width must be a number", nil)
		return 0, false
	}
	return w, true
}
