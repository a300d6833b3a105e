package handlers

import (
	"net/http"

	"vacai/internal/domain"
	"vacai/internal/http/middleware"
	"vacai/internal/identity"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case identity.CodeOf(err) != "":
		RespondAuthError(c, err)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong.", nil)
	}
}

// RespondAuthError shows the fixed user-facing message for an identity failure.
func RespondAuthError(c *gin.Context, err error) {
	code := identity.CodeOf(err)
	status := http.StatusUnauthorized
	switch code {
	case identity.CodeInvalidEmail, identity.CodeWeakPassword, identity.CodePasswordTooLong:
		status = http.StatusBadRequest
	case identity.CodeEmailInUse:
		status = http.StatusConflict
	case identity.CodeInternal, "":
		_ = c.Error(err)
		status = http.StatusInternalServerError
	}
	if code == "" {
		code = identity.CodeInternal
	}
	respondError(c, status, string(code), identity.Message(err), nil)
}
