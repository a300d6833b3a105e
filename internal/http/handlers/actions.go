package handlers

import (
	"net/http"

	"vacai/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/actions
func (a *API) ListActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": a.Actions.List()})
}

// POST /api/actions/:name
func (a *API) InvokeAction(c *gin.Context) {
	args := map[string]any{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_payload", "arguments must be a JSON object", err.Error())
			return
		}
	}
	res, err := a.Actions.Invoke(c.Request.Context(), middleware.GetRequestContext(c), c.Param("name"), args)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
