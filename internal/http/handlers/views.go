package handlers

import (
	"net/http"

	"vacai/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type openViewRequest struct {
	Agent string  `json:"agent"`
	Width float64 `json:"width"`
}

type resizeRequest struct {
	Width *float64 `json:"width" binding:"required"`
}

type toggleRequest struct {
	Index *int `json:"index" binding:"required"`
}

// POST /api/views
func (a *API) OpenView(c *gin.Context) {
	var req openViewRequest
	if c.Request.ContentLength != 0 {
		if !BindJSONOrError(c, &req) {
			return
		}
	}
	view, err := a.Timeline.Open(c.Request.Context(), middleware.GetRequestContext(c), req.Agent, req.Width)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GET /api/views/:id
func (a *API) GetView(c *gin.Context) {
	view, err := a.Timeline.Get(middleware.GetRequestContext(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PUT /api/views/:id/width
func (a *API) ResizeView(c *gin.Context) {
	var req resizeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	view, err := a.Timeline.Resize(middleware.GetRequestContext(c), c.Param("id"), *req.Width)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/views/:id/toggle
func (a *API) ToggleView(c *gin.Context) {
	var req toggleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	view, err := a.Timeline.Toggle(middleware.GetRequestContext(c), c.Param("id"), *req.Index)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /api/views/:id
func (a *API) CloseView(c *gin.Context) {
	if err := a.Timeline.CloseView(middleware.GetRequestContext(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
