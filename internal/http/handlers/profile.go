package handlers

import (
	"net/http"

	"vacai/internal/http/middleware"
	"vacai/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/profile
func (a *API) GetProfile(c *gin.Context) {
	caller := middleware.GetRequestContext(c)
	view, err := a.profileService(c).Get(c.Request.Context(), caller.UID, caller.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PUT /api/profile
func (a *API) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if !BindJSONOrError(c, &req) {
		return
	}
	caller := middleware.GetRequestContext(c)
	view, err := a.profileService(c).Update(c.Request.Context(), caller.UID, caller.Email, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
