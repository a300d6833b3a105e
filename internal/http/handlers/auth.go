package handlers

import (
	"net/http"

	"vacai/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	ThemeColor string `json:"themeColor"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type federatedRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// POST /api/auth/signup
func (a *API) SignUp(c *gin.Context) {
	var req signUpRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := a.authService(c).SignUp(c.Request.Context(), req.Email, req.Password, req.ThemeColor)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/auth/signin
func (a *API) SignIn(c *gin.Context) {
	var req signInRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := a.authService(c).SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/auth/federated
func (a *API) SignInFederated(c *gin.Context) {
	var req federatedRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := a.authService(c).SignInFederated(c.Request.Context(), req.IDToken)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/auth/signout
func (a *API) SignOut(c *gin.Context) {
	if err := a.authService(c).SignOut(c.Request.Context(), middleware.GetToken(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/auth/me
func (a *API) Me(c *gin.Context) {
	caller := middleware.GetRequestContext(c)
	view, err := a.profileService(c).Get(c.Request.Context(), caller.UID, caller.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": caller, "profile": view})
}
