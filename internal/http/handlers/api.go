package handlers

import (
	"database/sql"

	"vacai/internal/http/middleware"
	"vacai/internal/layout"
	"vacai/internal/services"

	"github.com/gin-gonic/gin"
)

// API holds the collaborators the handlers need. Everything is injected by
// the caller that builds the router.
type API struct {
	DB       *sql.DB
	Identity services.IdentityProvider
	Profiles services.ProfileStore
	Agents   *services.AgentStateService
	Actions  *services.ActionRegistry
	Timeline *services.TimelineService
	Bus      services.EventBus
	Layout   layout.Config
}

func (a *API) authService(c *gin.Context) services.AuthService {
	rid := middleware.GetRequestID(c)
	return services.AuthService{
		Identity:  a.Identity,
		Profiles:  services.ProfileService{Store: a.Profiles, RequestID: rid},
		RequestID: rid,
	}
}

func (a *API) profileService(c *gin.Context) services.ProfileService {
	return services.ProfileService{Store: a.Profiles, RequestID: middleware.GetRequestID(c)}
}
