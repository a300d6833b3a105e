package api

import (
	stdhttp "net/http"

	intconfig "vacai/internal/config"
	h "vacai/internal/http/handlers"
	"vacai/internal/http/middleware"
	"vacai/internal/logging"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, a *h.API, verifier middleware.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		logging.Warn().Err(err).Msg("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", a.Health)
		api.GET("/db-check", a.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/signup", a.SignUp)
		auth.POST("/signin", a.SignIn)
		auth.POST("/federated", a.SignInFederated)

		private := api.Group("", middleware.RequireAuth(verifier))
		private.POST("/auth/signout", a.SignOut)
		private.GET("/auth/me", a.Me)

		// Profile
		private.GET("/profile", a.GetProfile)
		private.PUT("/profile", a.UpdateProfile)

		// Agent shared state
		mountAgents(private.Group("/agents"), a)

		// Actions
		private.GET("/actions", a.ListActions)
		private.POST("/actions/:name", a.InvokeAction)

		// Itinerary
		itinerary := private.Group("/itinerary")
		itinerary.GET("/layout", a.GetItineraryLayout)
		itinerary.POST("/layout", a.ComputeItineraryLayout)
		itinerary.GET("/pdf", a.GetItineraryPDF)

		// Timeline views
		mountViews(private.Group("/views"), a)

		// External agent process
		agentSync := api.Group("/agent-sync", middleware.RequireAgentKey(env.AgentAPIKey))
		agentSync.PUT("/:name/users/:uid/state", a.SyncAgentState)
	}

	h.SetRouter(r)
	return r
}

func mountAgents(g *gin.RouterGroup, a *h.API) {
	g.GET("/:name/state", a.GetAgentState)
	g.PUT("/:name/state", a.PutAgentState)
	g.GET("/:name/state/stream", a.StreamAgentState)
}

func mountViews(g *gin.RouterGroup, a *h.API) {
	g.POST("", a.OpenView)
	g.GET("/:id", a.GetView)
	g.PUT("/:id/width", a.ResizeView)
	g.POST("/:id/toggle", a.ToggleView)
	g.DELETE("/:id", a.CloseView)
}
