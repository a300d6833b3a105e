package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func (a *API) Health(c *gin.Context) {
	out := gin.H{"status": "ok", "message": "vacai backend running"}
	if a.Agents != nil {
		out["agent"] = a.Agents.DefaultAgent()
	}
	if a.Timeline != nil {
		out["open_views"] = a.Timeline.Count()
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) DBCheck(c *gin.Context) {
	if a.DB == nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database not connected", nil)
		return
	}
	var count int
	if err := a.DB.QueryRowContext(c.Request.Context(), "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		respondError(c, http.StatusInternalServerError, "db_query_failed", "database query failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "users_in_db": count})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router not ready"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
