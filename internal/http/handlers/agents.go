package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"vacai/internal/domain/models"
	"vacai/internal/event"
	"vacai/internal/http/middleware"
	"vacai/internal/services"
	"vacai/internal/utils"

	"github.com/gin-gonic/gin"
)

const streamHeartbeat = 25 * time.Second

// GET /api/agents/:name/state
func (a *API) GetAgentState(c *gin.Context) {
	caller := middleware.GetRequestContext(c)
	snap, err := a.Agents.Get(c.Request.Context(), caller.UID, c.Param("name"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// PUT /api/agents/:name/state
func (a *API) PutAgentState(c *gin.Context) {
	a.replaceState(c, middleware.GetRequestContext(c).UID, services.OriginClient)
}

// PUT /api/agent-sync/:name/users/:uid/state, called by the agent process.
func (a *API) SyncAgentState(c *gin.Context) {
	a.replaceState(c, c.Param("uid"), services.OriginAgent)
}

func (a *API) replaceState(c *gin.Context, uid, origin string) {
	var req models.AgentState
	if !BindJSONOrError(c, &req) {
		return
	}
	snap, err := a.Agents.Replace(c.Request.Context(), uid, c.Param("name"), origin, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GET /api/agents/:name/state/stream
//
// Server-sent events: "state" with the current snapshot first and then every
// newer version, "signed_out" right before the stream ends because the user
// signed out.
func (a *API) StreamAgentState(c *gin.Context) {
	caller := middleware.GetRequestContext(c)
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates, unsubscribe, err := a.Agents.Subscribe(ctx, caller.UID, c.Param("name"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	defer unsubscribe()

	authEvents, stopAuth, err := a.Bus.Subscribe(ctx, event.AuthState)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	defer stopAuth()

	current, err := a.Agents.Get(ctx, caller.UID, c.Param("name"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	// The server's write timeout would otherwise cut the stream.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	rid := middleware.GetRequestID(c)
	utils.LogEvent(rid, "agents", "stream_open", "uid="+caller.UID+" agent="+current.Agent)
	defer utils.LogEvent(rid, "agents", "stream_close", "uid="+caller.UID+" agent="+current.Agent)

	last := current.Version
	c.SSEvent("state", current)
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap, ok := <-updates:
			if !ok {
				return false
			}
			if snap.Version > last {
				last = snap.Version
				c.SSEvent("state", snap)
			}
			return true
		case ev, ok := <-authEvents:
			if !ok {
				return false
			}
			var change event.AuthChange
			if ev.Key != caller.UID || ev.Decode(&change) != nil || change.SignedIn {
				return true
			}
			c.SSEvent("signed_out", gin.H{"uid": caller.UID})
			return false
		case <-heartbeat.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			return true
		}
	})
}
