package handlers

import (
	"net/http"

	"vacai/internal/domain/models"
	"vacai/internal/http/middleware"
	"vacai/internal/services"

	"github.com/gin-gonic/gin"
)

type layoutRequest struct {
	Hops  []models.ItineraryHop `json:"hops"`
	Width float64               `json:"width"`
}

// GET /api/itinerary/layout?agent=&width=
func (a *API) GetItineraryLayout(c *gin.Context) {
	width, ok := queryWidth(c)
	if !ok {
		return
	}
	res, err := a.Timeline.Layout(c.Request.Context(), middleware.GetRequestContext(c), c.Query("agent"), width)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/itinerary/layout
func (a *API) ComputeItineraryLayout(c *gin.Context) {
	var req layoutRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := a.Timeline.ComputeLayout(req.Hops, req.Width)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/itinerary/pdf?agent=&width=
func (a *API) GetItineraryPDF(c *gin.Context) {
	width, ok := queryWidth(c)
	if !ok {
		return
	}
	caller := middleware.GetRequestContext(c)
	snap, err := a.Agents.Get(c.Request.Context(), caller.UID, c.Query("agent"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if width <= 0 {
		width = 4 * a.Layout.NodeWidth
	}

	svc := services.ItineraryPDF{Config: a.Layout, RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.Render(snap.Agent, snap.State.Itinerary.Hops, width)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "pdf_failed", "failed to render itinerary", nil)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
