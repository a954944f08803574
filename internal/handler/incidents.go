package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pulsewatch/backend/internal/model"
)

// incidentReader - 인시던트 조회용 DB 인터페이스
type incidentReader interface {
	ListIncidents(ctx context.Context, orgID string, limit int) ([]model.Incident, error)
	GetIncident(ctx context.Context, id string) (*model.Incident, error)
}

// IncidentHandler - 인시던트 조회 핸들러
type IncidentHandler struct {
	repo incidentReader
}

func NewIncidentHandler(repo incidentReader) *IncidentHandler {
	return &IncidentHandler{repo: repo}
}

// ListIncidents godoc
// @Summary List incidents for the caller's organization
// @Tags incidents
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {object} model.IncidentListEnvelope
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/incidents [get]
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	orgID, ok := orgIDFrom(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.repo.ListIncidents(c.Request.Context(), orgID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.IncidentListEnvelope{Status: "success", Data: list})
}

// GetIncident godoc
// @Summary Get incident detail
// @Tags incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} model.IncidentDetailEnvelope
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/incidents/{id} [get]
func (h *IncidentHandler) GetIncident(c *gin.Context) {
	inc, err := h.repo.GetIncident(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.IncidentDetailEnvelope{Status: "success", Data: inc})
}
