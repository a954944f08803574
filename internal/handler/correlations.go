package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulsewatch/backend/internal/model"
)

// correlationReader - correlation 조회/종결용 DB 인터페이스
type correlationReader interface {
	ListCorrelations(ctx context.Context, orgID string, limit int) ([]model.AlertCorrelation, error)
	GetCorrelation(ctx context.Context, id string) (*model.AlertCorrelation, error)
	ResolveCorrelation(ctx context.Context, id string, at time.Time) error
}

// CorrelationHandler - correlation 조회 핸들러
type CorrelationHandler struct {
	repo correlationReader
}

func NewCorrelationHandler(repo correlationReader) *CorrelationHandler {
	return &CorrelationHandler{repo: repo}
}

// ListCorrelations godoc
// @Summary List alert correlations for the caller's organization
// @Tags correlations
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows (default 200)"
// @Success 200 {object} model.CorrelationListEnvelope
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/correlations [get]
func (h *CorrelationHandler) ListCorrelations(c *gin.Context) {
	orgID, ok := orgIDFrom(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.repo.ListCorrelations(c.Request.Context(), orgID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.CorrelationListEnvelope{Status: "success", Data: list})
}

// GetCorrelation godoc
// @Summary Get correlation detail
// @Tags correlations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Correlation ID"
// @Success 200 {object} model.CorrelationDetailEnvelope
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/correlations/{id} [get]
func (h *CorrelationHandler) GetCorrelation(c *gin.Context) {
	corr, err := h.repo.GetCorrelation(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.CorrelationDetailEnvelope{Status: "success", Data: corr})
}

// ResolveCorrelation godoc
// @Summary Mark a correlation as resolved
// @Tags correlations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Correlation ID"
// @Success 200 {object} model.StatusResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/correlations/{id}/resolve [post]
func (h *CorrelationHandler) ResolveCorrelation(c *gin.Context) {
	if err := h.repo.ResolveCorrelation(c.Request.Context(), c.Param("id"), time.Now().UTC()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "success"})
}
