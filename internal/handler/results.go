package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pulsewatch/backend/internal/client"
	"github.com/pulsewatch/backend/internal/model"
	"github.com/pulsewatch/backend/internal/service"
)

// resultReader - 결과 이력 조회용 DB 인터페이스
type resultReader interface {
	ListResultsByCheck(ctx context.Context, checkID string, limit int) ([]model.CheckResult, error)
	GetCheck(ctx context.Context, id string) (*model.Check, error)
}

// observationProcessor - 외부 prober가 푸시한 관측값 처리 (Pipeline이 구현)
type observationProcessor interface {
	ProcessObservation(ctx context.Context, check model.Check, location string, obs *client.ProbeResponse) (model.CheckResult, service.IncidentTransition, error)
}

// ResultHandler - 결과 이력 조회 및 관측값 ingest 핸들러
type ResultHandler struct {
	repo     resultReader
	pipeline observationProcessor
}

func NewResultHandler(repo resultReader, pipeline observationProcessor) *ResultHandler {
	return &ResultHandler{repo: repo, pipeline: pipeline}
}

// IngestRequest - prober 푸시 페이로드
type IngestRequest struct {
	CheckID     string               `json:"check_id" binding:"required"`
	Location    string               `json:"location"`
	Observation client.ProbeResponse `json:"observation"`
}

// ListResults godoc
// @Summary List recent results for a check
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param id path string true "Check ID"
// @Param limit query int false "Max rows (default 100)"
// @Success 200 {object} model.ResultListEnvelope
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/checks/{id}/results [get]
func (h *ResultHandler) ListResults(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	results, err := h.repo.ListResultsByCheck(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.ResultListEnvelope{Status: "success", Data: results})
}

// IngestResult godoc
// @Summary Ingest one probe observation pushed by an external prober
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body IngestRequest true "Observation"
// @Success 200 {object} model.IngestResultResponse
// @Failure 400,404 {object} model.ErrorResponse
// @Router /api/v1/results [post]
func (h *ResultHandler) IngestResult(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	check, err := h.repo.GetCheck(c.Request.Context(), req.CheckID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "check not found"})
		return
	}

	result, transition, err := h.pipeline.ProcessObservation(c.Request.Context(), *check, req.Location, &req.Observation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	resp := model.IngestResultResponse{Status: "success", ResultID: result.ID}
	if transition.Incident != nil {
		resp.IncidentID = transition.Incident.ID
	}
	c.JSON(http.StatusOK, resp)
}
