package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pulsewatch/backend/internal/model"
)

// runbookStore - runbook CRUD용 DB 인터페이스
type runbookStore interface {
	ListRunbooks(ctx context.Context, orgID string) ([]model.AlertRunbook, error)
	GetRunbook(ctx context.Context, id string) (*model.AlertRunbook, error)
	CreateRunbook(ctx context.Context, r model.AlertRunbook) error
	UpdateRunbook(ctx context.Context, r model.AlertRunbook) error
	DeleteRunbook(ctx context.Context, id string) error
}

// RunbookHandler - runbook 관리 핸들러
type RunbookHandler struct {
	repo runbookStore
}

func NewRunbookHandler(repo runbookStore) *RunbookHandler {
	return &RunbookHandler{repo: repo}
}

// ListRunbooks godoc
// @Summary List runbooks for the caller's organization
// @Tags runbooks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.RunbookListEnvelope
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/runbooks [get]
func (h *RunbookHandler) ListRunbooks(c *gin.Context) {
	orgID, ok := orgIDFrom(c)
	if !ok {
		return
	}
	list, err := h.repo.ListRunbooks(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.RunbookListEnvelope{Status: "success", Data: list})
}

// GetRunbook godoc
// @Summary Get a runbook by ID
// @Tags runbooks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Runbook ID"
// @Success 200 {object} model.RunbookDetailEnvelope
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/runbooks/{id} [get]
func (h *RunbookHandler) GetRunbook(c *gin.Context) {
	rb, err := h.repo.GetRunbook(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.RunbookDetailEnvelope{Status: "success", Data: rb})
}

// CreateRunbook godoc
// @Summary Create a runbook
// @Tags runbooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.RunbookRequest true "Runbook"
// @Success 200 {object} model.RunbookMutationResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/runbooks [post]
func (h *RunbookHandler) CreateRunbook(c *gin.Context) {
	orgID, ok := orgIDFrom(c)
	if !ok {
		return
	}
	var req model.RunbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	rb := model.AlertRunbook{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Title:     req.Title,
		CheckType: defaultAll(req.CheckType),
		Severity:  defaultAll(req.Severity),
		Content:   req.Content,
	}
	if err := h.repo.CreateRunbook(c.Request.Context(), rb); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.RunbookMutationResponse{Status: "success", Message: "runbook created", RunbookID: rb.ID})
}

// UpdateRunbook godoc
// @Summary Update a runbook
// @Tags runbooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Runbook ID"
// @Param request body model.RunbookRequest true "Runbook"
// @Success 200 {object} model.RunbookMutationResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/runbooks/{id} [put]
func (h *RunbookHandler) UpdateRunbook(c *gin.Context) {
	var req model.RunbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	rb := model.AlertRunbook{
		ID:        c.Param("id"),
		Title:     req.Title,
		CheckType: defaultAll(req.CheckType),
		Severity:  defaultAll(req.Severity),
		Content:   req.Content,
	}
	if err := h.repo.UpdateRunbook(c.Request.Context(), rb); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.RunbookMutationResponse{Status: "success", Message: "runbook updated", RunbookID: rb.ID})
}

// DeleteRunbook godoc
// @Summary Delete a runbook
// @Tags runbooks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Runbook ID"
// @Success 200 {object} model.RunbookMutationResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/runbooks/{id} [delete]
func (h *RunbookHandler) DeleteRunbook(c *gin.Context) {
	if err := h.repo.DeleteRunbook(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.RunbookMutationResponse{Status: "success", Message: "runbook deleted"})
}

func defaultAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}
