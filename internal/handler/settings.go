package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pulsewatch/backend/internal/model"
)

// settingsStore - 조직별 correlation/rate-limit/webhook 설정용 DB 인터페이스
type settingsStore interface {
	GetCorrelationConfig(ctx context.Context, orgID string) (*model.AlertCorrelationConfig, error)
	UpsertCorrelationConfig(ctx context.Context, cfg model.AlertCorrelationConfig) error
	GetRateLimitConfig(ctx context.Context, orgID string) (*model.AlertRateLimitConfig, error)
	UpsertRateLimitConfig(ctx context.Context, cfg model.AlertRateLimitConfig) error
	GetWebhookConfigs(ctx context.Context, orgID string) ([]model.WebhookConfig, error)
	CreateWebhookConfig(ctx context.Context, orgID string, req model.WebhookConfigRequest) (int, error)
	DeleteWebhookConfig(ctx context.Context, id int) error
}

// SettingsHandler - 알림 관련 조직 설정 핸들러
type SettingsHandler struct {
	repo settingsStore
}

func NewSettingsHandler(repo settingsStore) *SettingsHandler {
	return &SettingsHandler{repo: repo}
}

// GetCorrelationConfig godoc
// @Summary Get alert correlation settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.AlertCorrelationConfig
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/settings/correlation [get]
func (h *SettingsHandler) GetCorrelationConfig(c *gin.Context) {
	orgID, ok := orgIDFrom(c)
	if !ok {
		return
	}
	cfg, err := h.repo.GetCorrelationConfig(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if cfg == nil {
		// 설정이 없으면 기능 비활성 상태의 기본값을 돌려준다
		cfg = &model.AlertCorrelationConfig{OrgID: orgID}
	}
	c.JSON(http.StatusOK, cfg)
}

// PutCorrelationConfig godoc
// @Summary Update alert correlation settings
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.AlertCorrelationConfig true "Config"
// @Success 200 {object} model.StatusResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/settings/correlation [put]
func (h *SettingsHandler) PutCorrelationConfig(c *gin.Context) {
	orgID, ok := orgIDFrom(c)
	if !ok {
		return
	}
	var cfg model.AlertCorrelationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	cfg.OrgID = orgID
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "similarity_threshold must be 0-100"})
		return
	}

	if err := h.repo.UpsertCorrelationConfig(c.Request.Context(), cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "success"})
}

// GetRateLimitConfig godoc
// @Summary Get alert rate limit settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.AlertRateLimitConfig
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/settings/ratelimit [get]
func (h *SettingsHandler) GetRateLimitConfig(c *gin.Context) {
	orgID, ok := orgIDFrom(c)
	if !ok {
		return
	}
	cfg, err := h.repo.GetRateLimitConfig(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if cfg == nil {
		cfg = &model.AlertRateLimitConfig{OrgID: orgID}
	}
	c.JSON(http.StatusOK, cfg)
}

// PutRateLimitConfig godoc
// @Summary Update alert rate limit settings
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.AlertRateLimitConfig true "Config"
// @Success 200 {object} model.StatusResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/settings/ratelimit [put]
func (h *SettingsHandler) PutRateLimitConfig(c *gin.Context) {
	orgID, ok := orgIDFrom(c)
	if !ok {
		return
	}
	var cfg model.AlertRateLimitConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	cfg.OrgID = orgID
	if cfg.SuppressionMode == "" {
		cfg.SuppressionMode = model.SuppressionAggregate
	}

	if err := h.repo.UpsertRateLimitConfig(c.Request.Context(), cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "success"})
}

// ListWebhookConfigs godoc
// @Summary List notification webhook configs
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.WebhookConfigListResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/settings/webhooks [get]
func (h *SettingsHandler) ListWebhookConfigs(c *gin.Context) {
	orgID, ok := orgIDFrom(c)
	if !ok {
		return
	}
	configs, err := h.repo.GetWebhookConfigs(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.WebhookConfigListResponse{Status: "success", Data: configs})
}

// CreateWebhookConfig godoc
// @Summary Create a notification webhook config
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.WebhookConfigRequest true "Webhook config"
// @Success 200 {object} model.WebhookConfigMutationResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/settings/webhooks [post]
func (h *SettingsHandler) CreateWebhookConfig(c *gin.Context) {
	orgID, ok := orgIDFrom(c)
	if !ok {
		return
	}
	var req model.WebhookConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	id, err := h.repo.CreateWebhookConfig(c.Request.Context(), orgID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.WebhookConfigMutationResponse{Status: "success", Message: "webhook created", ID: id})
}

// DeleteWebhookConfig godoc
// @Summary Delete a notification webhook config
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Webhook Config ID"
// @Success 200 {object} model.WebhookConfigMutationResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/settings/webhooks/{id} [delete]
func (h *SettingsHandler) DeleteWebhookConfig(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid id"})
		return
	}
	if err := h.repo.DeleteWebhookConfig(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.WebhookConfigMutationResponse{Status: "success", Message: "webhook deleted"})
}
