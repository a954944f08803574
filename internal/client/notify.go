// NotifyClient - 판정이 끝난 알림을 조직의 webhook 설정으로 전송하는
// 디스패처. 채널별 전달(이메일/Slack 변환 등)은 수신 측 notification
// 서비스의 몫이고, 여기서는 렌더링된 body를 HTTP로 넘기기만 한다.
//
// 개별 config 실패 시 로그만 남기고 나머지는 계속 전송한다.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/pulsewatch/backend/internal/model"
	"github.com/pulsewatch/backend/internal/template"
)

// webhookConfigReader - 조직 webhook 설정 조회용 DB 인터페이스
type webhookConfigReader interface {
	GetWebhookConfigs(ctx context.Context, orgID string) ([]model.WebhookConfig, error)
}

type NotifyClient struct {
	configDB   webhookConfigReader
	httpClient *http.Client
}

func NewNotifyClient(configDB webhookConfigReader) *NotifyClient {
	return &NotifyClient{
		configDB: configDB,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// DispatchAlert - 알림 1건을 조직의 모든 webhook으로 전송
func (c *NotifyClient) DispatchAlert(ctx context.Context, decision model.AlertDecision) {
	c.deliver(ctx, decision.Alert.OrgID, func(cfg model.WebhookConfig) []byte {
		if cfg.Body != "" {
			return []byte(template.RenderBody(cfg.Body, decision))
		}
		payload, err := json.Marshal(decision)
		if err != nil {
			log.Printf("[Notify] Failed to marshal alert decision: %v", err)
			return nil
		}
		return payload
	})
}

// DispatchRecovery - 인시던트 해소 통지
func (c *NotifyClient) DispatchRecovery(ctx context.Context, check model.Check, incident model.Incident) {
	c.deliver(ctx, check.OrgID, func(cfg model.WebhookConfig) []byte {
		if cfg.Body != "" {
			return []byte(template.RenderRecoveryBody(cfg.Body, check, incident))
		}
		payload, err := json.Marshal(map[string]any{
			"event":    "incident_resolved",
			"check":    check.Name,
			"incident": incident,
		})
		if err != nil {
			log.Printf("[Notify] Failed to marshal recovery payload: %v", err)
			return nil
		}
		return payload
	})
}

// DispatchSummary - aggregate 억제 분량을 묶은 요약 통지 1건
func (c *NotifyClient) DispatchSummary(ctx context.Context, orgID string, summaries []model.SuppressedAlertSummary) {
	c.deliver(ctx, orgID, func(cfg model.WebhookConfig) []byte {
		payload, err := json.Marshal(map[string]any{
			"event":            "alerts_suppressed",
			"suppressed_count": len(summaries),
			"alerts":           summaries,
		})
		if err != nil {
			log.Printf("[Notify] Failed to marshal summary payload: %v", err)
			return nil
		}
		return payload
	})
}

func (c *NotifyClient) deliver(ctx context.Context, orgID string, renderBody func(model.WebhookConfig) []byte) {
	configs, err := c.configDB.GetWebhookConfigs(ctx, orgID)
	if err != nil {
		log.Printf("[Notify] Failed to load webhook configs (org_id=%s): %v", orgID, err)
		return
	}

	for _, cfg := range configs {
		body := renderBody(cfg)
		if body == nil {
			continue
		}

		method := cfg.Method
		if method == "" {
			method = http.MethodPost
		}

		req, err := http.NewRequestWithContext(ctx, method, cfg.URL, bytes.NewBuffer(body))
		if err != nil {
			log.Printf("[Notify] Failed to create request (webhook_id=%d): %v", cfg.ID, err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		for _, h := range cfg.Headers {
			req.Header.Set(h.Key, h.Value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[Notify] Delivery failed (webhook_id=%d): %v", cfg.ID, err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("[Notify] Webhook returned status %d (webhook_id=%d)", resp.StatusCode, cfg.ID)
		}
	}
}
