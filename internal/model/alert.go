// 파이프라인이 외부 notification 모듈로 내보내는 최종 알림 구조체 정의
// correlation/rate-limit/runbook 판정 결과를 모두 첨부해서 전달한다.

package model

import "time"

// Alert - 억제 단계를 통과해 표면화된 장애 알림 1건
type Alert struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	CheckID   string    `json:"check_id"`
	CheckName string    `json:"check_name"`
	CheckType string    `json:"check_type"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"` // down | degraded
	Severity  string    `json:"severity"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertDecision - 알림 1건에 대한 엔진의 최종 판정.
// Correlation과 RateLimit은 항상 채워지고, Runbook은 매칭됐을 때만 설정된다.
type AlertDecision struct {
	Alert       Alert               `json:"alert"`
	IncidentID  string              `json:"incident_id,omitempty"`
	Correlation CorrelationDecision `json:"correlation"`
	RateLimit   RateLimitDecision   `json:"rate_limit"`
	Runbook     *AlertRunbook       `json:"runbook,omitempty"`
}
