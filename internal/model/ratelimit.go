// Alert rate limit 모델 정의
// 조직별 고정 크기 시간 창으로 알림 전송량을 제한한다.

package model

import "time"

// Suppression 모드 값
const (
	SuppressionAggregate = "aggregate"
	SuppressionDrop      = "drop"
)

// AlertRateLimitConfig - 조직별 rate limit 설정
type AlertRateLimitConfig struct {
	OrgID   string `json:"org_id"`
	Enabled bool   `json:"enabled"`

	// MaxAlerts: 창 하나에서 통과시킬 최대 알림 수
	MaxAlerts int `json:"max_alerts"`

	// TimeWindowSeconds: 창 길이. 경과 시 카운터를 통째로 리셋한다.
	TimeWindowSeconds int `json:"time_window_seconds"`

	// SuppressionMode: aggregate | drop
	SuppressionMode string `json:"suppression_mode"`

	// AggregateThreshold: aggregate 모드에서 버퍼가 이 수에 도달하면
	// 요약 알림 1건을 내보낸다
	AggregateThreshold int `json:"aggregate_threshold"`
}

// SuppressedAlertSummary - aggregate 모드에서 버퍼링되는 알림 요약
type SuppressedAlertSummary struct {
	AlertID   string    `json:"alert_id"`
	CheckName string    `json:"check_name"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// RateLimitDecision - 알림 1건에 대한 limiter의 반환 계약
type RateLimitDecision struct {
	Allowed bool `json:"allowed"`

	// SuppressedCount: 현재 창에서 억제된 누적 건수
	SuppressedCount int `json:"suppressed_count"`

	// SummaryNeeded: 호출자가 버퍼된 알림을 묶어 요약 알림을
	// 내보내야 하는지 여부
	SummaryNeeded bool `json:"summary_needed"`

	// Summaries: SummaryNeeded가 true일 때, 방금 비워진 버퍼 내용
	Summaries []SuppressedAlertSummary `json:"summaries,omitempty"`
}
