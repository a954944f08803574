// Alert 상관관계(correlation) 모델 정의
// 서로 다른 체크에서 발생한 알림이라도 같은 원인에서 비롯됐다고 판단되면
// 하나의 correlation으로 묶어서 알림 폭주를 줄인다.

package model

import "time"

// Correlation 사유 값
const (
	ReasonSameCheck     = "same_check"
	ReasonSameLocation  = "same_location"
	ReasonSimilarError  = "similar_error"
	ReasonMultiple      = "multiple"
	ReasonTimeProximity = "time_proximity"
)

// Correlation 상태 값
const (
	CorrelationActive   = "active"
	CorrelationResolved = "resolved"
)

// AlertCorrelationConfig - 조직별 correlation 설정
type AlertCorrelationConfig struct {
	OrgID   string `json:"org_id"`
	Enabled bool   `json:"enabled"`

	// TimeWindowSeconds: correlation 생성 시각 기준으로 새 멤버를
	// 받아들일 수 있는 시간 창
	TimeWindowSeconds int `json:"time_window_seconds"`

	CorrelateBySameCheck    bool `json:"correlate_by_same_check"`
	CorrelateBySameLocation bool `json:"correlate_by_same_location"`
	CorrelateBySimilarError bool `json:"correlate_by_similar_error"`

	// SimilarityThreshold: 에러 텍스트 유사도 기준 (0–100)
	SimilarityThreshold int `json:"similarity_threshold"`
}

// CorrelatedAlert - correlation 판정에 쓰이는 최소 알림 레코드
type CorrelatedAlert struct {
	ID        string    `json:"id"`
	CheckID   string    `json:"check_id"`
	Location  string    `json:"location,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertCorrelation - 묶인 알림 그룹
type AlertCorrelation struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id"`

	// Alerts: 합류 순서대로 누적된 멤버 알림
	Alerts []CorrelatedAlert `json:"alerts"`

	// PrimaryAlertID: 첫 번째(시드) 알림의 id
	PrimaryAlertID string `json:"primary_alert_id"`

	Reason string `json:"reason"`

	// Detail: 사람이 읽을 수 있는 사유 설명 (multiple일 때 사유 나열)
	Detail string `json:"detail,omitempty"`

	Status    string    `json:"status"` // active | resolved
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CorrelationDecision - correlation 엔진이 알림 하나에 대해 내린 결정.
// 외부 notification 모듈로 그대로 전달된다.
type CorrelationDecision struct {
	Correlated    bool   `json:"correlated"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Reason        string `json:"correlation_reason,omitempty"`
	MemberCount   int    `json:"member_count,omitempty"`
}
