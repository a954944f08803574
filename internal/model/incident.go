package model

import "time"

// ============================================================================
// Incident 모델 (체크당 진행 중인 장애 단위)
// ============================================================================

// Incident - 체크가 non-up 상태로 머무는 연속 구간 하나.
// 체크당 활성(ResolvedAt == nil) 인시던트는 최대 1개만 존재한다.
type Incident struct {
	ID      string `json:"id"`
	CheckID string `json:"check_id"`

	// Status: down | degraded. 활성 상태에서는 degraded→down 승격만 가능,
	// 역방향 강등은 일어나지 않는다.
	Status string `json:"status"`

	StartedAt  time.Time  `json:"started_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// DurationSeconds: 종료 시 end−start를 초 단위(내림)로 기록
	DurationSeconds *int64 `json:"duration_seconds,omitempty"`

	LastError string `json:"last_error,omitempty"`

	// AffectedLocations: 인시던트 동안 실패를 관측한 리전의 누적 집합
	AffectedLocations []string `json:"affected_locations"`
}

// Active - 인시던트가 아직 종료되지 않았는지 여부
func (i *Incident) Active() bool {
	return i.ResolvedAt == nil
}

// HasLocation - location이 이미 누적 집합에 포함되어 있는지 여부
func (i *Incident) HasLocation(location string) bool {
	for _, l := range i.AffectedLocations {
		if l == location {
			return true
		}
	}
	return false
}
