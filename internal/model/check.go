// Check 및 CheckResult 구조체 정의
// 체크 정의는 설정 CRUD 모듈이 소유하며, 엔진은 읽기만 한다.
// 결과 레코드는 (check, location, execution)마다 하나씩 생성되고 불변이다.

package model

import "time"

// 체크 결과 상태 값
const (
	StatusUp       = "up"
	StatusDown     = "down"
	StatusDegraded = "degraded"
)

// Check - 주기적으로 실행되는 모니터링 체크 정의 (read-only)
type Check struct {
	ID     string `json:"id"`
	OrgID  string `json:"org_id"`
	Name   string `json:"name"`
	Type   string `json:"type"` // http, dns, tcp, ssl ...
	Target string `json:"target"`

	// 프로브를 실행할 리전 이름 목록 (예: "us-east", "eu-west")
	Locations []string `json:"locations"`

	Assertions []Assertion `json:"assertions"`

	// IntervalSeconds: 스케줄러 실행 주기
	IntervalSeconds int `json:"interval_seconds"`

	// ConsecutiveFailuresThreshold: N회 연속 실패해야 장애로 표시 (기본 1)
	ConsecutiveFailuresThreshold int `json:"consecutive_failures_threshold"`

	// SSLExpiryWarningDays: 인증서 만료 며칠 전부터 degraded 처리할지
	SSLExpiryWarningDays int `json:"ssl_expiry_warning_days"`

	Enabled bool `json:"enabled"`
}

// Assertion - 체크에 선언된 단일 검증 조건
type Assertion struct {
	Type     string `json:"type"`     // responseTime | statusCode | bodyContains | headerContains
	Operator string `json:"operator"` // lessThan | greaterThan | equals | contains
	Value    string `json:"value"`
}

// AssertionResult - 관측값에 대해 assertion 하나를 평가한 결과
type AssertionResult struct {
	Type     string `json:"type"`
	Operator string `json:"operator"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
}

// CertificateSummary - 프로브가 관측한 TLS 인증서 요약
type CertificateSummary struct {
	NotBefore       time.Time `json:"not_before"`
	NotAfter        time.Time `json:"not_after"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
}

// CheckResult - 한 번의 (check, location) 실행 결과. 생성 이후 불변.
type CheckResult struct {
	ID             string  `json:"id"`
	CheckID        string  `json:"check_id"`
	Location       string  `json:"location"`
	Status         string  `json:"status"` // up | down | degraded
	ResponseTimeMS float64 `json:"response_time_ms"`

	// StatusCode: HTTP 체크가 아닌 경우 0
	StatusCode int `json:"status_code,omitempty"`

	Error string `json:"error,omitempty"`

	Assertions       []AssertionResult `json:"assertions,omitempty"`
	AssertionsPassed int               `json:"assertions_passed"`
	AssertionsFailed int               `json:"assertions_failed"`

	Certificate *CertificateSummary `json:"certificate,omitempty"`

	CheckedAt time.Time `json:"checked_at"`
}

// MaintenanceWindow - 체크별 점검 시간대. [Start, End] 안에서는
// 실패 카운트와 인시던트 전이가 모두 중단된다.
type MaintenanceWindow struct {
	ID      string    `json:"id"`
	CheckID string    `json:"check_id"`
	Name    string    `json:"name"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Reason  string    `json:"reason,omitempty"`
}
