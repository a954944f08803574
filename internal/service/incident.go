// Incident 라이프사이클 상태 머신
//
// 체크별 상태: none → active(degraded) → active(down) → none(closed)
//  - 첫 표면화된 non-up 결과: 새 인시던트 생성
//  - 진행 중 non-up 결과: 리전 누적, degraded→down 승격 (강등 없음)
//  - 표면화된 up 결과: 종료 시각/지속 시간 기록 후 닫힘
//
// 같은 체크의 동시 프로브는 체크별 락으로 직렬화한다.

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pulsewatch/backend/internal/model"
)

// 인시던트 전이 이벤트
const (
	IncidentOpened    = "opened"
	IncidentExtended  = "extended"
	IncidentEscalated = "escalated"
	IncidentResolved  = "resolved"
)

// incidentStore - 인시던트 저장용 DB 인터페이스
type incidentStore interface {
	GetActiveIncident(ctx context.Context, checkID string) (*model.Incident, error)
	CreateIncident(ctx context.Context, inc model.Incident) error
	ExtendIncident(ctx context.Context, id, status, lastError string, locations []string) error
	CloseIncident(ctx context.Context, id string, resolvedAt time.Time, durationSeconds int64) error
}

// IncidentTransition - Apply 한 번이 일으킨 상태 전이.
// Event가 빈 문자열이면 전이 없음(활성 인시던트도 없음).
type IncidentTransition struct {
	Event    string
	Incident *model.Incident
}

// IncidentManager - 체크별 진행 중 인시던트의 내부 장부 관리자
type IncidentManager struct {
	repo  incidentStore
	locks *keyedMutex
	now   func() time.Time
}

func NewIncidentManager(repo incidentStore) *IncidentManager {
	return &IncidentManager{repo: repo, locks: newKeyedMutex(), now: time.Now}
}

// Apply - 표면화된(억제 통과 후) 결과 하나를 인시던트 상태에 반영한다
func (m *IncidentManager) Apply(ctx context.Context, result model.CheckResult) (IncidentTransition, error) {
	lock := m.locks.get(result.CheckID)
	lock.Lock()
	defer lock.Unlock()

	active, err := m.repo.GetActiveIncident(ctx, result.CheckID)
	if err != nil {
		return IncidentTransition{}, err
	}

	if result.Status == model.StatusUp {
		if active == nil {
			return IncidentTransition{}, nil
		}
		return m.close(ctx, active)
	}

	if active == nil {
		return m.open(ctx, result)
	}
	return m.extend(ctx, active, result)
}

func (m *IncidentManager) open(ctx context.Context, result model.CheckResult) (IncidentTransition, error) {
	inc := model.Incident{
		ID:        uuid.NewString(),
		CheckID:   result.CheckID,
		Status:    result.Status,
		StartedAt: m.now().UTC(),
		LastError: result.Error,
	}
	if result.Location != "" {
		inc.AffectedLocations = []string{result.Location}
	}
	if err := m.repo.CreateIncident(ctx, inc); err != nil {
		return IncidentTransition{}, err
	}
	return IncidentTransition{Event: IncidentOpened, Incident: &inc}, nil
}

func (m *IncidentManager) extend(ctx context.Context, active *model.Incident, result model.CheckResult) (IncidentTransition, error) {
	event := IncidentExtended

	// degraded→down 승격만 허용. down→degraded 강등은 무시.
	if result.Status == model.StatusDown && active.Status == model.StatusDegraded {
		active.Status = model.StatusDown
		event = IncidentEscalated
	}

	if result.Location != "" && !active.HasLocation(result.Location) {
		active.AffectedLocations = append(active.AffectedLocations, result.Location)
	}
	if result.Error != "" {
		active.LastError = result.Error
	}

	if err := m.repo.ExtendIncident(ctx, active.ID, active.Status, active.LastError, active.AffectedLocations); err != nil {
		return IncidentTransition{}, err
	}
	return IncidentTransition{Event: event, Incident: active}, nil
}

func (m *IncidentManager) close(ctx context.Context, active *model.Incident) (IncidentTransition, error) {
	resolvedAt := m.now().UTC()
	duration := int64(resolvedAt.Sub(active.StartedAt).Seconds())

	if err := m.repo.CloseIncident(ctx, active.ID, resolvedAt, duration); err != nil {
		return IncidentTransition{}, err
	}
	active.ResolvedAt = &resolvedAt
	active.DurationSeconds = &duration
	return IncidentTransition{Event: IncidentResolved, Incident: active}, nil
}
