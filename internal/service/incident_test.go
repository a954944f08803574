package service

import (
	"context"
	"testing"
	"time"

	"github.com/pulsewatch/backend/internal/model"
)

// fakeIncidentStore - 체크별 활성 인시던트 1개 규칙을 흉내내는 인메모리 저장소
type fakeIncidentStore struct {
	incidents map[string]*model.Incident // id → incident
}

func newFakeIncidentStore() *fakeIncidentStore {
	return &fakeIncidentStore{incidents: make(map[string]*model.Incident)}
}

func (f *fakeIncidentStore) GetActiveIncident(ctx context.Context, checkID string) (*model.Incident, error) {
	for _, inc := range f.incidents {
		if inc.CheckID == checkID && inc.ResolvedAt == nil {
			copied := *inc
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeIncidentStore) CreateIncident(ctx context.Context, inc model.Incident) error {
	copied := inc
	f.incidents[inc.ID] = &copied
	return nil
}

func (f *fakeIncidentStore) ExtendIncident(ctx context.Context, id, status, lastError string, locations []string) error {
	inc := f.incidents[id]
	inc.Status = status
	inc.LastError = lastError
	inc.AffectedLocations = locations
	return nil
}

func (f *fakeIncidentStore) CloseIncident(ctx context.Context, id string, resolvedAt time.Time, durationSeconds int64) error {
	inc := f.incidents[id]
	inc.ResolvedAt = &resolvedAt
	inc.DurationSeconds = &durationSeconds
	return nil
}

func failedResult(checkID, status, location, errText string) model.CheckResult {
	return model.CheckResult{CheckID: checkID, Status: status, Location: location, Error: errText}
}

func TestIncidentOpenExtendResolve(t *testing.T) {
	store := newFakeIncidentStore()
	mgr := NewIncidentManager(store)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	current := base
	mgr.now = func() time.Time { return current }
	ctx := context.Background()

	// 첫 실패: 인시던트 생성
	tr, err := mgr.Apply(ctx, failedResult("chk-1", model.StatusDown, "us-east", "connection refused"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if tr.Event != IncidentOpened {
		t.Fatalf("event = %q, want opened", tr.Event)
	}
	if tr.Incident.Status != model.StatusDown || tr.Incident.LastError != "connection refused" {
		t.Fatalf("unexpected incident: %+v", tr.Incident)
	}
	if len(tr.Incident.AffectedLocations) != 1 || tr.Incident.AffectedLocations[0] != "us-east" {
		t.Fatalf("locations = %v, want [us-east]", tr.Incident.AffectedLocations)
	}

	// 다른 리전의 실패: 기존 인시던트에 리전 누적, 중복 없음
	tr, err = mgr.Apply(ctx, failedResult("chk-1", model.StatusDown, "eu-west", "connection refused"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if tr.Event != IncidentExtended {
		t.Fatalf("event = %q, want extended", tr.Event)
	}
	if len(tr.Incident.AffectedLocations) != 2 {
		t.Fatalf("locations = %v, want 2 entries", tr.Incident.AffectedLocations)
	}

	tr, err = mgr.Apply(ctx, failedResult("chk-1", model.StatusDown, "eu-west", "connection refused"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(tr.Incident.AffectedLocations) != 2 {
		t.Fatalf("locations = %v, duplicate location appended", tr.Incident.AffectedLocations)
	}

	// 90.7초 뒤 복구: duration은 버림으로 90초
	current = base.Add(90*time.Second + 700*time.Millisecond)
	tr, err = mgr.Apply(ctx, failedResult("chk-1", model.StatusUp, "us-east", ""))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if tr.Event != IncidentResolved {
		t.Fatalf("event = %q, want resolved", tr.Event)
	}
	if tr.Incident.DurationSeconds == nil || *tr.Incident.DurationSeconds != 90 {
		t.Fatalf("duration = %v, want 90", tr.Incident.DurationSeconds)
	}

	// 닫힌 뒤의 up 결과는 전이 없음
	tr, err = mgr.Apply(ctx, failedResult("chk-1", model.StatusUp, "us-east", ""))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if tr.Event != "" {
		t.Fatalf("event = %q, want no transition", tr.Event)
	}
}

func TestIncidentEscalatesWithoutRegression(t *testing.T) {
	store := newFakeIncidentStore()
	mgr := NewIncidentManager(store)
	ctx := context.Background()

	if _, err := mgr.Apply(ctx, failedResult("chk-1", model.StatusDegraded, "us-east", "slow")); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// degraded → down 승격
	tr, err := mgr.Apply(ctx, failedResult("chk-1", model.StatusDown, "us-east", "refused"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if tr.Event != IncidentEscalated || tr.Incident.Status != model.StatusDown {
		t.Fatalf("event = %q, status = %q, want escalated/down", tr.Event, tr.Incident.Status)
	}

	// down 이후의 degraded는 강등시키지 않는다
	tr, err = mgr.Apply(ctx, failedResult("chk-1", model.StatusDegraded, "us-east", "slow again"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if tr.Event != IncidentExtended || tr.Incident.Status != model.StatusDown {
		t.Fatalf("event = %q, status = %q, want extended/down", tr.Event, tr.Incident.Status)
	}
	if tr.Incident.LastError != "slow again" {
		t.Fatalf("last_error = %q, want latest error kept", tr.Incident.LastError)
	}
}
