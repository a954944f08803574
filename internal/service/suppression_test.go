package service

import (
	"context"
	"testing"

	"github.com/pulsewatch/backend/internal/model"
)

type fakeCounterStore struct {
	counts map[string]int
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: make(map[string]int)}
}

func (f *fakeCounterStore) GetFailureCounter(ctx context.Context, checkID string) (int, error) {
	return f.counts[checkID], nil
}

func (f *fakeCounterStore) SetFailureCounter(ctx context.Context, checkID string, count int) error {
	f.counts[checkID] = count
	return nil
}

func TestSuppressionHidesUntilThreshold(t *testing.T) {
	store := newFakeCounterStore()
	tracker := NewSuppressionTracker(store)
	check := model.Check{ID: "chk-1", ConsecutiveFailuresThreshold: 3}
	ctx := context.Background()

	// threshold-1회까지는 up으로 덮인다
	for i := 1; i <= 2; i++ {
		status, errText, err := tracker.Apply(ctx, check, model.StatusDown, "connection refused")
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if status != model.StatusUp || errText != "" {
			t.Fatalf("failure %d: status = %q, error = %q, want hidden", i, status, errText)
		}
	}

	// 3번째 연속 실패에서 표면화
	status, errText, err := tracker.Apply(ctx, check, model.StatusDown, "connection refused")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if status != model.StatusDown || errText != "connection refused" {
		t.Fatalf("status = %q, error = %q, want surfaced failure", status, errText)
	}
}

func TestSuppressionResetsOnRecovery(t *testing.T) {
	store := newFakeCounterStore()
	tracker := NewSuppressionTracker(store)
	check := model.Check{ID: "chk-1", ConsecutiveFailuresThreshold: 3}
	ctx := context.Background()

	if _, _, err := tracker.Apply(ctx, check, model.StatusDown, "timeout"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, _, err := tracker.Apply(ctx, check, model.StatusDown, "timeout"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// up 한 번이면 카운터 리셋
	status, _, err := tracker.Apply(ctx, check, model.StatusUp, "")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if status != model.StatusUp {
		t.Fatalf("status = %q, want up", status)
	}
	if store.counts["chk-1"] != 0 {
		t.Fatalf("counter = %d, want 0 after recovery", store.counts["chk-1"])
	}

	// 리셋 이후 실패는 다시 1부터 센다
	status, _, err = tracker.Apply(ctx, check, model.StatusDown, "timeout")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if status != model.StatusUp {
		t.Fatalf("status = %q, want hidden after reset", status)
	}
}

func TestSuppressionThresholdOneSurfacesImmediately(t *testing.T) {
	store := newFakeCounterStore()
	tracker := NewSuppressionTracker(store)
	ctx := context.Background()

	// threshold 0은 1로 취급: 첫 실패가 바로 표면화
	check := model.Check{ID: "chk-1", ConsecutiveFailuresThreshold: 0}
	status, errText, err := tracker.Apply(ctx, check, model.StatusDegraded, "slow response")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if status != model.StatusDegraded || errText != "slow response" {
		t.Fatalf("status = %q, error = %q, want immediate surface", status, errText)
	}
}
