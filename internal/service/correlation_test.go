package service

import (
	"context"
	"testing"
	"time"

	"github.com/pulsewatch/backend/internal/model"
)

// fakeCorrelationStore - 조직별 correlation 목록 인메모리 저장소
type fakeCorrelationStore struct {
	config       *model.AlertCorrelationConfig
	correlations []model.AlertCorrelation
}

func (f *fakeCorrelationStore) GetCorrelationConfig(ctx context.Context, orgID string) (*model.AlertCorrelationConfig, error) {
	return f.config, nil
}

func (f *fakeCorrelationStore) ListActiveCorrelations(ctx context.Context, orgID string) ([]model.AlertCorrelation, error) {
	active := make([]model.AlertCorrelation, 0, len(f.correlations))
	for _, c := range f.correlations {
		if c.Status == model.CorrelationActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (f *fakeCorrelationStore) CreateCorrelation(ctx context.Context, c model.AlertCorrelation) error {
	f.correlations = append(f.correlations, c)
	return nil
}

func (f *fakeCorrelationStore) UpdateCorrelation(ctx context.Context, c model.AlertCorrelation) error {
	for i := range f.correlations {
		if f.correlations[i].ID == c.ID {
			f.correlations[i] = c
			return nil
		}
	}
	return nil
}

func defaultCorrelationConfig() *model.AlertCorrelationConfig {
	return &model.AlertCorrelationConfig{
		OrgID:                   "org-1",
		Enabled:                 true,
		TimeWindowSeconds:       300,
		CorrelateBySameCheck:    true,
		CorrelateBySameLocation: true,
		CorrelateBySimilarError: true,
		SimilarityThreshold:     60,
	}
}

func TestCorrelateDisabledConfig(t *testing.T) {
	engine := NewCorrelationEngine(&fakeCorrelationStore{config: nil})
	decision, err := engine.Correlate(context.Background(), "org-1", model.CorrelatedAlert{ID: "a-1", CheckID: "chk-1"})
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if decision.Correlated || decision.CorrelationID != "" {
		t.Fatalf("decision = %+v, want no correlation when config missing", decision)
	}
}

func TestCorrelateSeedsThenJoins(t *testing.T) {
	store := &fakeCorrelationStore{config: defaultCorrelationConfig()}
	engine := NewCorrelationEngine(store)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	engine.now = func() time.Time { return current }
	ctx := context.Background()

	// 첫 알림: 매칭 대상이 없으므로 time_proximity로 시드
	decision, err := engine.Correlate(ctx, "org-1", model.CorrelatedAlert{ID: "a-1", CheckID: "chk-1", Location: "us-east", Error: "connection timeout error"})
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if decision.Correlated {
		t.Fatalf("first alert correlated = true, want seed")
	}
	if decision.Reason != model.ReasonTimeProximity || decision.MemberCount != 1 {
		t.Fatalf("seed decision = %+v", decision)
	}

	// 같은 체크의 두 번째 알림: 합류하고 시드 라벨이 same_check로 대체됨
	current = base.Add(30 * time.Second)
	decision, err = engine.Correlate(ctx, "org-1", model.CorrelatedAlert{ID: "a-2", CheckID: "chk-1", Location: "eu-west", Error: "dns lookup failed"})
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if !decision.Correlated || decision.MemberCount != 2 {
		t.Fatalf("join decision = %+v", decision)
	}
	if decision.Reason != model.ReasonSameCheck {
		t.Fatalf("reason = %q, want same_check", decision.Reason)
	}

	// 세 번째 알림은 에러 유사도로만 매칭: 사유가 multiple로 접힌다
	current = base.Add(60 * time.Second)
	decision, err = engine.Correlate(ctx, "org-1", model.CorrelatedAlert{ID: "a-3", CheckID: "chk-2", Location: "ap-south", Error: "connection timeout issue"})
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if !decision.Correlated || decision.MemberCount != 3 {
		t.Fatalf("join decision = %+v", decision)
	}
	if decision.Reason != model.ReasonMultiple {
		t.Fatalf("reason = %q, want multiple", decision.Reason)
	}
	if store.correlations[0].Detail != "correlated by same_check, similar_error" {
		t.Fatalf("detail = %q", store.correlations[0].Detail)
	}
}

func TestCorrelateTimeWindowExpiry(t *testing.T) {
	store := &fakeCorrelationStore{config: defaultCorrelationConfig()}
	engine := NewCorrelationEngine(store)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	engine.now = func() time.Time { return current }
	ctx := context.Background()

	if _, err := engine.Correlate(ctx, "org-1", model.CorrelatedAlert{ID: "a-1", CheckID: "chk-1"}); err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}

	// 시간 창(300s)을 넘긴 같은 체크의 알림은 합류하지 못하고 새로 시드
	current = base.Add(301 * time.Second)
	decision, err := engine.Correlate(ctx, "org-1", model.CorrelatedAlert{ID: "a-2", CheckID: "chk-1"})
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if decision.Correlated {
		t.Fatalf("alert joined expired correlation: %+v", decision)
	}
	if len(store.correlations) != 2 {
		t.Fatalf("correlations = %d, want 2", len(store.correlations))
	}
}

func TestCorrelateSimilarityThreshold(t *testing.T) {
	cfg := defaultCorrelationConfig()
	cfg.CorrelateBySameCheck = false
	cfg.CorrelateBySameLocation = false
	cfg.SimilarityThreshold = 70
	store := &fakeCorrelationStore{config: cfg}
	engine := NewCorrelationEngine(store)
	ctx := context.Background()

	if _, err := engine.Correlate(ctx, "org-1", model.CorrelatedAlert{ID: "a-1", CheckID: "chk-1", Error: "connection timeout error"}); err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}

	// 유사도 67 < 기준 70: 합류 실패
	decision, err := engine.Correlate(ctx, "org-1", model.CorrelatedAlert{ID: "a-2", CheckID: "chk-2", Error: "connection timeout issue"})
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if decision.Correlated {
		t.Fatalf("alert joined below threshold: %+v", decision)
	}

	// 동일 에러면 100점으로 합류 (두 번째 시드에 first-fit)
	decision, err = engine.Correlate(ctx, "org-1", model.CorrelatedAlert{ID: "a-3", CheckID: "chk-3", Error: "connection timeout error"})
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if !decision.Correlated || decision.Reason != model.ReasonSimilarError {
		t.Fatalf("decision = %+v, want similar_error join", decision)
	}
	if decision.CorrelationID != store.correlations[0].ID {
		t.Fatalf("joined %q, want first-fit on first correlation", decision.CorrelationID)
	}
}
