package service

import (
	"context"
	"testing"
	"time"

	"github.com/pulsewatch/backend/internal/client"
	"github.com/pulsewatch/backend/internal/model"
)

// fakeResultStore - 저장된 결과를 순서대로 쌓아두는 저장소
type fakeResultStore struct {
	saved []model.CheckResult
}

func (f *fakeResultStore) SaveResult(ctx context.Context, r model.CheckResult) error {
	f.saved = append(f.saved, r)
	return nil
}

// fakeDispatcher - dispatcher 호출 기록
type fakeDispatcher struct {
	alerts     []model.AlertDecision
	recoveries []model.Incident
	summaries  [][]model.SuppressedAlertSummary
}

func (f *fakeDispatcher) DispatchAlert(ctx context.Context, decision model.AlertDecision) {
	f.alerts = append(f.alerts, decision)
}

func (f *fakeDispatcher) DispatchRecovery(ctx context.Context, check model.Check, incident model.Incident) {
	f.recoveries = append(f.recoveries, incident)
}

func (f *fakeDispatcher) DispatchSummary(ctx context.Context, orgID string, summaries []model.SuppressedAlertSummary) {
	f.summaries = append(f.summaries, summaries)
}

type pipelineFixture struct {
	pipeline   *Pipeline
	results    *fakeResultStore
	dispatcher *fakeDispatcher
	windows    *fakeWindowReader
	counters   *fakeCounterStore
	incidents  *fakeIncidentStore
}

func newPipelineFixture() *pipelineFixture {
	results := &fakeResultStore{}
	dispatcher := &fakeDispatcher{}
	windows := &fakeWindowReader{}
	counters := newFakeCounterStore()
	incidents := newFakeIncidentStore()

	pipeline := NewPipeline(
		nil, // prober는 ProcessObservation 경로에서 쓰이지 않는다
		results,
		NewMaintenanceService(windows),
		NewSuppressionTracker(counters),
		NewIncidentManager(incidents),
		NewCorrelationEngine(&fakeCorrelationStore{config: nil}),
		NewRateLimiter(&fakeRateLimitConfigReader{config: nil}),
		NewRunbookMatcher(&fakeRunbookReader{}),
		dispatcher,
	)
	return &pipelineFixture{
		pipeline:   pipeline,
		results:    results,
		dispatcher: dispatcher,
		windows:    windows,
		counters:   counters,
		incidents:  incidents,
	}
}

func httpCheck() model.Check {
	return model.Check{
		ID:    "chk-1",
		OrgID: "org-1",
		Name:  "api",
		Type:  "http",
		Assertions: []model.Assertion{
			{Type: AssertStatusCode, Operator: OpEquals, Value: "200"},
			{Type: AssertResponseTime, Operator: OpLessThan, Value: "500"},
		},
		ConsecutiveFailuresThreshold: 1,
		Enabled:                      true,
	}
}

func TestProcessObservationHealthy(t *testing.T) {
	fx := newPipelineFixture()
	obs := &client.ProbeResponse{ResponseTimeMS: 120, StatusCode: 200}

	result, transition, err := fx.pipeline.ProcessObservation(context.Background(), httpCheck(), "us-east", obs)
	if err != nil {
		t.Fatalf("ProcessObservation() error = %v", err)
	}
	if result.Status != model.StatusUp || result.Error != "" {
		t.Fatalf("result = %+v, want up", result)
	}
	if result.AssertionsPassed != 2 || result.AssertionsFailed != 0 {
		t.Fatalf("assertions passed/failed = %d/%d", result.AssertionsPassed, result.AssertionsFailed)
	}
	if transition.Event != "" {
		t.Fatalf("transition = %+v, want none", transition)
	}
	if len(fx.results.saved) != 1 {
		t.Fatalf("saved = %d results, want 1", len(fx.results.saved))
	}
	if len(fx.dispatcher.alerts) != 0 {
		t.Fatalf("alert dispatched for healthy result")
	}
}

func TestProcessObservationFailureOpensIncidentAndAlerts(t *testing.T) {
	fx := newPipelineFixture()
	obs := &client.ProbeResponse{ResponseTimeMS: 45, StatusCode: 503}

	result, transition, err := fx.pipeline.ProcessObservation(context.Background(), httpCheck(), "us-east", obs)
	if err != nil {
		t.Fatalf("ProcessObservation() error = %v", err)
	}
	// statusCode assertion 실패는 down으로 판정
	if result.Status != model.StatusDown {
		t.Fatalf("status = %q, want down", result.Status)
	}
	if transition.Event != IncidentOpened {
		t.Fatalf("event = %q, want opened", transition.Event)
	}

	if len(fx.dispatcher.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(fx.dispatcher.alerts))
	}
	decision := fx.dispatcher.alerts[0]
	if decision.Alert.Severity != "critical" {
		t.Fatalf("severity = %q, want critical", decision.Alert.Severity)
	}
	if decision.IncidentID != transition.Incident.ID {
		t.Fatalf("decision incident = %q, want %q", decision.IncidentID, transition.Incident.ID)
	}
	if !decision.RateLimit.Allowed {
		t.Fatalf("rate limit blocked with no config")
	}
}

func TestProcessObservationDegradedSeverity(t *testing.T) {
	fx := newPipelineFixture()
	// responseTime assertion만 실패: degraded / warning
	obs := &client.ProbeResponse{ResponseTimeMS: 900, StatusCode: 200}

	result, _, err := fx.pipeline.ProcessObservation(context.Background(), httpCheck(), "us-east", obs)
	if err != nil {
		t.Fatalf("ProcessObservation() error = %v", err)
	}
	if result.Status != model.StatusDegraded {
		t.Fatalf("status = %q, want degraded", result.Status)
	}
	if len(fx.dispatcher.alerts) != 1 || fx.dispatcher.alerts[0].Alert.Severity != "warning" {
		t.Fatalf("alerts = %+v, want one warning", fx.dispatcher.alerts)
	}
}

func TestProcessObservationMaintenanceGate(t *testing.T) {
	fx := newPipelineFixture()
	now := time.Now().UTC()
	fx.windows.windows = []model.MaintenanceWindow{{
		ID:      "mw-1",
		CheckID: "chk-1",
		StartAt: now.Add(-time.Hour),
		EndAt:   now.Add(time.Hour),
	}}
	obs := &client.ProbeResponse{Error: "connection refused"}

	result, transition, err := fx.pipeline.ProcessObservation(context.Background(), httpCheck(), "us-east", obs)
	if err != nil {
		t.Fatalf("ProcessObservation() error = %v", err)
	}
	// 원시 상태는 이력에 남는다
	if result.Status != model.StatusDown {
		t.Fatalf("status = %q, want raw down in history", result.Status)
	}
	if len(fx.results.saved) != 1 {
		t.Fatalf("saved = %d results, want 1", len(fx.results.saved))
	}
	// 하지만 카운트/인시던트/알림은 모두 건너뛴다
	if transition.Event != "" {
		t.Fatalf("transition = %+v during maintenance", transition)
	}
	if fx.counters.counts["chk-1"] != 0 {
		t.Fatalf("failure counter incremented during maintenance")
	}
	if len(fx.dispatcher.alerts) != 0 {
		t.Fatalf("alert dispatched during maintenance")
	}
}

func TestProcessObservationSuppressionHidesBlip(t *testing.T) {
	fx := newPipelineFixture()
	check := httpCheck()
	check.ConsecutiveFailuresThreshold = 2
	obs := &client.ProbeResponse{Error: "connection refused"}
	ctx := context.Background()

	// 1번째 실패: up으로 덮여 저장되고 인시던트/알림 없음
	result, transition, err := fx.pipeline.ProcessObservation(ctx, check, "us-east", obs)
	if err != nil {
		t.Fatalf("ProcessObservation() error = %v", err)
	}
	if result.Status != model.StatusUp || result.Error != "" {
		t.Fatalf("result = %+v, want hidden blip", result)
	}
	if transition.Event != "" || len(fx.dispatcher.alerts) != 0 {
		t.Fatalf("blip leaked: transition=%+v alerts=%d", transition, len(fx.dispatcher.alerts))
	}

	// 2번째 연속 실패: 표면화되어 인시던트가 열린다
	result, transition, err = fx.pipeline.ProcessObservation(ctx, check, "us-east", obs)
	if err != nil {
		t.Fatalf("ProcessObservation() error = %v", err)
	}
	if result.Status != model.StatusDown || result.Error != "connection refused" {
		t.Fatalf("result = %+v, want surfaced failure", result)
	}
	if transition.Event != IncidentOpened {
		t.Fatalf("event = %q, want opened", transition.Event)
	}
}

func TestProcessObservationRecoveryDispatches(t *testing.T) {
	fx := newPipelineFixture()
	check := httpCheck()
	ctx := context.Background()

	if _, _, err := fx.pipeline.ProcessObservation(ctx, check, "us-east", &client.ProbeResponse{Error: "timeout"}); err != nil {
		t.Fatalf("ProcessObservation() error = %v", err)
	}

	_, transition, err := fx.pipeline.ProcessObservation(ctx, check, "us-east", &client.ProbeResponse{ResponseTimeMS: 80, StatusCode: 200})
	if err != nil {
		t.Fatalf("ProcessObservation() error = %v", err)
	}
	if transition.Event != IncidentResolved {
		t.Fatalf("event = %q, want resolved", transition.Event)
	}
	if len(fx.dispatcher.recoveries) != 1 {
		t.Fatalf("recoveries = %d, want 1", len(fx.dispatcher.recoveries))
	}
}

type fakeProber struct {
	responses map[string]*client.ProbeResponse // location → 응답
	err       error
}

func (f *fakeProber) Probe(ctx context.Context, check model.Check, location string) (*client.ProbeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.responses[location], nil
}

func TestRunCheckIteratesLocations(t *testing.T) {
	fx := newPipelineFixture()
	fx.pipeline.prober = &fakeProber{responses: map[string]*client.ProbeResponse{
		"us-east": {ResponseTimeMS: 100, StatusCode: 200},
		"eu-west": {ResponseTimeMS: 140, StatusCode: 200},
	}}
	check := httpCheck()
	check.Locations = []string{"us-east", "eu-west"}

	fx.pipeline.RunCheck(context.Background(), check)

	if len(fx.results.saved) != 2 {
		t.Fatalf("saved = %d results, want one per location", len(fx.results.saved))
	}
	if fx.results.saved[0].Location != "us-east" || fx.results.saved[1].Location != "eu-west" {
		t.Fatalf("locations = %q, %q", fx.results.saved[0].Location, fx.results.saved[1].Location)
	}
}

func TestRunCheckProbeErrorBecomesDown(t *testing.T) {
	fx := newPipelineFixture()
	fx.pipeline.prober = &fakeProber{err: context.DeadlineExceeded}
	check := httpCheck()
	check.Assertions = nil

	// 리전 미설정 체크도 1회는 실행된다
	fx.pipeline.RunCheck(context.Background(), check)

	if len(fx.results.saved) != 1 {
		t.Fatalf("saved = %d results, want 1", len(fx.results.saved))
	}
	if fx.results.saved[0].Status != model.StatusDown {
		t.Fatalf("status = %q, want down on probe failure", fx.results.saved[0].Status)
	}
}

func TestProcessObservationCertificateWarning(t *testing.T) {
	fx := newPipelineFixture()
	check := httpCheck()
	check.SSLExpiryWarningDays = 14
	obs := &client.ProbeResponse{
		ResponseTimeMS: 80,
		StatusCode:     200,
		Certificate:    &model.CertificateSummary{DaysUntilExpiry: 10},
	}

	result, _, err := fx.pipeline.ProcessObservation(context.Background(), check, "us-east", obs)
	if err != nil {
		t.Fatalf("ProcessObservation() error = %v", err)
	}
	if result.Status != model.StatusDegraded {
		t.Fatalf("status = %q, want degraded on expiring cert", result.Status)
	}
	if result.Error != "TLS certificate expires in 10 days" {
		t.Fatalf("error = %q", result.Error)
	}
}
