// 체크 실행 파이프라인
//
// 처리 흐름:
//  1. prober 호출로 관측값 획득 (외부 협력자)
//  2. 선언된 assertion 채점
//  3. 통합 상태 계산 (전송 실패/assertion 실패/SSL 만료 임박)
//  4. 점검 시간대면 결과만 저장하고 단락
//  5. flap suppression으로 표면화 여부 결정
//  6. 인시던트 상태 머신 반영
//  7. 표면화된 실패는 correlation → rate limit → runbook 순으로 판정 후
//     dispatcher로 전달
//
// 저장 실패는 로그만 남기고 판정은 계속 진행한다. 표면화 결정이
// 스토리지 장애에 막히면 안 된다.

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pulsewatch/backend/internal/client"
	"github.com/pulsewatch/backend/internal/model"
)

// prober - 외부 프로브 실행 서비스 인터페이스
type prober interface {
	Probe(ctx context.Context, check model.Check, location string) (*client.ProbeResponse, error)
}

// resultStore - 결과 이력 저장용 DB 인터페이스
type resultStore interface {
	SaveResult(ctx context.Context, r model.CheckResult) error
}

// Dispatcher - 판정이 끝난 알림을 외부 notification 모듈로 내보낸다.
// 전송 자체(이메일/Slack/웹훅 채널)는 이 엔진 밖의 일이다.
type Dispatcher interface {
	DispatchAlert(ctx context.Context, decision model.AlertDecision)
	DispatchRecovery(ctx context.Context, check model.Check, incident model.Incident)
	DispatchSummary(ctx context.Context, orgID string, summaries []model.SuppressedAlertSummary)
}

// Pipeline - 체크 1회 실행을 끝까지 처리하는 오케스트레이터
type Pipeline struct {
	prober      prober
	results     resultStore
	maintenance *MaintenanceService
	suppression *SuppressionTracker
	incidents   *IncidentManager
	correlation *CorrelationEngine
	limiter     *RateLimiter
	runbooks    *RunbookMatcher
	dispatcher  Dispatcher
	now         func() time.Time
}

func NewPipeline(
	p prober,
	results resultStore,
	maintenance *MaintenanceService,
	suppression *SuppressionTracker,
	incidents *IncidentManager,
	correlation *CorrelationEngine,
	limiter *RateLimiter,
	runbooks *RunbookMatcher,
	dispatcher Dispatcher,
) *Pipeline {
	return &Pipeline{
		prober:      p,
		results:     results,
		maintenance: maintenance,
		suppression: suppression,
		incidents:   incidents,
		correlation: correlation,
		limiter:     limiter,
		runbooks:    runbooks,
		dispatcher:  dispatcher,
		now:         time.Now,
	}
}

// RunCheck - 설정된 모든 리전을 순차 실행한다.
// 일부러 동시 실행하지 않는다: 뒤 리전이 앞 리전이 남긴 인시던트
// 상태를 보고 판단할 수 있어야 한다.
func (p *Pipeline) RunCheck(ctx context.Context, check model.Check) {
	locations := check.Locations
	if len(locations) == 0 {
		locations = []string{""}
	}

	for _, location := range locations {
		obs, err := p.prober.Probe(ctx, check, location)
		if err != nil {
			log.Printf("[Pipeline] Probe failed (check_id=%s, location=%s): %v", check.ID, location, err)
			obs = &client.ProbeResponse{Error: err.Error()}
		}
		if _, _, err := p.ProcessObservation(ctx, check, location, obs); err != nil {
			log.Printf("[Pipeline] Failed to process observation (check_id=%s, location=%s): %v", check.ID, location, err)
		}
	}
}

// ProcessObservation - 관측값 하나를 판정/기록한다.
// 스케줄러 실행과 외부 prober의 직접 푸시(ingest API)가 함께 쓴다.
func (p *Pipeline) ProcessObservation(ctx context.Context, check model.Check, location string, obs *client.ProbeResponse) (model.CheckResult, IncidentTransition, error) {
	now := p.now().UTC()

	assertionResults, passed, failed := EvaluateAssertions(check.Assertions, Observation{
		ResponseTimeMS: obs.ResponseTimeMS,
		StatusCode:     obs.StatusCode,
		Body:           obs.Body,
		Headers:        obs.Headers,
	})
	status, errText := combineStatus(check, obs, assertionResults)

	result := model.CheckResult{
		ID:               uuid.NewString(),
		CheckID:          check.ID,
		Location:         location,
		Status:           status,
		ResponseTimeMS:   obs.ResponseTimeMS,
		StatusCode:       obs.StatusCode,
		Error:            errText,
		Assertions:       assertionResults,
		AssertionsPassed: passed,
		AssertionsFailed: failed,
		Certificate:      obs.Certificate,
		CheckedAt:        now,
	}

	// 점검 시간대: 카운트/인시던트 없이 원시 결과만 이력에 남긴다
	window, err := p.maintenance.ActiveWindow(ctx, check.ID, now)
	if err != nil {
		log.Printf("[Pipeline] Failed to load maintenance windows (check_id=%s): %v", check.ID, err)
	}
	if window != nil {
		if err := p.results.SaveResult(ctx, result); err != nil {
			log.Printf("[Pipeline] Failed to save result (check_id=%s): %v", check.ID, err)
		}
		return result, IncidentTransition{}, nil
	}

	visibleStatus, visibleError, err := p.suppression.Apply(ctx, check, result.Status, result.Error)
	if err != nil {
		// 카운터 저장소 장애 시에는 억제 없이 그대로 표면화한다
		log.Printf("[Pipeline] Suppression tracker failed (check_id=%s): %v", check.ID, err)
		visibleStatus, visibleError = result.Status, result.Error
	}
	result.Status = visibleStatus
	result.Error = visibleError

	if err := p.results.SaveResult(ctx, result); err != nil {
		log.Printf("[Pipeline] Failed to save result (check_id=%s): %v", check.ID, err)
	}

	transition, err := p.incidents.Apply(ctx, result)
	if err != nil {
		log.Printf("[Pipeline] Incident update failed (check_id=%s): %v", check.ID, err)
		transition = IncidentTransition{}
	}

	if result.Status != model.StatusUp {
		p.raiseAlert(ctx, check, result, transition)
	} else if transition.Event == IncidentResolved && transition.Incident != nil {
		p.dispatcher.DispatchRecovery(ctx, check, *transition.Incident)
	}

	return result, transition, nil
}

// raiseAlert - 표면화된 실패 1건에 대해 correlation/rate-limit/runbook을
// 판정하고 dispatcher로 전달한다
func (p *Pipeline) raiseAlert(ctx context.Context, check model.Check, result model.CheckResult, transition IncidentTransition) {
	severity := "warning"
	if result.Status == model.StatusDown {
		severity = "critical"
	}

	alert := model.Alert{
		ID:        uuid.NewString(),
		OrgID:     check.OrgID,
		CheckID:   check.ID,
		CheckName: check.Name,
		CheckType: check.Type,
		Location:  result.Location,
		Status:    result.Status,
		Severity:  severity,
		Error:     result.Error,
		Timestamp: result.CheckedAt,
	}

	correlation, err := p.correlation.Correlate(ctx, check.OrgID, model.CorrelatedAlert{
		ID:        alert.ID,
		CheckID:   alert.CheckID,
		Location:  alert.Location,
		Error:     alert.Error,
		Timestamp: alert.Timestamp,
	})
	if err != nil {
		log.Printf("[Pipeline] Correlation failed (org_id=%s): %v", check.OrgID, err)
		correlation = model.CorrelationDecision{}
	}

	limit, err := p.limiter.Allow(ctx, check.OrgID, model.SuppressedAlertSummary{
		AlertID:   alert.ID,
		CheckName: alert.CheckName,
		Severity:  alert.Severity,
		Timestamp: alert.Timestamp,
	})
	if err != nil {
		// limiter 장애는 알림 차단 사유가 아니다 (fail-open)
		log.Printf("[Pipeline] Rate limiter failed (org_id=%s): %v", check.OrgID, err)
		limit = model.RateLimitDecision{Allowed: true}
	}

	runbook, err := p.runbooks.Match(ctx, check.OrgID, check.Type, severity)
	if err != nil {
		log.Printf("[Pipeline] Runbook match failed (org_id=%s): %v", check.OrgID, err)
		runbook = nil
	}

	decision := model.AlertDecision{
		Alert:       alert,
		Correlation: correlation,
		RateLimit:   limit,
		Runbook:     runbook,
	}
	if transition.Incident != nil {
		decision.IncidentID = transition.Incident.ID
	}

	if limit.Allowed {
		p.dispatcher.DispatchAlert(ctx, decision)
	}
	if limit.SummaryNeeded {
		p.dispatcher.DispatchSummary(ctx, check.OrgID, limit.Summaries)
	}
}

// combineStatus - 관측값과 assertion 결과에서 통합 상태를 계산한다.
//   - 전송 실패(응답 없음): down
//   - statusCode assertion 실패: down
//   - 그 외 assertion 실패: degraded
//   - 인증서가 경고 기한 안에 만료: degraded
func combineStatus(check model.Check, obs *client.ProbeResponse, assertions []model.AssertionResult) (status, errText string) {
	if obs.Error != "" {
		return model.StatusDown, obs.Error
	}

	for _, a := range assertions {
		if a.Passed {
			continue
		}
		msg := "assertion failed: " + a.Type + " " + a.Operator + " " + a.Expected + " (actual: " + a.Actual + ")"
		if a.Type == AssertStatusCode {
			return model.StatusDown, msg
		}
		if status == "" {
			status, errText = model.StatusDegraded, msg
		}
	}
	if status != "" {
		return status, errText
	}

	if check.SSLExpiryWarningDays > 0 && obs.Certificate != nil &&
		obs.Certificate.DaysUntilExpiry <= check.SSLExpiryWarningDays {
		return model.StatusDegraded, fmt.Sprintf("TLS certificate expires in %d days", obs.Certificate.DaysUntilExpiry)
	}

	return model.StatusUp, ""
}
