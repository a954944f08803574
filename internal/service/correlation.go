// Alert correlation 엔진
//
// 처리 흐름:
//  1. 조직 설정이 없거나 비활성이면 "not correlated"
//  2. active correlation들을 스캔 (resolved 제외, 시간 창 초과분 제외)
//  3. 기존 멤버와 비교해 same_check / same_location / similar_error
//     사유를 누적
//  4. 처음 매칭된 correlation에 합류 (first-fit, best-fit 아님)
//  5. 매칭 없으면 time_proximity 사유로 새 correlation 시드
//
// 조직별 correlation 목록은 per-org 락으로 직렬화한다.

package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pulsewatch/backend/internal/model"
)

// correlationStore - correlation 저장용 DB 인터페이스
type correlationStore interface {
	GetCorrelationConfig(ctx context.Context, orgID string) (*model.AlertCorrelationConfig, error)
	ListActiveCorrelations(ctx context.Context, orgID string) ([]model.AlertCorrelation, error)
	CreateCorrelation(ctx context.Context, c model.AlertCorrelation) error
	UpdateCorrelation(ctx context.Context, c model.AlertCorrelation) error
}

// CorrelationEngine - 관련 알림을 하나의 correlation으로 묶는다
type CorrelationEngine struct {
	repo  correlationStore
	locks *keyedMutex
	now   func() time.Time
}

func NewCorrelationEngine(repo correlationStore) *CorrelationEngine {
	return &CorrelationEngine{repo: repo, locks: newKeyedMutex(), now: time.Now}
}

// Correlate - 알림 하나를 기존 correlation에 합류시키거나 새로 시드한다
func (e *CorrelationEngine) Correlate(ctx context.Context, orgID string, alert model.CorrelatedAlert) (model.CorrelationDecision, error) {
	cfg, err := e.repo.GetCorrelationConfig(ctx, orgID)
	if err != nil {
		return model.CorrelationDecision{}, err
	}
	if cfg == nil || !cfg.Enabled {
		return model.CorrelationDecision{Correlated: false}, nil
	}

	lock := e.locks.get(orgID)
	lock.Lock()
	defer lock.Unlock()

	now := e.now().UTC()

	candidates, err := e.repo.ListActiveCorrelations(ctx, orgID)
	if err != nil {
		return model.CorrelationDecision{}, err
	}

	window := time.Duration(cfg.TimeWindowSeconds) * time.Second
	for i := range candidates {
		c := candidates[i]
		if window > 0 && now.Sub(c.CreatedAt) > window {
			continue
		}

		matched := matchReasons(cfg, c.Alerts, alert)
		if len(matched) == 0 {
			continue
		}

		// first-fit: 처음 매칭된 correlation에서 멈춘다
		c.Alerts = append(c.Alerts, alert)
		c.Reason, c.Detail = mergeReason(c.Reason, c.Detail, matched)
		c.UpdatedAt = now
		if err := e.repo.UpdateCorrelation(ctx, c); err != nil {
			return model.CorrelationDecision{}, err
		}
		return model.CorrelationDecision{
			Correlated:    true,
			CorrelationID: c.ID,
			Reason:        c.Reason,
			MemberCount:   len(c.Alerts),
		}, nil
	}

	// 매칭 실패: 이 알림을 시드로 새 correlation 생성
	seeded := model.AlertCorrelation{
		ID:             uuid.NewString(),
		OrgID:          orgID,
		Alerts:         []model.CorrelatedAlert{alert},
		PrimaryAlertID: alert.ID,
		Reason:         model.ReasonTimeProximity,
		Status:         model.CorrelationActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.repo.CreateCorrelation(ctx, seeded); err != nil {
		return model.CorrelationDecision{}, err
	}
	return model.CorrelationDecision{
		Correlated:    false,
		CorrelationID: seeded.ID,
		Reason:        model.ReasonTimeProximity,
		MemberCount:   1,
	}, nil
}

// matchReasons - correlation의 기존 멤버 전체와 비교해 성립한 사유 집합
func matchReasons(cfg *model.AlertCorrelationConfig, members []model.CorrelatedAlert, alert model.CorrelatedAlert) map[string]struct{} {
	matched := make(map[string]struct{})
	for _, member := range members {
		if cfg.CorrelateBySameCheck && member.CheckID == alert.CheckID {
			matched[model.ReasonSameCheck] = struct{}{}
		}
		if cfg.CorrelateBySameLocation && member.Location != "" && alert.Location != "" && member.Location == alert.Location {
			matched[model.ReasonSameLocation] = struct{}{}
		}
		if cfg.CorrelateBySimilarError && member.Error != "" && alert.Error != "" &&
			ErrorSimilarity(member.Error, alert.Error) >= cfg.SimilarityThreshold {
			matched[model.ReasonSimilarError] = struct{}{}
		}
	}
	return matched
}

// mergeReason - 합류 후 correlation_reason 재계산.
// 단일 사유면 그 라벨 유지, 사유가 여러 개로 갈리면 multiple로 접는다.
// time_proximity 시드 라벨은 첫 실제 매칭 사유로 대체된다.
func mergeReason(prior, priorDetail string, matched map[string]struct{}) (reason, detail string) {
	union := make(map[string]struct{}, len(matched)+1)
	for r := range matched {
		union[r] = struct{}{}
	}
	if prior != model.ReasonTimeProximity && prior != model.ReasonMultiple {
		union[prior] = struct{}{}
	}

	reasons := make([]string, 0, len(union))
	for r := range union {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	if prior != model.ReasonMultiple && len(reasons) == 1 {
		return reasons[0], ""
	}

	// 기존 detail에 이미 있던 사유도 함께 나열
	if priorDetail != "" {
		for _, r := range parseDetail(priorDetail) {
			if _, ok := union[r]; !ok {
				reasons = append(reasons, r)
			}
		}
		sort.Strings(reasons)
	}
	return model.ReasonMultiple, "correlated by " + strings.Join(reasons, ", ")
}

func parseDetail(detail string) []string {
	detail = strings.TrimPrefix(detail, "correlated by ")
	parts := strings.Split(detail, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
