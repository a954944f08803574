// Alert rate limiter
//
// 조직별 고정 크기 창. rolling/leaky bucket이 아니라 경과 시 통째로
// 리셋하는 방식이다. 창 상태는 프로세스 메모리에만 있고 설정은 DB에 있다.

package service

import (
	"context"
	"sync"
	"time"

	"github.com/pulsewatch/backend/internal/model"
)

// rateLimitConfigReader - 설정 조회용 DB 인터페이스
type rateLimitConfigReader interface {
	GetRateLimitConfig(ctx context.Context, orgID string) (*model.AlertRateLimitConfig, error)
}

// rateLimitState - 조직 하나의 현재 창 상태
type rateLimitState struct {
	windowStart     time.Time
	allowedInWindow int
	totalSeen       int
	totalSent       int
	totalSuppressed int
	buffer          []model.SuppressedAlertSummary
}

// RateLimiter - 조직별 알림 전송량 상한
type RateLimiter struct {
	repo   rateLimitConfigReader
	mu     sync.Mutex
	states map[string]*rateLimitState
	now    func() time.Time
}

func NewRateLimiter(repo rateLimitConfigReader) *RateLimiter {
	return &RateLimiter{
		repo:   repo,
		states: make(map[string]*rateLimitState),
		now:    time.Now,
	}
}

// Allow - 알림 1건의 통과 여부 판정.
// summary는 aggregate 모드에서 억제 시 버퍼에 쌓이는 요약이다.
func (l *RateLimiter) Allow(ctx context.Context, orgID string, summary model.SuppressedAlertSummary) (model.RateLimitDecision, error) {
	cfg, err := l.repo.GetRateLimitConfig(ctx, orgID)
	if err != nil {
		return model.RateLimitDecision{}, err
	}
	if cfg == nil || !cfg.Enabled {
		return model.RateLimitDecision{Allowed: true}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	window := time.Duration(cfg.TimeWindowSeconds) * time.Second

	state := l.states[orgID]
	if state == nil || now.Sub(state.windowStart) > window {
		state = &rateLimitState{windowStart: now}
		l.states[orgID] = state
	}

	state.totalSeen++

	if state.allowedInWindow < cfg.MaxAlerts {
		state.allowedInWindow++
		state.totalSent++
		return model.RateLimitDecision{
			Allowed:         true,
			SuppressedCount: state.totalSuppressed,
		}, nil
	}

	state.totalSuppressed++

	if cfg.SuppressionMode == model.SuppressionAggregate {
		state.buffer = append(state.buffer, summary)
		if cfg.AggregateThreshold > 0 && len(state.buffer) >= cfg.AggregateThreshold {
			flushed := state.buffer
			state.buffer = nil
			return model.RateLimitDecision{
				Allowed:         false,
				SuppressedCount: state.totalSuppressed,
				SummaryNeeded:   true,
				Summaries:       flushed,
			}, nil
		}
		return model.RateLimitDecision{
			Allowed:         false,
			SuppressedCount: state.totalSuppressed,
		}, nil
	}

	// drop 모드: 버퍼링 없이 그대로 버린다
	return model.RateLimitDecision{
		Allowed:         false,
		SuppressedCount: state.totalSuppressed,
	}, nil
}
