package service

import (
	"context"

	"github.com/pulsewatch/backend/internal/model"
)

// runbookReader - runbook 조회용 DB 인터페이스
type runbookReader interface {
	ListRunbooks(ctx context.Context, orgID string) ([]model.AlertRunbook, error)
}

// RunbookMatcher - 알림에 가장 잘 맞는 runbook을 고른다.
// 점수: check-type 정확 일치 2점 / "all" 1점 / 불일치 탈락,
// severity 정확 일치 2점 / "all"(빈 값 포함) 1점 / 불일치 탈락.
// 동점이면 먼저 본 runbook이 이긴다 (strictly-greater 비교).
type RunbookMatcher struct {
	repo runbookReader
}

func NewRunbookMatcher(repo runbookReader) *RunbookMatcher {
	return &RunbookMatcher{repo: repo}
}

// Match - 최고 점수 runbook 반환. 매칭 없으면 (nil, nil).
func (m *RunbookMatcher) Match(ctx context.Context, orgID, checkType, severity string) (*model.AlertRunbook, error) {
	runbooks, err := m.repo.ListRunbooks(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var best *model.AlertRunbook
	bestScore := 0

	for i := range runbooks {
		rb := runbooks[i]
		score := 0

		switch rb.CheckType {
		case checkType:
			score += 2
		case "all":
			score++
		default:
			continue
		}

		switch rb.Severity {
		case severity:
			score += 2
		case "all", "":
			score++
		default:
			continue
		}

		if score > bestScore {
			bestScore = score
			best = &runbooks[i]
		}
	}
	return best, nil
}
