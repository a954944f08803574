// Flap suppression (연속 실패 억제) 로직
//
// 처리 흐름:
//  1. non-up 결과: 체크별 카운터 증가
//  2. 증가 후에도 threshold 미만이면 보이는 상태를 up으로 덮고 에러 제거
//     - 어느 리전에서 관측했는지와 무관하게 threshold-1회까지 숨긴다
//  3. threshold 도달/초과면 실패를 그대로 표면화
//  4. up 결과: 카운터 무조건 0으로 리셋
//
// threshold 기본값 1 = 억제 없음. 억제는 설정으로만 켜진다.

package service

import (
	"context"

	"github.com/pulsewatch/backend/internal/model"
)

// failureCounterStore - 카운터 저장용 DB 인터페이스
type failureCounterStore interface {
	GetFailureCounter(ctx context.Context, checkID string) (int, error)
	SetFailureCounter(ctx context.Context, checkID string, count int) error
}

// SuppressionTracker - 일시적 blip 한 번으로 인시던트가 열리지 않도록
// 체크별 연속 실패 횟수를 추적한다.
type SuppressionTracker struct {
	repo  failureCounterStore
	locks *keyedMutex
}

func NewSuppressionTracker(repo failureCounterStore) *SuppressionTracker {
	return &SuppressionTracker{repo: repo, locks: newKeyedMutex()}
}

// Apply - 원시 상태(rawStatus)를 받아 표면화할 상태와 에러를 돌려준다.
// 점검 시간대 게이트는 호출 측(파이프라인) 책임이다.
func (t *SuppressionTracker) Apply(ctx context.Context, check model.Check, rawStatus, rawError string) (visibleStatus, visibleError string, err error) {
	lock := t.locks.get(check.ID)
	lock.Lock()
	defer lock.Unlock()

	threshold := check.ConsecutiveFailuresThreshold
	if threshold < 1 {
		threshold = 1
	}

	if rawStatus == model.StatusUp {
		if err := t.repo.SetFailureCounter(ctx, check.ID, 0); err != nil {
			return "", "", err
		}
		return rawStatus, rawError, nil
	}

	count, err := t.repo.GetFailureCounter(ctx, check.ID)
	if err != nil {
		return "", "", err
	}
	count++
	if err := t.repo.SetFailureCounter(ctx, check.ID, count); err != nil {
		return "", "", err
	}

	if count < threshold {
		// 실패 숨김: 보이는 상태는 up, 에러 없음
		return model.StatusUp, "", nil
	}
	return rawStatus, rawError, nil
}
