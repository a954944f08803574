// 체크 스케줄러
//
// 활성 체크마다 독립 타이머 고루틴을 하나씩 돌린다 (전역 루프 없음).
// 즉시 1회 실행 후 interval마다 반복. 실행이 interval보다 오래 걸리면
// drift가 생길 수 있는데, 같은 체크의 겹친 실행은 체크별 run 락으로
// 직렬화한다. 체크 비활성화는 다음 타이머 발화 시점에 감지되어
// 타이머를 멈춘다. 진행 중인 실행은 중단하지 않는다.

package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pulsewatch/backend/internal/model"
)

// checkReader - 체크 정의 조회용 DB 인터페이스
type checkReader interface {
	ListEnabledChecks(ctx context.Context) ([]model.Check, error)
	GetCheck(ctx context.Context, id string) (*model.Check, error)
}

// checkRunner - 체크 1회 실행 (Pipeline이 구현)
type checkRunner interface {
	RunCheck(ctx context.Context, check model.Check)
}

// Scheduler - 체크별 주기 실행 관리자
type Scheduler struct {
	repo   checkReader
	runner checkRunner

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	running *keyedMutex
	wg      sync.WaitGroup
}

func NewScheduler(repo checkReader, runner checkRunner) *Scheduler {
	return &Scheduler{
		repo:    repo,
		runner:  runner,
		cancels: make(map[string]context.CancelFunc),
		running: newKeyedMutex(),
	}
}

// Start - 활성 체크 전체에 타이머를 건다
func (s *Scheduler) Start(ctx context.Context) error {
	checks, err := s.repo.ListEnabledChecks(ctx)
	if err != nil {
		return err
	}
	for _, check := range checks {
		s.StartCheck(ctx, check)
	}
	log.Printf("[Scheduler] Started %d check timers", len(checks))
	return nil
}

// StartCheck - 체크 하나의 타이머 시작. 이미 돌고 있으면 교체한다.
// 재활성화는 기존 타이머 재개가 아니라 새 타이머 생성이며, 꺼져 있던
// 동안의 실행분을 따라잡지 않는다.
func (s *Scheduler) StartCheck(ctx context.Context, check model.Check) {
	if !check.Enabled || check.IntervalSeconds <= 0 {
		return
	}

	s.mu.Lock()
	if cancel, ok := s.cancels[check.ID]; ok {
		cancel()
	}
	checkCtx, cancel := context.WithCancel(ctx)
	s.cancels[check.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(checkCtx, check)
}

// StopCheck - 체크 하나의 타이머 취소
func (s *Scheduler) StopCheck(checkID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[checkID]; ok {
		cancel()
		delete(s.cancels, checkID)
	}
}

// Stop - 모든 타이머 취소 후 진행 중인 실행 완료 대기
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, check model.Check) {
	defer s.wg.Done()

	interval := time.Duration(check.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.fire(ctx, check.ID)

	for {
		select {
		case <-ticker.C:
			if !s.fire(ctx, check.ID) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// fire - 발화 1회. 발화 시점에 체크를 다시 읽어 비활성/삭제를 감지한다.
// false를 반환하면 루프를 멈춘다.
func (s *Scheduler) fire(ctx context.Context, checkID string) bool {
	check, err := s.repo.GetCheck(ctx, checkID)
	if err == pgx.ErrNoRows {
		log.Printf("[Scheduler] Check removed, stopping timer (check_id=%s)", checkID)
		s.StopCheck(checkID)
		return false
	}
	if err != nil {
		// 일시적 조회 실패는 다음 발화에서 재시도
		log.Printf("[Scheduler] Failed to load check (check_id=%s): %v", checkID, err)
		return true
	}
	if !check.Enabled {
		log.Printf("[Scheduler] Check disabled, stopping timer (check_id=%s)", checkID)
		s.StopCheck(checkID)
		return false
	}

	lock := s.running.get(checkID)
	lock.Lock()
	defer lock.Unlock()

	s.runSafely(ctx, *check)
	return true
}

// runSafely - 한 체크의 패닉이 다른 체크의 타이머를 죽이면 안 된다
func (s *Scheduler) runSafely(ctx context.Context, check model.Check) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler] Recovered from panic (check_id=%s): %v", check.ID, r)
		}
	}()
	s.runner.RunCheck(ctx, check)
}
