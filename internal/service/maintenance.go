package service

import (
	"context"
	"time"

	"github.com/pulsewatch/backend/internal/model"
)

// maintenanceWindowReader - 점검 시간대 조회용 DB 인터페이스
type maintenanceWindowReader interface {
	ListMaintenanceWindows(ctx context.Context, checkID string) ([]model.MaintenanceWindow, error)
}

// MaintenanceService - 체크가 현재 점검 중인지 판정한다.
// 점검 중이면 실행 파이프라인은 실패 카운트와 인시던트 전이를 건너뛰되
// 결과 이력 저장은 계속한다.
type MaintenanceService struct {
	repo maintenanceWindowReader
}

func NewMaintenanceService(repo maintenanceWindowReader) *MaintenanceService {
	return &MaintenanceService{repo: repo}
}

// ActiveWindow - now를 [start, end]에 포함하는 첫 번째 시간대를 반환.
// 없으면 (nil, nil).
func (s *MaintenanceService) ActiveWindow(ctx context.Context, checkID string, now time.Time) (*model.MaintenanceWindow, error) {
	windows, err := s.repo.ListMaintenanceWindows(ctx, checkID)
	if err != nil {
		return nil, err
	}
	for i := range windows {
		w := windows[i]
		if !now.Before(w.StartAt) && !now.After(w.EndAt) {
			return &w, nil
		}
	}
	return nil, nil
}
