// maintenance_windows 테이블 조회
// 점검 시간대의 쓰기 주체는 외부 설정 CRUD 모듈이다.

package db

import (
	"context"

	"github.com/pulsewatch/backend/internal/model"
)

// EnsureMaintenanceSchema - maintenance_windows 테이블 생성
func (db *Postgres) EnsureMaintenanceSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS maintenance_windows (
			window_id TEXT PRIMARY KEY,
			check_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			start_at TIMESTAMPTZ NOT NULL,
			end_at TIMESTAMPTZ NOT NULL,
			reason TEXT NOT NULL DEFAULT ''
		)
		`,
		`CREATE INDEX IF NOT EXISTS maintenance_windows_check_idx ON maintenance_windows(check_id)`,
	}
	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// ListMaintenanceWindows - 체크의 점검 시간대 전체 조회
func (db *Postgres) ListMaintenanceWindows(ctx context.Context, checkID string) ([]model.MaintenanceWindow, error) {
	query := `
		SELECT window_id, check_id, name, start_at, end_at, reason
		FROM maintenance_windows
		WHERE check_id = $1
		ORDER BY start_at`

	rows, err := db.Pool.Query(ctx, query, checkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := []model.MaintenanceWindow{}
	for rows.Next() {
		var w model.MaintenanceWindow
		if err := rows.Scan(&w.ID, &w.CheckID, &w.Name, &w.StartAt, &w.EndAt, &w.Reason); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
