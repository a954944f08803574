// 체크별 연속 실패 카운터 저장
// 결과 이력과 독립적으로 관리되며, Failure Suppression Tracker 외에는
// 아무도 읽지 않는다.

package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// EnsureCounterSchema - failure_counters 테이블 생성
func (db *Postgres) EnsureCounterSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS failure_counters (
			check_id TEXT PRIMARY KEY,
			consecutive_failures INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	_, err := db.Pool.Exec(ctx, query)
	return err
}

// GetFailureCounter - 카운터 조회. 레코드가 없으면 0.
func (db *Postgres) GetFailureCounter(ctx context.Context, checkID string) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		`SELECT consecutive_failures FROM failure_counters WHERE check_id = $1`,
		checkID,
	).Scan(&count)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SetFailureCounter - 카운터 upsert
func (db *Postgres) SetFailureCounter(ctx context.Context, checkID string, count int) error {
	query := `
		INSERT INTO failure_counters (check_id, consecutive_failures, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (check_id) DO UPDATE SET
			consecutive_failures = EXCLUDED.consecutive_failures,
			updated_at = NOW()
	`
	_, err := db.Pool.Exec(ctx, query, checkID, count)
	return err
}
