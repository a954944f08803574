// checks 테이블 조회
// 체크 정의의 쓰기 주체는 외부 설정 CRUD 모듈이며, 엔진은 읽기만 한다.

package db

import (
	"context"
	"encoding/json"

	"github.com/pulsewatch/backend/internal/model"
)

// EnsureCheckSchema - checks 테이블 생성
func (db *Postgres) EnsureCheckSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS checks (
			check_id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			name TEXT NOT NULL,
			check_type TEXT NOT NULL DEFAULT 'http',
			target TEXT NOT NULL DEFAULT '',
			locations JSONB NOT NULL DEFAULT '[]',
			assertions JSONB NOT NULL DEFAULT '[]',
			interval_seconds INT NOT NULL DEFAULT 60,
			consecutive_failures_threshold INT NOT NULL DEFAULT 1,
			ssl_expiry_warning_days INT NOT NULL DEFAULT 0,
			is_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	_, err := db.Pool.Exec(ctx, query)
	return err
}

// GetCheck - 체크 단건 조회
func (db *Postgres) GetCheck(ctx context.Context, id string) (*model.Check, error) {
	query := `
		SELECT check_id, org_id, name, check_type, target, locations, assertions,
		       interval_seconds, consecutive_failures_threshold,
		       ssl_expiry_warning_days, is_enabled
		FROM checks
		WHERE check_id = $1`

	var (
		c          model.Check
		locations  []byte
		assertions []byte
	)
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.OrgID, &c.Name, &c.Type, &c.Target, &locations, &assertions,
		&c.IntervalSeconds, &c.ConsecutiveFailuresThreshold,
		&c.SSLExpiryWarningDays, &c.Enabled,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(locations, &c.Locations); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(assertions, &c.Assertions); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListEnabledChecks - 스케줄러가 타이머를 걸어야 하는 체크 전체 조회
func (db *Postgres) ListEnabledChecks(ctx context.Context) ([]model.Check, error) {
	query := `
		SELECT check_id, org_id, name, check_type, target, locations, assertions,
		       interval_seconds, consecutive_failures_threshold,
		       ssl_expiry_warning_days, is_enabled
		FROM checks
		WHERE is_enabled = TRUE
		ORDER BY created_at`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []model.Check
	for rows.Next() {
		var (
			c          model.Check
			locations  []byte
			assertions []byte
		)
		if err := rows.Scan(
			&c.ID, &c.OrgID, &c.Name, &c.Type, &c.Target, &locations, &assertions,
			&c.IntervalSeconds, &c.ConsecutiveFailuresThreshold,
			&c.SSLExpiryWarningDays, &c.Enabled,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(locations, &c.Locations); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(assertions, &c.Assertions); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}
