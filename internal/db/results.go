package db

import (
	"context"
	"encoding/json"

	"github.com/pulsewatch/backend/internal/model"
)

// EnsureResultSchema - check_results 테이블 생성
func (db *Postgres) EnsureResultSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS check_results (
			result_id TEXT PRIMARY KEY,
			check_id TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			response_time_ms DOUBLE PRECISION NOT NULL DEFAULT 0,
			status_code INT NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			assertions JSONB NOT NULL DEFAULT '[]',
			assertions_passed INT NOT NULL DEFAULT 0,
			assertions_failed INT NOT NULL DEFAULT 0,
			certificate JSONB,
			checked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS check_results_check_id_idx ON check_results(check_id, checked_at DESC)`,
	}
	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult - 결과 1건 저장. result_id 기준 idempotent upsert라서
// 스케줄러 재시도가 이력에 중복 기록을 남기지 않는다.
func (db *Postgres) SaveResult(ctx context.Context, r model.CheckResult) error {
	assertions, err := json.Marshal(r.Assertions)
	if err != nil {
		return err
	}
	var cert []byte
	if r.Certificate != nil {
		if cert, err = json.Marshal(r.Certificate); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO check_results (
			result_id, check_id, location, status, response_time_ms, status_code,
			error, assertions, assertions_passed, assertions_failed, certificate, checked_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (result_id) DO NOTHING
	`
	_, err = db.Pool.Exec(ctx, query,
		r.ID, r.CheckID, r.Location, r.Status, r.ResponseTimeMS, r.StatusCode,
		r.Error, assertions, r.AssertionsPassed, r.AssertionsFailed, cert, r.CheckedAt,
	)
	return err
}

// ListResultsByCheck - 체크 하나의 최근 결과 이력 조회
func (db *Postgres) ListResultsByCheck(ctx context.Context, checkID string, limit int) ([]model.CheckResult, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT result_id, check_id, location, status, response_time_ms, status_code,
		       error, assertions, assertions_passed, assertions_failed, certificate, checked_at
		FROM check_results
		WHERE check_id = $1
		ORDER BY checked_at DESC
		LIMIT $2`

	rows, err := db.Pool.Query(ctx, query, checkID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.CheckResult{}
	for rows.Next() {
		var (
			r          model.CheckResult
			assertions []byte
			cert       []byte
		)
		if err := rows.Scan(
			&r.ID, &r.CheckID, &r.Location, &r.Status, &r.ResponseTimeMS, &r.StatusCode,
			&r.Error, &assertions, &r.AssertionsPassed, &r.AssertionsFailed, &cert, &r.CheckedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(assertions, &r.Assertions); err != nil {
			return nil, err
		}
		if len(cert) > 0 {
			r.Certificate = &model.CertificateSummary{}
			if err := json.Unmarshal(cert, r.Certificate); err != nil {
				return nil, err
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
