package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pulsewatch/backend/internal/model"
)

// EnsureRateLimitSchema - rate_limit_configs 테이블 생성.
// 창 카운터 자체는 프로세스 메모리에 있고, 설정만 영속화한다.
func (db *Postgres) EnsureRateLimitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS rate_limit_configs (
			org_id TEXT PRIMARY KEY,
			is_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			max_alerts INT NOT NULL DEFAULT 10,
			time_window_seconds INT NOT NULL DEFAULT 3600,
			suppression_mode TEXT NOT NULL DEFAULT 'aggregate',
			aggregate_threshold INT NOT NULL DEFAULT 5,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	_, err := db.Pool.Exec(ctx, query)
	return err
}

// GetRateLimitConfig - 조직 설정 조회. 없으면 (nil, nil) = 기능 비활성.
func (db *Postgres) GetRateLimitConfig(ctx context.Context, orgID string) (*model.AlertRateLimitConfig, error) {
	query := `
		SELECT org_id, is_enabled, max_alerts, time_window_seconds,
		       suppression_mode, aggregate_threshold
		FROM rate_limit_configs
		WHERE org_id = $1`

	var cfg model.AlertRateLimitConfig
	err := db.Pool.QueryRow(ctx, query, orgID).Scan(
		&cfg.OrgID, &cfg.Enabled, &cfg.MaxAlerts, &cfg.TimeWindowSeconds,
		&cfg.SuppressionMode, &cfg.AggregateThreshold,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpsertRateLimitConfig - 조직 설정 저장
func (db *Postgres) UpsertRateLimitConfig(ctx context.Context, cfg model.AlertRateLimitConfig) error {
	query := `
		INSERT INTO rate_limit_configs (
			org_id, is_enabled, max_alerts, time_window_seconds,
			suppression_mode, aggregate_threshold, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (org_id) DO UPDATE SET
			is_enabled = EXCLUDED.is_enabled,
			max_alerts = EXCLUDED.max_alerts,
			time_window_seconds = EXCLUDED.time_window_seconds,
			suppression_mode = EXCLUDED.suppression_mode,
			aggregate_threshold = EXCLUDED.aggregate_threshold,
			updated_at = NOW()
	`
	_, err := db.Pool.Exec(ctx, query,
		cfg.OrgID, cfg.Enabled, cfg.MaxAlerts, cfg.TimeWindowSeconds,
		cfg.SuppressionMode, cfg.AggregateThreshold,
	)
	return err
}
