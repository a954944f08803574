package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pulsewatch/backend/internal/model"
)

// EnsureCorrelationSchema - alert_correlations, correlation_configs 테이블 생성
func (db *Postgres) EnsureCorrelationSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS alert_correlations (
			correlation_id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			alerts JSONB NOT NULL DEFAULT '[]',
			primary_alert_id TEXT NOT NULL,
			reason TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS alert_correlations_org_idx ON alert_correlations(org_id, status)`,
		`
		CREATE TABLE IF NOT EXISTS correlation_configs (
			org_id TEXT PRIMARY KEY,
			is_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			time_window_seconds INT NOT NULL DEFAULT 300,
			by_same_check BOOLEAN NOT NULL DEFAULT TRUE,
			by_same_location BOOLEAN NOT NULL DEFAULT TRUE,
			by_similar_error BOOLEAN NOT NULL DEFAULT TRUE,
			similarity_threshold INT NOT NULL DEFAULT 70,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
	}
	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// GetCorrelationConfig - 조직 설정 조회. 레코드가 없으면 (nil, nil)이며
// 호출 측은 기능 비활성으로 본다.
func (db *Postgres) GetCorrelationConfig(ctx context.Context, orgID string) (*model.AlertCorrelationConfig, error) {
	query := `
		SELECT org_id, is_enabled, time_window_seconds, by_same_check,
		       by_same_location, by_similar_error, similarity_threshold
		FROM correlation_configs
		WHERE org_id = $1`

	var cfg model.AlertCorrelationConfig
	err := db.Pool.QueryRow(ctx, query, orgID).Scan(
		&cfg.OrgID, &cfg.Enabled, &cfg.TimeWindowSeconds, &cfg.CorrelateBySameCheck,
		&cfg.CorrelateBySameLocation, &cfg.CorrelateBySimilarError, &cfg.SimilarityThreshold,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpsertCorrelationConfig - 조직 설정 저장
func (db *Postgres) UpsertCorrelationConfig(ctx context.Context, cfg model.AlertCorrelationConfig) error {
	query := `
		INSERT INTO correlation_configs (
			org_id, is_enabled, time_window_seconds, by_same_check,
			by_same_location, by_similar_error, similarity_threshold, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (org_id) DO UPDATE SET
			is_enabled = EXCLUDED.is_enabled,
			time_window_seconds = EXCLUDED.time_window_seconds,
			by_same_check = EXCLUDED.by_same_check,
			by_same_location = EXCLUDED.by_same_location,
			by_similar_error = EXCLUDED.by_similar_error,
			similarity_threshold = EXCLUDED.similarity_threshold,
			updated_at = NOW()
	`
	_, err := db.Pool.Exec(ctx, query,
		cfg.OrgID, cfg.Enabled, cfg.TimeWindowSeconds, cfg.CorrelateBySameCheck,
		cfg.CorrelateBySameLocation, cfg.CorrelateBySimilarError, cfg.SimilarityThreshold,
	)
	return err
}

// ListActiveCorrelations - 조직의 active correlation 전체 조회
func (db *Postgres) ListActiveCorrelations(ctx context.Context, orgID string) ([]model.AlertCorrelation, error) {
	return db.listCorrelations(ctx, orgID, model.CorrelationActive, 0)
}

// ListCorrelations - 조직의 correlation 이력 조회 (최근 순)
func (db *Postgres) ListCorrelations(ctx context.Context, orgID string, limit int) ([]model.AlertCorrelation, error) {
	return db.listCorrelations(ctx, orgID, "", limit)
}

func (db *Postgres) listCorrelations(ctx context.Context, orgID, status string, limit int) ([]model.AlertCorrelation, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `
		SELECT correlation_id, org_id, alerts, primary_alert_id, reason, detail,
		       status, created_at, updated_at
		FROM alert_correlations
		WHERE org_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY updated_at DESC
		LIMIT $3`

	rows, err := db.Pool.Query(ctx, query, orgID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.AlertCorrelation{}
	for rows.Next() {
		var (
			c      model.AlertCorrelation
			alerts []byte
		)
		if err := rows.Scan(
			&c.ID, &c.OrgID, &alerts, &c.PrimaryAlertID, &c.Reason, &c.Detail,
			&c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(alerts, &c.Alerts); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetCorrelation - correlation 단건 조회
func (db *Postgres) GetCorrelation(ctx context.Context, id string) (*model.AlertCorrelation, error) {
	query := `
		SELECT correlation_id, org_id, alerts, primary_alert_id, reason, detail,
		       status, created_at, updated_at
		FROM alert_correlations
		WHERE correlation_id = $1`

	var (
		c      model.AlertCorrelation
		alerts []byte
	)
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.OrgID, &alerts, &c.PrimaryAlertID, &c.Reason, &c.Detail,
		&c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(alerts, &c.Alerts); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCorrelation - 새 correlation 저장
func (db *Postgres) CreateCorrelation(ctx context.Context, c model.AlertCorrelation) error {
	alerts, err := json.Marshal(c.Alerts)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO alert_correlations (
			correlation_id, org_id, alerts, primary_alert_id, reason, detail,
			status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = db.Pool.Exec(ctx, query,
		c.ID, c.OrgID, alerts, c.PrimaryAlertID, c.Reason, c.Detail,
		c.Status, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// UpdateCorrelation - 멤버 합류 후 갱신. active 상태일 때만 적용된다.
func (db *Postgres) UpdateCorrelation(ctx context.Context, c model.AlertCorrelation) error {
	alerts, err := json.Marshal(c.Alerts)
	if err != nil {
		return err
	}
	query := `
		UPDATE alert_correlations
		SET alerts = $2, reason = $3, detail = $4, updated_at = $5
		WHERE correlation_id = $1 AND status = 'active'
	`
	_, err = db.Pool.Exec(ctx, query, c.ID, alerts, c.Reason, c.Detail, c.UpdatedAt)
	return err
}

// ResolveCorrelation - correlation 종료 처리
func (db *Postgres) ResolveCorrelation(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE alert_correlations
		SET status = 'resolved', updated_at = $2
		WHERE correlation_id = $1 AND status = 'active'
	`
	_, err := db.Pool.Exec(ctx, query, id, at)
	return err
}
