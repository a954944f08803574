package db

import (
	"context"
	"encoding/json"

	"github.com/pulsewatch/backend/internal/model"
)

// EnsureWebhookSchema - webhook_configs 테이블 생성
func (db *Postgres) EnsureWebhookSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS webhook_configs (
			id SERIAL PRIMARY KEY,
			org_id TEXT NOT NULL,
			url TEXT NOT NULL,
			method TEXT NOT NULL DEFAULT 'POST',
			headers JSONB NOT NULL DEFAULT '[]',
			body TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	_, err := db.Pool.Exec(ctx, query)
	return err
}

// GetWebhookConfigs - 조직의 웹훅 설정 전체 조회
func (db *Postgres) GetWebhookConfigs(ctx context.Context, orgID string) ([]model.WebhookConfig, error) {
	query := `
		SELECT id, org_id, url, method, headers, body, updated_at
		FROM webhook_configs
		WHERE org_id = $1
		ORDER BY id`

	rows, err := db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := []model.WebhookConfig{}
	for rows.Next() {
		var (
			c       model.WebhookConfig
			headers []byte
		)
		if err := rows.Scan(&c.ID, &c.OrgID, &c.URL, &c.Method, &headers, &c.Body, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(headers, &c.Headers); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// CreateWebhookConfig - 웹훅 설정 저장
func (db *Postgres) CreateWebhookConfig(ctx context.Context, orgID string, req model.WebhookConfigRequest) (int, error) {
	headers, err := json.Marshal(req.Headers)
	if err != nil {
		return 0, err
	}
	method := req.Method
	if method == "" {
		method = "POST"
	}

	var id int
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO webhook_configs (org_id, url, method, headers, body, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`, orgID, req.URL, method, headers, req.Body).Scan(&id)
	return id, err
}

// DeleteWebhookConfig - 웹훅 설정 삭제
func (db *Postgres) DeleteWebhookConfig(ctx context.Context, id int) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM webhook_configs WHERE id = $1`, id)
	return err
}
