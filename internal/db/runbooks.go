package db

import (
	"context"

	"github.com/pulsewatch/backend/internal/model"
)

// EnsureRunbookSchema - alert_runbooks 테이블 생성
func (db *Postgres) EnsureRunbookSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS alert_runbooks (
			runbook_id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			title TEXT NOT NULL,
			check_type TEXT NOT NULL DEFAULT 'all',
			severity TEXT NOT NULL DEFAULT 'all',
			content TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS alert_runbooks_org_idx ON alert_runbooks(org_id)`,
	}
	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// ListRunbooks - 조직의 runbook 전체 조회 (등록 순)
func (db *Postgres) ListRunbooks(ctx context.Context, orgID string) ([]model.AlertRunbook, error) {
	query := `
		SELECT runbook_id, org_id, title, check_type, severity, content, created_at, updated_at
		FROM alert_runbooks
		WHERE org_id = $1
		ORDER BY created_at`

	rows, err := db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.AlertRunbook{}
	for rows.Next() {
		var r model.AlertRunbook
		if err := rows.Scan(
			&r.ID, &r.OrgID, &r.Title, &r.CheckType, &r.Severity,
			&r.Content, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// GetRunbook - runbook 단건 조회
func (db *Postgres) GetRunbook(ctx context.Context, id string) (*model.AlertRunbook, error) {
	query := `
		SELECT runbook_id, org_id, title, check_type, severity, content, created_at, updated_at
		FROM alert_runbooks
		WHERE runbook_id = $1`

	var r model.AlertRunbook
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.OrgID, &r.Title, &r.CheckType, &r.Severity,
		&r.Content, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRunbook - runbook 저장
func (db *Postgres) CreateRunbook(ctx context.Context, r model.AlertRunbook) error {
	query := `
		INSERT INTO alert_runbooks (
			runbook_id, org_id, title, check_type, severity, content, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := db.Pool.Exec(ctx, query,
		r.ID, r.OrgID, r.Title, r.CheckType, r.Severity, r.Content,
	)
	return err
}

// UpdateRunbook - runbook 수정
func (db *Postgres) UpdateRunbook(ctx context.Context, r model.AlertRunbook) error {
	query := `
		UPDATE alert_runbooks
		SET title = $2, check_type = $3, severity = $4, content = $5, updated_at = NOW()
		WHERE runbook_id = $1
	`
	_, err := db.Pool.Exec(ctx, query, r.ID, r.Title, r.CheckType, r.Severity, r.Content)
	return err
}

// DeleteRunbook - runbook 삭제
func (db *Postgres) DeleteRunbook(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM alert_runbooks WHERE runbook_id = $1`, id)
	return err
}
