package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pulsewatch/backend/internal/model"
)

// EnsureIncidentSchema - incidents 테이블 생성.
// 부분 유니크 인덱스로 체크당 활성 인시던트 1개를 DB 차원에서 보장한다.
func (db *Postgres) EnsureIncidentSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS incidents (
			incident_id TEXT PRIMARY KEY,
			check_id TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			resolved_at TIMESTAMPTZ,
			duration_seconds BIGINT,
			last_error TEXT NOT NULL DEFAULT '',
			affected_locations JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE UNIQUE INDEX IF NOT EXISTS incidents_active_check_idx ON incidents(check_id) WHERE resolved_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS incidents_check_id_idx ON incidents(check_id, started_at DESC)`,
	}
	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// GetActiveIncident - 체크의 활성 인시던트 조회. 없으면 (nil, nil).
func (db *Postgres) GetActiveIncident(ctx context.Context, checkID string) (*model.Incident, error) {
	query := `
		SELECT incident_id, check_id, status, started_at, resolved_at,
		       duration_seconds, last_error, affected_locations
		FROM incidents
		WHERE check_id = $1 AND resolved_at IS NULL`

	inc, err := db.scanIncident(db.Pool.QueryRow(ctx, query, checkID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inc, nil
}

// CreateIncident - 새 인시던트 생성
func (db *Postgres) CreateIncident(ctx context.Context, inc model.Incident) error {
	locations, err := json.Marshal(inc.AffectedLocations)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO incidents (
			incident_id, check_id, status, started_at, last_error, affected_locations
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = db.Pool.Exec(ctx, query,
		inc.ID, inc.CheckID, inc.Status, inc.StartedAt, inc.LastError, locations,
	)
	return err
}

// ExtendIncident - 진행 중인 인시던트 갱신 (상태 승격/에러/리전 누적).
// WHERE resolved_at IS NULL 가드로 이미 닫힌 인시던트를 덮어쓰지 않는다.
func (db *Postgres) ExtendIncident(ctx context.Context, id, status, lastError string, locations []string) error {
	data, err := json.Marshal(locations)
	if err != nil {
		return err
	}
	query := `
		UPDATE incidents
		SET status = $2, last_error = $3, affected_locations = $4, updated_at = NOW()
		WHERE incident_id = $1 AND resolved_at IS NULL
	`
	_, err = db.Pool.Exec(ctx, query, id, status, lastError, data)
	return err
}

// CloseIncident - 인시던트 종료 확정. 동일한 가드로 중복 종료를 무시한다.
func (db *Postgres) CloseIncident(ctx context.Context, id string, resolvedAt time.Time, durationSeconds int64) error {
	query := `
		UPDATE incidents
		SET resolved_at = $2, duration_seconds = $3, updated_at = NOW()
		WHERE incident_id = $1 AND resolved_at IS NULL
	`
	_, err := db.Pool.Exec(ctx, query, id, resolvedAt, durationSeconds)
	return err
}

// GetIncident - 인시던트 단건 조회
func (db *Postgres) GetIncident(ctx context.Context, id string) (*model.Incident, error) {
	query := `
		SELECT incident_id, check_id, status, started_at, resolved_at,
		       duration_seconds, last_error, affected_locations
		FROM incidents
		WHERE incident_id = $1`
	return db.scanIncident(db.Pool.QueryRow(ctx, query, id))
}

// ListIncidents - 조직의 인시던트 이력 조회 (최근 순)
func (db *Postgres) ListIncidents(ctx context.Context, orgID string, limit int) ([]model.Incident, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT i.incident_id, i.check_id, i.status, i.started_at, i.resolved_at,
		       i.duration_seconds, i.last_error, i.affected_locations
		FROM incidents i
		JOIN checks c ON c.check_id = i.check_id
		WHERE c.org_id = $1
		ORDER BY i.started_at DESC
		LIMIT $2`

	rows, err := db.Pool.Query(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Incident{}
	for rows.Next() {
		inc, err := db.scanIncident(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *inc)
	}
	return list, rows.Err()
}

func (db *Postgres) scanIncident(row pgx.Row) (*model.Incident, error) {
	var (
		inc       model.Incident
		locations []byte
	)
	err := row.Scan(
		&inc.ID, &inc.CheckID, &inc.Status, &inc.StartedAt, &inc.ResolvedAt,
		&inc.DurationSeconds, &inc.LastError, &locations,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(locations, &inc.AffectedLocations); err != nil {
		return nil, err
	}
	return &inc, nil
}
