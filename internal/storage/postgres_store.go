package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/example/commit-swipe/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS swipe_decisions (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	target_id   BIGINT NOT NULL,
	action      TEXT NOT NULL,
	source      TEXT NOT NULL,
	match       BOOLEAN NOT NULL DEFAULT FALSE,
	submitted   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL
)`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create decisions table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Record(ctx context.Context, d models.Decision) error {
	_, err := p.db.ExecContext(ctx, `INSERT INTO swipe_decisions(id, user_id, target_id, action, source, match, submitted, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET match=EXCLUDED.match, submitted=EXCLUDED.submitted`,
		d.ID, d.UserID, d.TargetID, string(d.Action), d.Source, d.Match, d.Submitted, d.CreatedAt)
	return err
}

func (p *PostgresStore) Recent(ctx context.Context, limit int) ([]models.Decision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `SELECT id, user_id, target_id, action, source, match, submitted, created_at
		FROM swipe_decisions ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Decision{}
	for rows.Next() {
		var d models.Decision
		var action string
		if err := rows.Scan(&d.ID, &d.UserID, &d.TargetID, &action, &d.Source, &d.Match, &d.Submitted, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Action = models.ActionType(action)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Close() error { return p.db.Close() }
