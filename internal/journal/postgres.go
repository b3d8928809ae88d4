package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/textbox/internal/opstack"
)

const schema = `
CREATE TABLE IF NOT EXISTS canvas_operations (
	seq        BIGSERIAL PRIMARY KEY,
	canvas_id  TEXT        NOT NULL,
	op_id      TEXT        NOT NULL,
	kind       TEXT        NOT NULL,
	op_type    TEXT        NOT NULL,
	shape_id   TEXT        NOT NULL,
	record     JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS canvas_operations_canvas_seq ON canvas_operations (canvas_id, seq DESC);
`

// Postgres is a Journal backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPool connects to databaseURL and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewPostgres creates the journal table if needed.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Append(ctx context.Context, canvasID string, ev opstack.Event) (int64, error) {
	data, err := json.Marshal(ev.Record)
	if err != nil {
		return 0, fmt.Errorf("marshal record: %w", err)
	}

	var seq int64
	err = p.pool.QueryRow(ctx,
		`INSERT INTO canvas_operations (canvas_id, op_id, kind, op_type, shape_id, record)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING seq`,
		canvasID, ev.Record.ID, string(ev.Kind), ev.Record.Type, ev.Record.ShapeID, data,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}
	return seq, nil
}

func (p *Postgres) List(ctx context.Context, canvasID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := p.pool.Query(ctx,
		`SELECT seq, canvas_id, kind, record FROM canvas_operations
		 WHERE canvas_id = $1 ORDER BY seq DESC LIMIT $2`,
		canvasID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		var kind string
		var data []byte
		if err := row.Scan(&e.Seq, &e.CanvasID, &kind, &data); err != nil {
			return Entry{}, err
		}
		e.Kind = opstack.EventKind(kind)
		if err := json.Unmarshal(data, &e.Record); err != nil {
			return Entry{}, fmt.Errorf("decode record %d: %w", e.Seq, err)
		}
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan operations: %w", err)
	}
	return entries, nil
}
