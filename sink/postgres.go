package sink

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const createArtifactsTable = `CREATE TABLE IF NOT EXISTS classgen_artifacts (
	name       text PRIMARY KEY,
	path       text NOT NULL,
	data       bytea NOT NULL,
	run_id     uuid NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

const upsertArtifact = `INSERT INTO classgen_artifacts (name, path, data, run_id)
VALUES ($1, $2, $3, $4::uuid)
ON CONFLICT (name) DO UPDATE
SET path = EXCLUDED.path, data = EXCLUDED.data,
	run_id = EXCLUDED.run_id, updated_at = now()`

// Execer is the part of a pgx connection or pool the sink uses.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres upserts each class into the classgen_artifacts table. Rows written
// by one sink share a run ID.
type Postgres struct {
	db    Execer
	run   uuid.UUID
	close func() error
}

// NewPostgres returns a sink writing through db. The table is created if it
// does not exist. Rows are tagged with the WithRunID value, or with a fresh
// run ID when none is given.
func NewPostgres(ctx context.Context, db Execer, opts ...Option) (*Postgres, error) {
	o := collectOptions(opts)
	if _, err := db.Exec(ctx, createArtifactsTable); err != nil {
		return nil, fmt.Errorf("sink: creating classgen_artifacts: %w", err)
	}
	run := o.runID
	if run == uuid.Nil {
		run = uuid.Must(uuid.NewV4())
	}
	return &Postgres{db: db, run: run, close: func() error { return nil }}, nil
}

// OpenPostgres connects to the database at connString.
func OpenPostgres(ctx context.Context, connString string, opts ...Option) (*Postgres, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("sink: connecting to postgres: %w", err)
	}
	p, err := NewPostgres(ctx, conn, opts...)
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}
	p.close = func() error { return conn.Close(context.Background()) }
	return p, nil
}

// RunID identifies the rows written by this sink.
func (p *Postgres) RunID() uuid.UUID {
	return p.run
}

func (p *Postgres) Write(ctx context.Context, name string, data []byte) error {
	_, err := p.db.Exec(ctx, upsertArtifact, name, classPath(name), data, p.run.String())
	return err
}

func (p *Postgres) Close() error {
	return p.close()
}
