package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE session_status AS ENUM ('running', 'completed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		guild_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		status session_status NOT NULL DEFAULT 'running',
		stop_reason TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_running ON sessions (guild_id) WHERE status = 'running'`,
	`CREATE TABLE IF NOT EXISTS transcript_segments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		speaker_id TEXT NOT NULL,
		content TEXT NOT NULL,
		segment_index INTEGER NOT NULL,
		spoken_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcript_segments_session ON transcript_segments (session_id, segment_index)`,
	`CREATE TABLE IF NOT EXISTS session_outputs (
		session_id UUID PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
		ended_at TIMESTAMPTZ NOT NULL,
		stop_reason TEXT NOT NULL,
		guild_name TEXT NOT NULL,
		channel_name TEXT NOT NULL,
		duration_seconds BIGINT NOT NULL,
		segment_count INTEGER NOT NULL,
		discarded_count INTEGER NOT NULL,
		failed_count INTEGER NOT NULL,
		captured_seconds DOUBLE PRECISION NOT NULL,
		barrier_timed_out BOOLEAN NOT NULL,
		abandoned_tasks INTEGER NOT NULL,
		participants TEXT[] NOT NULL,
		transcript_text TEXT NOT NULL,
		report_text TEXT NOT NULL,
		delivery_payload JSONB,
		delivery_succeeded BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
