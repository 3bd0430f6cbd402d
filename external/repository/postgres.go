package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quokkastudio/vcscribe/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (id, guild_id, channel_id, started_at, status)
		 VALUES ($1, $2, $3, $4, 'running')
		 RETURNING id, guild_id, channel_id, started_at, ended_at, status`,
		input.SessionID, input.GuildID, input.ChannelID, input.StartedAt)
	var s repository.Session
	var endedAt *time.Time
	if err := row.Scan(&s.ID, &s.GuildID, &s.ChannelID, &s.StartedAt, &endedAt, &s.Status); err != nil {
		return nil, err
	}
	s.EndedAt = endedAt
	return &s, nil
}

func (r *PostgresRepository) CompleteSession(ctx context.Context, sessionID string, endedAt time.Time, stopReason string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET status = 'completed', ended_at = $2, stop_reason = $3 WHERE id = $1`,
		sessionID, endedAt, stopReason)
	return err
}

func (r *PostgresRepository) GetRunningSessionByGuild(ctx context.Context, guildID string) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, guild_id, channel_id, started_at, ended_at, status
		 FROM sessions WHERE guild_id = $1 AND status = 'running'
		 LIMIT 1`,
		guildID)
	var s repository.Session
	var endedAt *time.Time
	err := row.Scan(&s.ID, &s.GuildID, &s.ChannelID, &s.StartedAt, &endedAt, &s.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.EndedAt = endedAt
	return &s, nil
}

func (r *PostgresRepository) InsertSegment(ctx context.Context, input repository.InsertSegmentInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transcript_segments (session_id, speaker_id, content, segment_index, spoken_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		input.SessionID, input.SpeakerID, input.Content, input.SegmentIndex, input.SpokenAt)
	return err
}

func (r *PostgresRepository) SaveSessionOutput(ctx context.Context, input repository.SaveSessionOutputInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_outputs (
			session_id, ended_at, stop_reason, guild_name, channel_name,
			duration_seconds, segment_count, discarded_count, failed_count,
			captured_seconds, barrier_timed_out, abandoned_tasks,
			participants, transcript_text, report_text, delivery_payload, delivery_succeeded
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 ON CONFLICT (session_id) DO NOTHING`,
		input.SessionID, input.EndedAt, input.StopReason, input.GuildName, input.ChannelName,
		input.DurationSeconds, input.SegmentCount, input.DiscardedCount, input.FailedCount,
		input.CapturedSeconds, input.BarrierTimedOut, input.AbandonedTasks,
		input.Participants, input.TranscriptText, input.ReportText, input.DeliveryPayload, input.DeliverySucceeded)
	return err
}
