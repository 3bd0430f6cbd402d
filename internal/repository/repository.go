package repository

import (
	"context"
	"time"
)

type CreateSessionInput struct {
	SessionID string
	GuildID   string
	ChannelID string
	StartedAt time.Time
}

type InsertSegmentInput struct {
	SessionID    string
	SpeakerID    string
	Content      string
	SegmentIndex int
	SpokenAt     time.Time
}

// SaveSessionOutputInput archives the finalize result for post-mortem
// inspection: what was heard, what was reported, and why the session ended.
type SaveSessionOutputInput struct {
	SessionID         string
	EndedAt           time.Time
	StopReason        string
	GuildName         string
	ChannelName       string
	DurationSeconds   int64
	SegmentCount      int
	DiscardedCount    int
	FailedCount       int
	CapturedSeconds   float64
	BarrierTimedOut   bool
	AbandonedTasks    int
	Participants      []string
	TranscriptText    string
	ReportText        string
	DeliveryPayload   []byte
	DeliverySucceeded bool
}

type Repository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	CompleteSession(ctx context.Context, sessionID string, endedAt time.Time, stopReason string) error
	GetRunningSessionByGuild(ctx context.Context, guildID string) (*Session, error)
	InsertSegment(ctx context.Context, input InsertSegmentInput) error
	SaveSessionOutput(ctx context.Context, input SaveSessionOutputInput) error
}
