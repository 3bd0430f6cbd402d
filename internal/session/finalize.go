package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/quokkastudio/vcscribe/internal/archive"
	"github.com/quokkastudio/vcscribe/internal/delivery"
	"github.com/quokkastudio/vcscribe/internal/repository"
	"github.com/quokkastudio/vcscribe/internal/transcript"
)

// finalizeJob is an immutable snapshot of a finished session. The live
// state is reset before the pipeline starts, so nothing here is shared.
type finalizeJob struct {
	sessionID    string
	channelID    string
	channelName  string
	startedAt    time.Time
	endedAt      time.Time
	stopReason   string
	entries      []transcript.Entry
	dropped      int
	participants []string
	metrics      Metrics
}

// runFinalizePipeline archives, summarizes, delivers and records one
// finalized session. Failures are logged and never retried; the loop
// has already moved on.
func (m *Manager) runFinalizePipeline(job finalizeJob) {
	defer m.pipelines.Done()
	ctx := context.Background()

	meta, err := m.discord.ResolveSessionMetadata(ctx, m.cfg.DiscordGuildID, job.channelID, job.participants)
	if err != nil {
		slog.Warn("failed to resolve session metadata", "error", err, "session_id", job.sessionID)
	}
	channelName := meta.ChannelName
	if channelName == "" {
		channelName = job.channelName
	}
	labels := make(map[string]string, len(meta.Participants))
	names := make([]string, 0, len(meta.Participants))
	for _, p := range meta.Participants {
		labels[p.UserID] = p.DisplayName
		names = append(names, p.DisplayName)
	}
	if len(names) == 0 {
		names = job.participants
	}

	info := archive.SessionInfo{
		GuildName:    meta.GuildName,
		ChannelName:  channelName,
		StartedAt:    job.startedAt,
		EndedAt:      job.endedAt,
		Participants: names,
	}
	duration := job.endedAt.Sub(job.startedAt)

	delivered := false
	transcriptText := renderTranscript(job.entries, labels, job.startedAt)
	payload := delivery.Payload{
		SchemaVersion:   delivery.PayloadSchemaVersion,
		SessionID:       job.sessionID,
		GuildID:         m.cfg.DiscordGuildID,
		GuildName:       meta.GuildName,
		ChannelID:       job.channelID,
		ChannelName:     channelName,
		StartAt:         job.startedAt.UTC().Format(time.RFC3339),
		EndAt:           job.endedAt.UTC().Format(time.RFC3339),
		DurationSeconds: int64(duration / time.Second),
		Participants:    names,
		SegmentCount:    job.metrics.SegmentsAccepted,
		DroppedEntries:  job.dropped,
		Transcript:      transcriptText,
	}

	skip := len(job.entries) == 0 && duration < time.Duration(m.cfg.SkipEmptyBelowS)*time.Second
	if skip {
		slog.Info("short empty session; skipping summary and delivery", "session_id", job.sessionID, "duration", duration)
	} else {
		if path, err := m.archive.Write(info, job.entries, labels); err != nil {
			slog.Error("failed to archive transcript", "error", err, "session_id", job.sessionID)
		} else {
			slog.Info("transcript archived", "session_id", job.sessionID, "path", path)
		}

		summaryCtx, cancel := context.WithTimeout(ctx, m.cfg.SummaryTimeout())
		payload.Report = m.summarizer.Report(summaryCtx, transcriptText)
		cancel()

		if err := m.dispatcher.Dispatch(ctx, payload.Report, payload); err != nil {
			slog.Error("required delivery failed", "error", err, "session_id", job.sessionID)
		} else {
			delivered = true
		}
	}

	m.recordSessionOutput(ctx, job, info, payload, delivered)
	m.post(event{kind: evPipelineDone, sessionID: job.sessionID, delivered: delivered})
}

func (m *Manager) recordSessionOutput(ctx context.Context, job finalizeJob, info archive.SessionInfo, payload delivery.Payload, delivered bool) {
	if err := m.repo.CompleteSession(ctx, job.sessionID, job.endedAt, job.stopReason); err != nil {
		slog.Error("failed to complete session row", "error", err, "session_id", job.sessionID)
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		payloadJSON = nil
	}
	if err := m.repo.SaveSessionOutput(ctx, repository.SaveSessionOutputInput{
		SessionID:         job.sessionID,
		EndedAt:           job.endedAt,
		StopReason:        job.stopReason,
		GuildName:         info.GuildName,
		ChannelName:       info.ChannelName,
		DurationSeconds:   int64(job.endedAt.Sub(job.startedAt) / time.Second),
		SegmentCount:      job.metrics.SegmentsAccepted,
		DiscardedCount:    job.metrics.SegmentsDiscarded,
		FailedCount:       job.metrics.FailedCount(),
		CapturedSeconds:   job.metrics.CapturedSeconds,
		BarrierTimedOut:   job.metrics.BarrierTimedOut,
		AbandonedTasks:    job.metrics.AbandonedTasks,
		Participants:      job.participants,
		TranscriptText:    payload.Transcript,
		ReportText:        payload.Report,
		DeliveryPayload:   payloadJSON,
		DeliverySucceeded: delivered,
	}); err != nil {
		slog.Error("failed to save session output", "error", err, "session_id", job.sessionID)
	}
}

func renderTranscript(entries []transcript.Entry, labels map[string]string, startedAt time.Time) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, archive.FormatEntry(e, labels, startedAt))
	}
	return strings.Join(lines, "\n")
}
