package session

import "time"

const (
	HealthOK                   = "ok"
	HealthNoSpeech             = "ok (no speech)"
	HealthTranscriptionFailing = "degraded: transcription failing"
	HealthDecodeFailing        = "degraded: decode failing"
)

// degradedAudioSeconds is how much captured audio with zero accepted
// segments it takes before transcription counts as failing rather than
// merely quiet.
const degradedAudioSeconds = 10

// Metrics accumulates per-session counters. Owned by the session loop;
// copied into snapshots, never shared.
type Metrics struct {
	SegmentsCaptured   int
	SegmentsAccepted   int
	SegmentsDiscarded  int
	DecodeFailures     int
	TranscribeFailures int
	CapturedSeconds    float64
	LastSpeechAt       time.Time
	LastSuccessAt      time.Time
	LastFailureAt      time.Time
	BarrierTimedOut    bool
	AbandonedTasks     int
}

func (m Metrics) FailedCount() int {
	return m.DecodeFailures + m.TranscribeFailures
}

// Health classifies the session's transcription pipeline. A decoder that
// never yields audio and an engine that never yields text are distinct
// failure modes and get distinct labels.
func (m Metrics) Health() string {
	if m.CapturedSeconds > degradedAudioSeconds && m.SegmentsAccepted == 0 && m.TranscribeFailures > 0 {
		return HealthTranscriptionFailing
	}
	if m.DecodeFailures > 0 && m.SegmentsAccepted == 0 {
		return HealthDecodeFailing
	}
	if m.SegmentsCaptured == 0 {
		return HealthNoSpeech
	}
	return HealthOK
}

// Snapshot preserves the outcome of the most recently finalized session
// for the status command after the live state has been reset.
type Snapshot struct {
	SessionID    string
	ChannelID    string
	ChannelName  string
	StartedAt    time.Time
	EndedAt      time.Time
	StopReason   string
	EntryCount   int
	DroppedCount int
	Participants []string
	Metrics      Metrics
	Delivered    bool
}
