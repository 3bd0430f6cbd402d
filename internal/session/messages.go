package session

import (
	"fmt"
	"strings"
	"time"
)

const (
	commandStatus = "scribe-status"
	commandJoin   = "scribe-join"
	commandLeave  = "scribe-leave"

	commandStatusDescription = "Show what the scribe is doing and how the current session is going."
	commandJoinDescription   = "Make the scribe join your voice channel and stay on it."
	commandLeaveDescription  = "Finalize the current session and keep the scribe out until rejoined."
)

const (
	stopReasonChannelEmpty = "channel_empty"
	stopReasonManualLeave  = "manual_leave"
	stopReasonShutdown     = "shutdown"
	stopReasonOrphaned     = "orphaned"
)

const (
	messageWelcome = ":studio_microphone: Recording and transcribing this call. A summary will be delivered when everyone leaves."

	messageEphemeralWrongGuild     = ":warning: This command is not available on this server."
	messageEphemeralJoinVCFirst    = ":warning: Join a voice channel first, then run the command again."
	messageEphemeralVoiceLookup    = ":warning: Could not check your voice channel; try again."
	messageEphemeralJoinRequested  = ":microphone2: Joining your voice channel."
	messageEphemeralLeaveRequested = ":pause_button: Finalizing the current session."
	messageEphemeralNotRunning     = ":warning: No session is currently running."

	alertMessageFormat = ":warning: Capture failures in the current session: %d decode, %d transcribe. Latest at %s."
)

func formatAlert(m Metrics) string {
	return fmt.Sprintf(alertMessageFormat, m.DecodeFailures, m.TranscribeFailures, m.LastFailureAt.UTC().Format(statusTimeLayout))
}

const statusTimeLayout = "2006-01-02 15:04:05 MST"

func stateName(s sessionState) string {
	switch s {
	case stateIdle:
		return "idle"
	case stateCandidate:
		return "candidate"
	case stateJoining:
		return "joining"
	case stateActive:
		return "active"
	case stateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

func renderStatus(st sessionState, manual bool, channelName string, m Metrics, last *Snapshot, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	fmt.Fprintf(&b, "state: %s", stateName(st))
	if channelName != "" {
		fmt.Fprintf(&b, " (%s)", channelName)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "manual mode: %v\n", manual)
	if st == stateActive || st == stateFinalizing {
		fmt.Fprintf(&b, "health: %s\n", m.Health())
		fmt.Fprintf(&b, "segments: %d accepted / %d discarded / %d failed\n",
			m.SegmentsAccepted, m.SegmentsDiscarded, m.FailedCount())
		fmt.Fprintf(&b, "captured audio: %.1fs\n", m.CapturedSeconds)
		if !m.LastSpeechAt.IsZero() {
			fmt.Fprintf(&b, "last speech: %s\n", m.LastSpeechAt.In(loc).Format(statusTimeLayout))
		}
	}
	if last != nil {
		fmt.Fprintf(&b, "last session: %s ended %s (%s), %d entries",
			last.ChannelName, last.EndedAt.In(loc).Format(statusTimeLayout), last.StopReason, last.EntryCount)
		if last.Metrics.BarrierTimedOut {
			fmt.Fprintf(&b, ", %d tasks abandoned", last.Metrics.AbandonedTasks)
		}
		if last.Delivered {
			b.WriteString(", delivered")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
