// Package archive persists one transcript file per finalized session and
// prunes old files in the background.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quokkastudio/vcscribe/internal/transcript"
)

const (
	fileTimeLayout   = "20060102-150405"
	headerTimeLayout = "2006-01-02 15:04:05"
)

type SessionInfo struct {
	GuildName    string
	ChannelName  string
	StartedAt    time.Time
	EndedAt      time.Time
	Participants []string
}

type Writer struct {
	dir string
	loc *time.Location
}

func NewWriter(dir, timezone string) (*Writer, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	return &Writer{dir: dir, loc: loc}, nil
}

// Write stores the session transcript and returns the file path.
func (w *Writer) Write(info SessionInfo, entries []transcript.Entry, labels map[string]string) (string, error) {
	name := fmt.Sprintf("%s_%s.txt", info.StartedAt.In(w.loc).Format(fileTimeLayout), SanitizeName(info.ChannelName))
	path := filepath.Join(w.dir, name)

	body := FormatTranscript(info, entries, labels, w.loc)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write transcript file: %w", err)
	}
	return path, nil
}

// FormatTranscript renders the header followed by the raw transcript
// lines. labels maps speaker ids to display names; unknown speakers fall
// back to their id.
func FormatTranscript(info SessionInfo, entries []transcript.Entry, labels map[string]string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	lines := []string{
		fmt.Sprintf("Server: %s", info.GuildName),
		fmt.Sprintf("Channel: %s", info.ChannelName),
		fmt.Sprintf("Start: %s", info.StartedAt.In(loc).Format(headerTimeLayout)),
		fmt.Sprintf("End: %s", info.EndedAt.In(loc).Format(headerTimeLayout)),
		fmt.Sprintf("Participants: %s", strings.Join(info.Participants, ", ")),
		"",
	}
	for _, e := range entries {
		lines = append(lines, FormatEntry(e, labels, info.StartedAt))
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatEntry renders one transcript line as "[hh:mm:ss] name: text".
func FormatEntry(e transcript.Entry, labels map[string]string, startedAt time.Time) string {
	label := labels[e.SpeakerID]
	if label == "" {
		label = e.SpeakerID
	}
	elapsed := e.At.Sub(startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return fmt.Sprintf("[%s] %s: %s", formatElapsedHMS(elapsed), label, e.Text)
}

// SanitizeName makes a channel name safe for filenames.
func SanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('-')
		}
	}
	out := strings.Trim(sb.String(), "-")
	if out == "" {
		return "channel"
	}
	return out
}

func formatElapsedHMS(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
