package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quokkastudio/vcscribe/internal/transcript"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"General Voice":   "General-Voice",
		"dev/ops #2":      "dev-ops--2",
		"  spaced  ":      "spaced",
		"日本語チャンネル":        "channel",
		"ok_name-1":       "ok_name-1",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Fatalf("SanitizeName(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestWriterWritesHeaderAndEntries(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "UTC")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	info := SessionInfo{
		GuildName:    "Test Guild",
		ChannelName:  "General Voice",
		StartedAt:    start,
		EndedAt:      start.Add(10 * time.Minute),
		Participants: []string{"alice", "bob"},
	}
	entries := []transcript.Entry{
		{At: start.Add(65 * time.Second), SpeakerID: "u1", Text: "hello"},
		{At: start.Add(2 * time.Minute), SpeakerID: "u2", Text: "hi there"},
	}
	labels := map[string]string{"u1": "alice"}

	path, err := w.Write(info, entries, labels)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "20260314-150000_General-Voice.txt" {
		t.Fatalf("unexpected filename: %s", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	body := string(raw)
	for _, want := range []string{
		"Server: Test Guild",
		"Channel: General Voice",
		"Participants: alice, bob",
		"[00:01:05] alice: hello",
		"[00:02:00] u2: hi there",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("transcript missing %q:\n%s", want, body)
		}
	}
}
