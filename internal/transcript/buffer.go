package transcript

import "time"

type Entry struct {
	At        time.Time
	SpeakerID string
	Text      string
}

// Buffer is an append-only, size-bounded log of transcription results.
// When full it drops the oldest entries; the newest are always retained.
// The session loop is the only writer, and it only reads the buffer back
// after the finalize barrier, so no locking is needed.
type Buffer struct {
	maxItems int
	entries  []Entry
	dropped  int
}

func NewBuffer(maxItems int) *Buffer {
	if maxItems < 1 {
		maxItems = 1
	}
	return &Buffer{maxItems: maxItems}
}

func (b *Buffer) Append(e Entry) {
	b.entries = append(b.entries, e)
	if over := len(b.entries) - b.maxItems; over > 0 {
		b.dropped += over
		b.entries = append(b.entries[:0], b.entries[over:]...)
	}
}

func (b *Buffer) Len() int { return len(b.entries) }

// Dropped reports how many oldest entries were truncated away.
func (b *Buffer) Dropped() int { return b.dropped }

// Entries returns a copy so the finalize pipeline can keep reading after
// the session is reset.
func (b *Buffer) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}
