package transcript

import (
	"fmt"
	"testing"
	"time"
)

func TestBufferAppendWithinCapacity(t *testing.T) {
	b := NewBuffer(3)
	b.Append(Entry{SpeakerID: "a", Text: "one"})
	b.Append(Entry{SpeakerID: "b", Text: "two"})
	if b.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", b.Len())
	}
	if b.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", b.Dropped())
	}
}

func TestBufferDropsOldestKeepsOrder(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		b.Append(Entry{Text: fmt.Sprintf("line-%d", i)})
	}
	if b.Len() != 3 {
		t.Fatalf("expected buffer capped at 3, got %d", b.Len())
	}
	if b.Dropped() != 2 {
		t.Fatalf("expected 2 dropped, got %d", b.Dropped())
	}
	got := b.Entries()
	want := []string{"line-2", "line-3", "line-4"}
	for i, w := range want {
		if got[i].Text != w {
			t.Fatalf("entry %d: expected %q, got %q", i, w, got[i].Text)
		}
	}
}

func TestBufferEntriesIsACopy(t *testing.T) {
	b := NewBuffer(4)
	b.Append(Entry{At: time.Now(), SpeakerID: "a", Text: "hello"})
	snapshot := b.Entries()
	b.Append(Entry{SpeakerID: "b", Text: "world"})
	if len(snapshot) != 1 {
		t.Fatalf("snapshot mutated after append: %d entries", len(snapshot))
	}
}
