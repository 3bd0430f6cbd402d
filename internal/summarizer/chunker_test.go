package summarizer

import (
	"strings"
	"testing"
)

func TestSplitChunksRespectsLineBoundaries(t *testing.T) {
	text := "one\ntwo\nthree\nfour"
	chunks := splitChunks(text, 9)
	for _, c := range chunks {
		if len(c) > 9 {
			t.Fatalf("chunk exceeds limit: %q", c)
		}
	}
	if got := strings.Join(chunks, "\n"); got != text {
		t.Fatalf("chunking lost content: %q", got)
	}
	for _, c := range chunks {
		for _, line := range strings.Split(c, "\n") {
			if line != "one" && line != "two" && line != "three" && line != "four" {
				t.Fatalf("line was split mid-way: %q", line)
			}
		}
	}
}

func TestSplitChunksHardSplitsOverlongLine(t *testing.T) {
	text := strings.Repeat("x", 25)
	chunks := splitChunks(text, 10)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for a 25-char line with limit 10, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(c) > 10 {
			t.Fatalf("hard split produced oversized chunk: %q", c)
		}
	}
}

func TestCapChunksDropsOldest(t *testing.T) {
	chunks := []string{"a", "b", "c", "d"}
	kept, omitted := capChunks(chunks, 2)
	if omitted != 2 {
		t.Fatalf("expected 2 omitted, got %d", omitted)
	}
	if kept[0] != "c" || kept[1] != "d" {
		t.Fatalf("expected newest chunks kept, got %v", kept)
	}
}
