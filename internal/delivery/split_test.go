package delivery

import (
	"strings"
	"testing"
)

func TestSplitTextUnderBudget(t *testing.T) {
	parts := SplitText("short", 100)
	if len(parts) != 1 || parts[0] != "short" {
		t.Fatalf("expected passthrough, got %v", parts)
	}
}

func TestSplitTextPrefersNewline(t *testing.T) {
	text := "first line\nsecond line\nthird line"
	parts := SplitText(text, 25)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d: %v", len(parts), parts)
	}
	if parts[0] != "first line\nsecond line" {
		t.Fatalf("expected split on newline boundary, got %q", parts[0])
	}
	if parts[1] != "third line" {
		t.Fatalf("unexpected remainder %q", parts[1])
	}
}

func TestSplitTextHardCutWithoutNewline(t *testing.T) {
	text := strings.Repeat("x", 45)
	parts := SplitText(text, 20)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	for i, p := range parts {
		if len(p) > 20 {
			t.Fatalf("part %d exceeds budget: %d chars", i, len(p))
		}
	}
	if strings.Join(parts, "") != text {
		t.Fatal("hard cut lost content")
	}
}
