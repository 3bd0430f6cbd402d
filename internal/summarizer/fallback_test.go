package summarizer

import (
	"strings"
	"testing"
)

func TestExtractiveSummaryPrefersCueSentences(t *testing.T) {
	transcript := strings.Join([]string{
		"uh huh.",
		"We decided to move the deploy to Thursday because of the database migration.",
		"ok.",
		"The login issue is a blocker and Maria will fix it before the release.",
		"yeah.",
	}, "\n")
	out := ExtractiveSummary(transcript, 2)
	if !strings.Contains(out, "deploy to Thursday") {
		t.Fatalf("expected decision sentence picked, got %q", out)
	}
	if !strings.Contains(out, "blocker") {
		t.Fatalf("expected blocker sentence picked, got %q", out)
	}
	if strings.Contains(out, "- uh huh.") {
		t.Fatalf("filler sentence should not be picked: %q", out)
	}
}

func TestExtractiveSummaryDeduplicatesNearIdentical(t *testing.T) {
	transcript := strings.Join([]string{
		"We agreed to ship the new billing feature next week.",
		"We agreed to ship the new billing feature next week!",
		"The rollout plan needs a review from the platform team first.",
	}, "\n")
	out := ExtractiveSummary(transcript, 3)
	if strings.Count(out, "billing feature") != 1 {
		t.Fatalf("near-duplicate sentences must be deduplicated: %q", out)
	}
}

func TestExtractiveSummaryNeverEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "hi"} {
		if out := ExtractiveSummary(in, 5); out == "" {
			t.Fatalf("fallback returned empty text for %q", in)
		}
	}
}
