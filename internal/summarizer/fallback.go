package summarizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// Extractive fallback tuning. Sentences near the sweet-spot length score
// highest; cue words mark likely decisions and follow-ups.
const (
	sweetSpotMin = 40
	sweetSpotMax = 160

	nearDuplicateThreshold = 0.92
)

type scoredSentence struct {
	index int
	text  string
	score float64
}

var cueWords = []string{
	"decide", "decided", "decision", "agree", "agreed", "action",
	"todo", "deadline", "schedule", "plan", "next week", "next step",
	"deploy", "release", "fix", "bug", "issue", "blocker", "review",
	"meeting", "follow up", "assign", "deliver", "launch",
}

// ExtractiveSummary builds a report without any external service. It is
// the last line of defense and always returns usable text.
func ExtractiveSummary(transcript string, topN int) string {
	if topN < 1 {
		topN = 1
	}
	sentences := splitSentences(transcript)
	if len(sentences) == 0 {
		return "No speech was captured in this session."
	}

	candidates := make([]scoredSentence, 0, len(sentences))
	for i, s := range sentences {
		candidates = append(candidates, scoredSentence{index: i, text: s, score: scoreSentence(s)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	picked := make([]scoredSentence, 0, topN)
	for _, c := range candidates {
		if len(picked) == topN {
			break
		}
		if isNearDuplicate(c.text, picked) {
			continue
		}
		picked = append(picked, c)
	}
	// Restore transcript order for readability.
	sort.Slice(picked, func(i, j int) bool { return picked[i].index < picked[j].index })

	var sb strings.Builder
	sb.WriteString("Call summary (extractive)\n\n")
	sb.WriteString("Key points:\n")
	for _, p := range picked {
		fmt.Fprintf(&sb, "- %s\n", p.text)
	}
	fmt.Fprintf(&sb, "\nSelected %d of %d transcript sentences.\n", len(picked), len(sentences))
	return sb.String()
}

func splitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		start := 0
		for i, r := range line {
			if r == '.' || r == '!' || r == '?' {
				if s := strings.TrimSpace(line[start : i+1]); s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
		if s := strings.TrimSpace(line[start:]); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func scoreSentence(s string) float64 {
	n := len(s)
	var score float64
	switch {
	case n >= sweetSpotMin && n <= sweetSpotMax:
		score = 1.0
	case n < sweetSpotMin:
		score = float64(n) / float64(sweetSpotMin)
	default:
		score = float64(sweetSpotMax) / float64(n)
	}
	lower := strings.ToLower(s)
	for _, cue := range cueWords {
		if strings.Contains(lower, cue) {
			score += 0.5
		}
	}
	return score
}

func isNearDuplicate(s string, picked []scoredSentence) bool {
	for _, p := range picked {
		if matchr.JaroWinkler(strings.ToLower(s), strings.ToLower(p.text), false) >= nearDuplicateThreshold {
			return true
		}
	}
	return false
}
