package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeLLM struct {
	prompts []string
	reply   func(prompt string) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.reply != nil {
		return f.reply(prompt)
	}
	return "summary", nil
}

func transcriptOfLines(n, lineLen int) string {
	line := strings.Repeat("a", lineLen-1)
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func TestReportSingleCallUnderThreshold(t *testing.T) {
	llm := &fakeLLM{}
	e := NewEngine(llm, Config{ChunkChars: 1000, MaxChunks: 8, FallbackTopN: 3})

	out := e.Report(context.Background(), "alice: hello there")
	if out != "summary" {
		t.Fatalf("expected llm summary, got %q", out)
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("expected exactly 1 llm call, got %d", len(llm.prompts))
	}
}

func TestReportMapReduceThreeChunks(t *testing.T) {
	calls := 0
	llm := &fakeLLM{reply: func(prompt string) (string, error) {
		calls++
		if strings.HasPrefix(prompt, mergePromptHeader) {
			return "merged report", nil
		}
		return fmt.Sprintf("partial-%d", calls), nil
	}}
	e := NewEngine(llm, Config{ChunkChars: 100, MaxChunks: 8, FallbackTopN: 3})

	// 3x the chunk threshold, split cleanly on line boundaries.
	transcript := transcriptOfLines(6, 50)
	out := e.Report(context.Background(), transcript)
	if out != "merged report" {
		t.Fatalf("expected merged report, got %q", out)
	}
	if len(llm.prompts) != 4 {
		t.Fatalf("expected 3 partial calls + 1 merge, got %d calls", len(llm.prompts))
	}
	for _, p := range llm.prompts[:3] {
		if !strings.HasPrefix(p, chunkPrompt) {
			t.Fatalf("partial call did not use chunk prompt: %q", p[:40])
		}
	}
	if !strings.HasPrefix(llm.prompts[3], mergePromptHeader) {
		t.Fatalf("final call did not use merge prompt")
	}
}

func TestReportDropsOldestChunksAndNotesOmission(t *testing.T) {
	llm := &fakeLLM{reply: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, mergePromptHeader) {
			return "merged", nil
		}
		return "partial", nil
	}}
	e := NewEngine(llm, Config{ChunkChars: 100, MaxChunks: 2, FallbackTopN: 3})

	transcript := transcriptOfLines(10, 50) // 5 chunks, 3 must be dropped
	if out := e.Report(context.Background(), transcript); out != "merged" {
		t.Fatalf("expected merged report, got %q", out)
	}
	if len(llm.prompts) != 3 {
		t.Fatalf("expected 2 partial calls + 1 merge, got %d", len(llm.prompts))
	}
	merge := llm.prompts[2]
	if !strings.Contains(merge, "3 part(s)") {
		t.Fatalf("merge prompt must note omitted chunk count, got %q", merge)
	}
}

func TestReportFallsBackOnLLMFailure(t *testing.T) {
	llm := &fakeLLM{reply: func(string) (string, error) {
		return "", errors.New("model overloaded")
	}}
	e := NewEngine(llm, Config{ChunkChars: 1000, MaxChunks: 8, FallbackTopN: 3})

	out := e.Report(context.Background(), "We decided to ship the release on Friday. Sounds good.")
	if out == "" {
		t.Fatal("fallback must always return text")
	}
	if !strings.Contains(out, "extractive") {
		t.Fatalf("expected extractive fallback report, got %q", out)
	}
}

func TestReportNilLLMUsesFallback(t *testing.T) {
	e := NewEngine(nil, Config{FallbackTopN: 3})
	out := e.Report(context.Background(), "The team agreed to fix the login bug first.")
	if !strings.Contains(out, "Key points:") {
		t.Fatalf("expected fallback sections, got %q", out)
	}
}

func TestReportEmptyTranscript(t *testing.T) {
	e := NewEngine(nil, Config{})
	out := e.Report(context.Background(), "  \n ")
	if out == "" {
		t.Fatal("empty transcript must still produce text")
	}
}
