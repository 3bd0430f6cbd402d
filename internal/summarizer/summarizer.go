// Package summarizer turns a session transcript into a readable report.
// Large transcripts are summarized chunk-wise and merged; any LLM failure
// degrades to a local extractive fallback that always produces text.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LLM is the summarization collaborator. Failure is an expected case and
// triggers the extractive fallback.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	ChunkChars   int
	MaxChunks    int
	FallbackTopN int
}

type Engine struct {
	llm LLM
	cfg Config
}

// NewEngine builds a report engine. llm may be nil, in which case every
// report comes from the extractive fallback.
func NewEngine(llm LLM, cfg Config) *Engine {
	if cfg.ChunkChars < 1 {
		cfg.ChunkChars = 12000
	}
	if cfg.MaxChunks < 1 {
		cfg.MaxChunks = 8
	}
	if cfg.FallbackTopN < 1 {
		cfg.FallbackTopN = 8
	}
	return &Engine{llm: llm, cfg: cfg}
}

const singlePrompt = `Summarize the following voice call transcript into a short report with
these sections: "Overview", "Key points", "Decisions & action items".
Keep speaker attributions where they matter. Transcript:

`

const chunkPrompt = `Summarize this part of a voice call transcript. It is one piece of a
longer call, so do not reference other parts or assume what came before
or after. Keep it factual and concise. Transcript part:

`

const mergePromptHeader = `Merge the following partial summaries of one voice call into a single
report with sections "Overview", "Key points", "Decisions & action items".
Deduplicate repeated points and keep the same section structure.`

// Report produces the session report. It never returns an error; when the
// LLM path fails the extractive fallback text is returned instead.
func (e *Engine) Report(ctx context.Context, transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "No speech was captured in this session."
	}
	if e.llm == nil {
		return ExtractiveSummary(transcript, e.cfg.FallbackTopN)
	}
	report, err := e.llmReport(ctx, transcript)
	if err != nil {
		slog.Warn("llm summarization failed; using extractive fallback", "error", err)
		return ExtractiveSummary(transcript, e.cfg.FallbackTopN)
	}
	if strings.TrimSpace(report) == "" {
		slog.Warn("llm summarization returned empty text; using extractive fallback")
		return ExtractiveSummary(transcript, e.cfg.FallbackTopN)
	}
	return report
}

func (e *Engine) llmReport(ctx context.Context, transcript string) (string, error) {
	if len(transcript) <= e.cfg.ChunkChars {
		return e.llm.Complete(ctx, singlePrompt+transcript)
	}

	chunks := splitChunks(transcript, e.cfg.ChunkChars)
	chunks, omitted := capChunks(chunks, e.cfg.MaxChunks)
	slog.Info("summarizing transcript in chunks", "chunks", len(chunks), "omitted", omitted)

	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		partial, err := e.llm.Complete(ctx, chunkPrompt+chunk)
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		partials = append(partials, strings.TrimSpace(partial))
	}

	merged, err := e.llm.Complete(ctx, mergePrompt(omitted)+"\n\n"+strings.Join(partials, "\n\n---\n\n"))
	if err != nil {
		return "", fmt.Errorf("merge partial summaries: %w", err)
	}
	return merged, nil
}

func mergePrompt(omitted int) string {
	if omitted > 0 {
		return fmt.Sprintf("%s\nNote: the earliest %d part(s) of the call were omitted for length; mention that the report covers the most recent portion.", mergePromptHeader, omitted)
	}
	return mergePromptHeader
}
