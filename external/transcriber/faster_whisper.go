package transcriber

import (
	"context"
	"fmt"
	"strconv"

	"github.com/quokkastudio/vcscribe/pkg/executor"
)

type FasterWhisperConfig struct {
	Python     string
	ScriptPath string
	Model      string
	Language   string
	BeamSize   int
}

// FasterWhisperTranscriber shells out to the faster-whisper wrapper script,
// which prints the joined transcript on stdout.
type FasterWhisperTranscriber struct {
	cfg  FasterWhisperConfig
	exec executor.Executor
}

func NewFasterWhisperTranscriber(cfg FasterWhisperConfig, exec executor.Executor) *FasterWhisperTranscriber {
	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	return &FasterWhisperTranscriber{cfg: cfg, exec: exec}
}

func (t *FasterWhisperTranscriber) Transcribe(ctx context.Context, wavPath string) (string, error) {
	args := []string{t.cfg.ScriptPath, "--model", t.cfg.Model, "--beam_size", strconv.Itoa(t.cfg.BeamSize)}
	if t.cfg.Language != "" {
		args = append(args, "--language", t.cfg.Language)
	}
	args = append(args, wavPath)

	out, err := t.exec.Execute(ctx, t.cfg.Python, args...)
	if err != nil {
		return "", fmt.Errorf("faster-whisper: %w", err)
	}
	return out, nil
}
