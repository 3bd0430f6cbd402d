// Package capture owns the per-speaker audio pipeline: one task per
// currently-speaking participant, from first packet to a silence-bounded
// segment handed off to transcription.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/quokkastudio/vcscribe/internal/audio"
	"golang.org/x/sync/semaphore"
)

const inboxSize = 256

// Failure kinds let the health model tell a broken decoder apart from a
// broken transcription engine.
const (
	FailDecode     = "decode"
	FailTranscribe = "transcribe"
)

// Result is the single, always-produced outcome of one capture task.
type Result struct {
	SpeakerID string
	Seconds   float64
	Text      string
	Discarded bool
	Err       error
	FailKind  string
	EndedAt   time.Time
}

type Config struct {
	TempDir           string
	SilenceTimeout    time.Duration
	MinSegmentSeconds float64
	MaxSegmentSeconds int
	TranscribeTimeout time.Duration
}

type task struct {
	speakerID string
	inbox     chan []byte
	cfg       Config
	decoder   audio.Decoder
	stt       Transcriber
	sem       *semaphore.Weighted
	done      func(Result)
}

// Transcriber mirrors transcriber.Transcriber; redeclared here so the
// capture package has no dependency direction on the adapter wiring.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// run drains the inbox into a temp WAV until silence, the stop signal or
// the max segment cap ends the segment, then transcribes and reports.
// Temporary storage is released on every exit path.
func (t *task) run(stop <-chan struct{}) {
	writer, path, err := t.openWav()
	if err != nil {
		t.done(Result{SpeakerID: t.speakerID, Err: err, FailKind: FailDecode, EndedAt: time.Now()})
		return
	}
	defer func() {
		_ = os.Remove(path)
	}()

	decodeFailures := 0
	timer := time.NewTimer(t.cfg.SilenceTimeout)
	defer timer.Stop()

recvLoop:
	for {
		select {
		case packet := <-t.inbox:
			samples, err := t.decoder.Decode(packet)
			if err != nil {
				decodeFailures++
				continue
			}
			if err := writer.WriteSamples(samples); err != nil {
				decodeFailures++
				continue
			}
			if t.cfg.MaxSegmentSeconds > 0 && writer.Seconds() >= float64(t.cfg.MaxSegmentSeconds) {
				slog.Warn("segment hit max duration; closing early", "speaker_id", t.speakerID, "seconds", writer.Seconds())
				break recvLoop
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(t.cfg.SilenceTimeout)
		case <-timer.C:
			break recvLoop
		case <-stop:
			t.drainInbox(writer, &decodeFailures)
			break recvLoop
		}
	}

	seconds := writer.Seconds()
	if err := writer.Close(); err != nil {
		t.done(Result{SpeakerID: t.speakerID, Seconds: seconds, Err: err, FailKind: FailDecode, EndedAt: time.Now()})
		return
	}
	if seconds == 0 && decodeFailures > 0 {
		t.done(Result{
			SpeakerID: t.speakerID,
			Err:       fmt.Errorf("all %d packets failed to decode", decodeFailures),
			FailKind:  FailDecode,
			EndedAt:   time.Now(),
		})
		return
	}
	if seconds < t.cfg.MinSegmentSeconds {
		t.done(Result{SpeakerID: t.speakerID, Seconds: seconds, Discarded: true, EndedAt: time.Now()})
		return
	}

	text, err := t.transcribe(path)
	if err != nil {
		t.done(Result{SpeakerID: t.speakerID, Seconds: seconds, Err: err, FailKind: FailTranscribe, EndedAt: time.Now()})
		return
	}
	t.done(Result{SpeakerID: t.speakerID, Seconds: seconds, Text: text, EndedAt: time.Now()})
}

// drainInbox flushes packets that arrived before intake stopped, so a
// forced segment end keeps the audio it already received.
func (t *task) drainInbox(writer *audio.WavWriter, decodeFailures *int) {
	for {
		select {
		case packet := <-t.inbox:
			samples, err := t.decoder.Decode(packet)
			if err != nil {
				*decodeFailures++
				continue
			}
			if err := writer.WriteSamples(samples); err != nil {
				*decodeFailures++
			}
		default:
			return
		}
	}
}

func (t *task) openWav() (*audio.WavWriter, string, error) {
	f, err := os.CreateTemp(t.cfg.TempDir, "segment-*.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create segment temp file: %w", err)
	}
	path := f.Name()
	_ = f.Close()
	writer, err := audio.NewWavWriter(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, "", err
	}
	return writer, path, nil
}

// transcribe runs under its own deadline, detached from the session: the
// finalize barrier, not a cancellation, decides whether the result is
// still wanted.
func (t *task) transcribe(path string) (string, error) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if t.cfg.TranscribeTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, t.cfg.TranscribeTimeout)
		defer cancel()
	}
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire transcription slot: %w", err)
	}
	defer t.sem.Release(1)
	return t.stt.Transcribe(ctx, path)
}
