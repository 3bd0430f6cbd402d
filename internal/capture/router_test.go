package capture

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quokkastudio/vcscribe/internal/audio"
)

// fakeDecoder turns every packet into 0.1s of silence-valued PCM.
type fakeDecoder struct {
	err error
}

func (d *fakeDecoder) Decode(packet []byte) ([]int16, error) {
	if d.err != nil {
		return nil, d.err
	}
	return make([]int16, audio.SampleRate*audio.Channels/10), nil
}

type fakeTranscriber struct {
	mu    sync.Mutex
	text  string
	err   error
	paths []string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, wavPath string) (string, error) {
	f.mu.Lock()
	f.paths = append(f.paths, wavPath)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func testRouter(t *testing.T, stt Transcriber, decErr error, mutate func(*RouterConfig)) (*Router, chan Result) {
	t.Helper()
	results := make(chan Result, 16)
	rc := RouterConfig{
		Capture: Config{
			TempDir:           t.TempDir(),
			SilenceTimeout:    50 * time.Millisecond,
			MinSegmentSeconds: 0.25,
			MaxSegmentSeconds: 600,
			TranscribeTimeout: time.Second,
		},
		MaxTasks:                    16,
		MaxConcurrentTranscriptions: 2,
		OnDone:                      func(res Result) { results <- res },
	}
	if mutate != nil {
		mutate(&rc)
	}
	r := NewRouter(func() (audio.Decoder, error) {
		return &fakeDecoder{err: decErr}, nil
	}, stt, rc)
	t.Cleanup(r.Close)
	return r, results
}

func waitResult(t *testing.T, results chan Result) Result {
	t.Helper()
	select {
	case res := <-results:
		return res
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for capture result")
		return Result{}
	}
}

func TestRouter_SegmentEndsOnSilence(t *testing.T) {
	stt := &fakeTranscriber{text: "hello there"}
	r, results := testRouter(t, stt, nil, nil)

	for range 5 {
		r.HandlePacket("speaker-1", []byte{0x01})
	}
	res := waitResult(t, results)

	if res.SpeakerID != "speaker-1" {
		t.Fatalf("speaker = %q, want speaker-1", res.SpeakerID)
	}
	if res.Err != nil || res.Discarded {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Text != "hello there" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Seconds < 0.45 || res.Seconds > 0.55 {
		t.Fatalf("seconds = %v, want about 0.5", res.Seconds)
	}
	if r.ActiveCount() != 0 {
		t.Fatalf("active count = %d after completion", r.ActiveCount())
	}
}

func TestRouter_OneTaskPerSpeaker(t *testing.T) {
	var mu sync.Mutex
	starts := 0
	stt := &fakeTranscriber{text: "x"}
	r, results := testRouter(t, stt, nil, func(rc *RouterConfig) {
		rc.OnStart = func(string) {
			mu.Lock()
			starts++
			mu.Unlock()
		}
	})

	for range 10 {
		r.HandlePacket("speaker-1", []byte{0x01})
	}
	waitResult(t, results)

	mu.Lock()
	defer mu.Unlock()
	if starts != 1 {
		t.Fatalf("started %d tasks for one speaker, want 1", starts)
	}
}

func TestRouter_ShortSegmentDiscarded(t *testing.T) {
	stt := &fakeTranscriber{text: "should not be called"}
	r, results := testRouter(t, stt, nil, nil)

	r.HandlePacket("speaker-1", []byte{0x01})
	res := waitResult(t, results)

	if !res.Discarded {
		t.Fatalf("result not discarded: %+v", res)
	}
	stt.mu.Lock()
	defer stt.mu.Unlock()
	if len(stt.paths) != 0 {
		t.Fatal("transcriber was called for a discarded segment")
	}
}

func TestRouter_TempFileRemoved(t *testing.T) {
	stt := &fakeTranscriber{text: "ok"}
	r, results := testRouter(t, stt, nil, nil)

	for range 5 {
		r.HandlePacket("speaker-1", []byte{0x01})
	}
	waitResult(t, results)

	stt.mu.Lock()
	paths := stt.paths
	stt.mu.Unlock()
	if len(paths) != 1 {
		t.Fatalf("transcriber called %d times, want 1", len(paths))
	}
	if _, err := os.Stat(paths[0]); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("segment file %s still exists (err=%v)", paths[0], err)
	}
}

func TestRouter_DecodeFailure(t *testing.T) {
	stt := &fakeTranscriber{text: "unused"}
	r, results := testRouter(t, stt, errors.New("corrupt packet"), nil)

	for range 5 {
		r.HandlePacket("speaker-1", []byte{0x01})
	}
	res := waitResult(t, results)

	if res.FailKind != FailDecode {
		t.Fatalf("fail kind = %q, want %q (result %+v)", res.FailKind, FailDecode, res)
	}
	if !strings.Contains(res.Err.Error(), "failed to decode") {
		t.Fatalf("err = %v", res.Err)
	}
}

func TestRouter_TranscribeFailure(t *testing.T) {
	stt := &fakeTranscriber{err: errors.New("engine exploded")}
	r, results := testRouter(t, stt, nil, nil)

	for range 5 {
		r.HandlePacket("speaker-1", []byte{0x01})
	}
	res := waitResult(t, results)

	if res.FailKind != FailTranscribe {
		t.Fatalf("fail kind = %q, want %q", res.FailKind, FailTranscribe)
	}
	if res.Seconds < 0.45 {
		t.Fatalf("seconds lost on transcribe failure: %v", res.Seconds)
	}
}

func TestRouter_AllowFilterBlocksSpeaker(t *testing.T) {
	stt := &fakeTranscriber{text: "x"}
	r, _ := testRouter(t, stt, nil, func(rc *RouterConfig) {
		rc.Allow = func(id string) bool { return id != "bot-7" }
	})

	r.HandlePacket("bot-7", []byte{0x01})
	if r.ActiveCount() != 0 {
		t.Fatal("task started for disallowed speaker")
	}
	r.HandlePacket("human-1", []byte{0x01})
	if r.ActiveCount() != 1 {
		t.Fatal("task not started for allowed speaker")
	}
}

func TestRouter_TaskCap(t *testing.T) {
	stt := &fakeTranscriber{text: "x"}
	r, _ := testRouter(t, stt, nil, func(rc *RouterConfig) {
		rc.MaxTasks = 2
		rc.Capture.SilenceTimeout = time.Second
	})

	r.HandlePacket("a", []byte{0x01})
	r.HandlePacket("b", []byte{0x01})
	r.HandlePacket("c", []byte{0x01})
	if got := r.ActiveCount(); got != 2 {
		t.Fatalf("active count = %d, want 2", got)
	}
}

func TestRouter_CloseFinishesTasks(t *testing.T) {
	stt := &fakeTranscriber{text: "tail"}
	r, results := testRouter(t, stt, nil, func(rc *RouterConfig) {
		rc.Capture.SilenceTimeout = 10 * time.Second
	})

	for range 5 {
		r.HandlePacket("speaker-1", []byte{0x01})
	}
	r.Close()
	res := waitResult(t, results)

	if res.Err != nil || res.Discarded {
		t.Fatalf("unexpected result after close: %+v", res)
	}
	if res.Text != "tail" {
		t.Fatalf("text = %q", res.Text)
	}

	r.HandlePacket("speaker-2", []byte{0x01})
	if r.ActiveCount() != 0 {
		t.Fatal("router accepted packets after close")
	}
}
