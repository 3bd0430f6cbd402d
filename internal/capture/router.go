package capture

import (
	"log/slog"
	"sync"

	"github.com/quokkastudio/vcscribe/internal/audio"
	"golang.org/x/sync/semaphore"
)

// Router fans incoming audio packets out to per-speaker capture tasks.
// The first packet from an allowed, unseen speaker starts a task; later
// packets are forwarded. Packets from a speaker already in flight never
// start a second task.
//
// HandlePacket is called from the voice receive goroutine; OnDone
// callbacks fire on task goroutines. The session loop consumes both
// through its event channel.
type Router struct {
	cfg        Config
	newDecoder audio.DecoderFactory
	stt        Transcriber
	sem        *semaphore.Weighted
	maxTasks   int
	allow      func(speakerID string) bool
	onStart    func(speakerID string)
	onDone     func(Result)

	stopIntake chan struct{}

	mu     sync.Mutex
	tasks  map[string]*task
	closed bool
}

type RouterConfig struct {
	Capture                     Config
	MaxTasks                    int
	MaxConcurrentTranscriptions int
	Allow                       func(speakerID string) bool
	OnStart                     func(speakerID string)
	OnDone                      func(Result)
}

func NewRouter(newDecoder audio.DecoderFactory, stt Transcriber, rc RouterConfig) *Router {
	if rc.MaxConcurrentTranscriptions < 1 {
		rc.MaxConcurrentTranscriptions = 1
	}
	return &Router{
		cfg:        rc.Capture,
		newDecoder: newDecoder,
		stt:        stt,
		sem:        semaphore.NewWeighted(int64(rc.MaxConcurrentTranscriptions)),
		maxTasks:   rc.MaxTasks,
		allow:      rc.Allow,
		onStart:    rc.OnStart,
		onDone:     rc.OnDone,
		stopIntake: make(chan struct{}),
		tasks:      make(map[string]*task),
	}
}

func (r *Router) HandlePacket(speakerID string, packet []byte) {
	if speakerID == "" || len(packet) == 0 {
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	t, ok := r.tasks[speakerID]
	if !ok {
		if r.allow != nil && !r.allow(speakerID) {
			r.mu.Unlock()
			return
		}
		if r.maxTasks > 0 && len(r.tasks) >= r.maxTasks {
			r.mu.Unlock()
			slog.Warn("capture task cap reached; dropping speaker audio", "speaker_id", speakerID, "cap", r.maxTasks)
			return
		}
		var err error
		t, err = r.registerTask(speakerID)
		if err != nil {
			r.mu.Unlock()
			slog.Error("failed to start capture task", "speaker_id", speakerID, "error", err)
			return
		}
		r.mu.Unlock()
		// Callbacks and the task goroutine start outside the lock, and the
		// start callback fires before the task can report a result.
		if r.onStart != nil {
			r.onStart(speakerID)
		}
		go t.run(r.stopIntake)
	} else {
		r.mu.Unlock()
	}

	select {
	case t.inbox <- packet:
	default:
		// Inbox full means the task is far behind; dropping one packet
		// is better than blocking the voice receive goroutine.
	}
}

// registerTask must be called with r.mu held.
func (r *Router) registerTask(speakerID string) (*task, error) {
	decoder, err := r.newDecoder()
	if err != nil {
		return nil, err
	}
	t := &task{
		speakerID: speakerID,
		inbox:     make(chan []byte, inboxSize),
		cfg:       r.cfg,
		decoder:   decoder,
		stt:       r.stt,
		sem:       r.sem,
		done: func(res Result) {
			r.finishTask(speakerID, res)
		},
	}
	r.tasks[speakerID] = t
	return t, nil
}

func (r *Router) finishTask(speakerID string, res Result) {
	r.mu.Lock()
	delete(r.tasks, speakerID)
	r.mu.Unlock()
	if r.onDone != nil {
		r.onDone(res)
	}
}

// ActiveCount reports the number of in-flight capture tasks.
func (r *Router) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Close stops packet intake and tells running tasks to finish with the
// audio they already have. It does not wait for them; the finalize
// barrier does.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()
	close(r.stopIntake)
}
