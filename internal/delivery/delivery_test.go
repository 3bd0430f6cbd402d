package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockSender struct {
	name string
	err  error

	mu    sync.Mutex
	calls int
}

func (m *mockSender) Name() string { return m.name }

func (m *mockSender) Send(_ context.Context, _ string, _ Payload) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.err
}

func (m *mockSender) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestDispatcher(targets ...Target) *Dispatcher {
	d := NewDispatcher(targets)
	d.sleep = func(time.Duration) {}
	return d
}

func TestDispatchFailingTargetDoesNotBlockOthers(t *testing.T) {
	failing := &mockSender{name: "telegram", err: errors.New("api down")}
	healthy := &mockSender{name: "slack"}
	d := newTestDispatcher(
		Target{Sender: failing, Policy: Policy{MaxRetries: 2}},
		Target{Sender: healthy, Policy: Policy{MaxRetries: 2}},
	)

	if err := d.Dispatch(context.Background(), "report", Payload{}); err != nil {
		t.Fatalf("optional target failure must not escalate: %v", err)
	}
	if healthy.callCount() != 1 {
		t.Fatalf("healthy target should be attempted once, got %d", healthy.callCount())
	}
	if failing.callCount() != 3 {
		t.Fatalf("failing target should be tried 1+2 times, got %d", failing.callCount())
	}
}

func TestDispatchRequiredTargetFailureEscalates(t *testing.T) {
	failing := &mockSender{name: "webhook", err: errors.New("500")}
	healthy := &mockSender{name: "slack"}
	d := newTestDispatcher(
		Target{Sender: failing, Policy: Policy{Required: true, MaxRetries: 1}},
		Target{Sender: healthy, Policy: Policy{MaxRetries: 1}},
	)

	err := d.Dispatch(context.Background(), "report", Payload{})
	if err == nil {
		t.Fatal("required target failure must be reported upward")
	}
	if healthy.callCount() != 1 {
		t.Fatalf("other targets must still be attempted, got %d calls", healthy.callCount())
	}
}

func TestDispatchBacksOffExponentially(t *testing.T) {
	failing := &mockSender{name: "telegram", err: errors.New("flood wait")}
	d := NewDispatcher([]Target{{Sender: failing, Policy: Policy{MaxRetries: 3, RetryBase: 100 * time.Millisecond}}})
	var delays []time.Duration
	d.sleep = func(dur time.Duration) { delays = append(delays, dur) }

	_ = d.Dispatch(context.Background(), "report", Payload{})
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("expected %d backoff sleeps, got %d", len(want), len(delays))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("backoff %d: expected %v, got %v", i, want[i], delays[i])
		}
	}
}

func TestDispatchNoTargets(t *testing.T) {
	if err := newTestDispatcher().Dispatch(context.Background(), "report", Payload{}); err != nil {
		t.Fatalf("empty target list must be a no-op, got %v", err)
	}
}
