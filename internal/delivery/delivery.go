// Package delivery fans a finalized session report out to the configured
// destinations. Targets are independent: retries, timeouts and failures of
// one never block another.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Payload is the machine-readable companion of the rendered report.
type Payload struct {
	SchemaVersion   int      `json:"schema_version"`
	SessionID       string   `json:"session_id"`
	GuildID         string   `json:"guild_id"`
	GuildName       string   `json:"guild_name"`
	ChannelID       string   `json:"channel_id"`
	ChannelName     string   `json:"channel_name"`
	StartAt         string   `json:"start_at"`
	EndAt           string   `json:"end_at"`
	DurationSeconds int64    `json:"duration_seconds"`
	Participants    []string `json:"participants"`
	SegmentCount    int      `json:"segment_count"`
	DroppedEntries  int      `json:"dropped_entries"`
	Transcript      string   `json:"transcript"`
	Report          string   `json:"report"`
}

const PayloadSchemaVersion = 1

// Sender is one destination transport. Implementations own their size
// limits and formatting rules.
type Sender interface {
	Name() string
	Send(ctx context.Context, report string, payload Payload) error
}

type Policy struct {
	Required   bool
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
}

type Target struct {
	Sender Sender
	Policy Policy
}

type Dispatcher struct {
	targets []Target
	sleep   func(time.Duration)
}

func NewDispatcher(targets []Target) *Dispatcher {
	return &Dispatcher{targets: targets, sleep: time.Sleep}
}

// Dispatch sends the report to every target concurrently. It returns an
// error only when a required target has exhausted its retries; optional
// target failures are logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, report string, payload Payload) error {
	if len(d.targets) == 0 {
		slog.Info("no delivery targets configured; skipping dispatch")
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		required []error
	)
	for _, target := range d.targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			err := d.sendWithRetry(ctx, t, report, payload)
			if err == nil {
				slog.Info("delivery succeeded", "target", t.Sender.Name())
				return
			}
			slog.Error("delivery failed after retries", "target", t.Sender.Name(), "required", t.Policy.Required, "error", err)
			if t.Policy.Required {
				mu.Lock()
				required = append(required, fmt.Errorf("target %s: %w", t.Sender.Name(), err))
				mu.Unlock()
			}
		}(target)
	}
	wg.Wait()

	if len(required) > 0 {
		return fmt.Errorf("required delivery failed: %w", errors.Join(required...))
	}
	return nil
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, t Target, report string, payload Payload) error {
	var lastErr error
	for attempt := 0; attempt <= t.Policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := t.Policy.RetryBase << (attempt - 1)
			slog.Warn("retrying delivery", "target", t.Sender.Name(), "attempt", attempt, "delay", delay, "error", lastErr)
			d.sleep(delay)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		attemptCtx := ctx
		var cancel context.CancelFunc
		if t.Policy.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, t.Policy.Timeout)
		}
		err := t.Sender.Send(attemptCtx, report, payload)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}
