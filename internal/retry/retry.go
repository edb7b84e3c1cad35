// Package retry provides a fixed-interval retry helper and a
// poll-with-timeout primitive, both driven by an injectable Clock.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrTimeout is returned by Poll when the condition never held before the
// deadline.
var ErrTimeout = errors.New("retry: timed out")

// Policy configures Do. Every attempt after the first waits Delay.
type Policy struct {
	Attempts int
	Delay    time.Duration
	Clock    Clock
	Logger   *slog.Logger
	// Name labels log lines.
	Name string
}

func (p *Policy) defaults() {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Clock == nil {
		p.Clock = SystemClock{}
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Name == "" {
		p.Name = "operation"
	}
}

// Do runs op up to p.Attempts times with a fixed delay between attempts.
// The last error is returned when every attempt fails.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p.defaults()
	log := p.Logger

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		log.DebugContext(ctx, "retry: attempt starting", "name", p.Name, "attempt", attempt)
		v, err := op(ctx)
		if err == nil {
			log.DebugContext(ctx, "retry: attempt succeeded", "name", p.Name, "attempt", attempt)
			return v, nil
		}
		lastErr = err
		log.WarnContext(ctx, "retry: attempt failed",
			"name", p.Name,
			"attempt", attempt,
			"max_attempts", p.Attempts,
			"error", err)

		if attempt == p.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, errors.Join(lastErr, ctx.Err())
		case <-p.Clock.After(p.Delay):
		}
	}

	log.ErrorContext(ctx, "retry: max attempts reached", "name", p.Name, "attempts", p.Attempts)
	return zero, fmt.Errorf("retry: %s failed after %d attempts: %w", p.Name, p.Attempts, lastErr)
}

// PollPolicy configures Poll.
type PollPolicy struct {
	Interval time.Duration
	Timeout  time.Duration
	Clock    Clock
}

// Poll evaluates cond immediately and then every Interval until it reports
// true, it returns an error, or Timeout elapses. A deadline miss yields
// ErrTimeout.
func Poll(ctx context.Context, p PollPolicy, cond func(ctx context.Context) (bool, error)) error {
	if p.Clock == nil {
		p.Clock = SystemClock{}
	}
	if p.Interval <= 0 {
		p.Interval = time.Second
	}
	deadline := p.Clock.Now().Add(p.Timeout)

	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !p.Clock.Now().Add(p.Interval).Before(deadline) {
			return ErrTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.Clock.After(p.Interval):
		}
	}
}
