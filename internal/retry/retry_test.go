package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestDo_SucceedsOnLastAttempt(t *testing.T) {
	clock := NewFakeClock(epoch)
	calls := 0
	successes := 0

	v, err := DoValue(context.Background(), Policy{Attempts: 3, Delay: 5 * time.Second, Clock: clock},
		func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("boom")
			}
			successes++
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("DoValue: %v", err)
	}
	if v != "ok" {
		t.Errorf("value: got %q, want %q", v, "ok")
	}
	if successes != 1 {
		t.Errorf("successes: got %d, want 1", successes)
	}
	delays := clock.Delays()
	if len(delays) != 2 {
		t.Fatalf("delays: got %d, want 2", len(delays))
	}
	for i, d := range delays {
		if d != 5*time.Second {
			t.Errorf("delay[%d]: got %v, want 5s", i, d)
		}
	}
}

func TestDo_PropagatesLastError(t *testing.T) {
	clock := NewFakeClock(epoch)
	errLast := errors.New("third")
	calls := 0

	err := Do(context.Background(), Policy{Attempts: 3, Delay: time.Second, Clock: clock},
		func(ctx context.Context) error {
			calls++
			if calls == 3 {
				return errLast
			}
			return errors.New("earlier")
		})
	if !errors.Is(err, errLast) {
		t.Fatalf("err: got %v, want wrapping %v", err, errLast)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
	if got := len(clock.Delays()); got != 2 {
		t.Errorf("delays: got %d, want 2 (none after final attempt)", got)
	}
}

func TestDo_FirstAttemptNoDelay(t *testing.T) {
	clock := NewFakeClock(epoch)
	err := Do(context.Background(), Policy{Attempts: 3, Delay: time.Second, Clock: clock},
		func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	if got := len(clock.Delays()); got != 0 {
		t.Errorf("delays: got %d, want 0", got)
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), Policy{Clock: NewFakeClock(epoch)}, func(ctx context.Context) error {
		calls++
		return errors.New("x")
	})
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// SystemClock with a long delay: only ctx.Done can unblock the select.
	err := Do(ctx, Policy{Attempts: 2, Delay: time.Hour}, func(ctx context.Context) error {
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err: got %v, want context.Canceled", err)
	}
}

func TestPoll_ImmediateSuccess(t *testing.T) {
	clock := NewFakeClock(epoch)
	err := Poll(context.Background(), PollPolicy{Interval: time.Second, Timeout: time.Minute, Clock: clock},
		func(ctx context.Context) (bool, error) { return true, nil })
	if err != nil {
		t.Fatal(err)
	}
	if len(clock.Delays()) != 0 {
		t.Error("expected no waits")
	}
}

func TestPoll_SucceedsAfterWaits(t *testing.T) {
	clock := NewFakeClock(epoch)
	checks := 0
	err := Poll(context.Background(), PollPolicy{Interval: time.Second, Timeout: time.Minute, Clock: clock},
		func(ctx context.Context) (bool, error) {
			checks++
			return checks == 4, nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(clock.Delays()); got != 3 {
		t.Errorf("waits: got %d, want 3", got)
	}
}

func TestPoll_Timeout(t *testing.T) {
	clock := NewFakeClock(epoch)
	checks := 0
	err := Poll(context.Background(), PollPolicy{Interval: time.Second, Timeout: 60 * time.Second, Clock: clock},
		func(ctx context.Context) (bool, error) {
			checks++
			return false, nil
		})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err: got %v, want ErrTimeout", err)
	}
	if checks != 60 {
		t.Errorf("checks: got %d, want 60", checks)
	}
	if elapsed := clock.Now().Sub(epoch); elapsed != 59*time.Second {
		t.Errorf("elapsed: got %v, want 59s", elapsed)
	}
}

func TestPoll_ConditionError(t *testing.T) {
	errCond := errors.New("page gone")
	err := Poll(context.Background(), PollPolicy{Interval: time.Second, Timeout: time.Minute, Clock: NewFakeClock(epoch)},
		func(ctx context.Context) (bool, error) { return false, errCond })
	if !errors.Is(err, errCond) {
		t.Fatalf("err: got %v, want %v", err, errCond)
	}
}
