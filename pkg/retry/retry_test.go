package retry

import (
	"context"
	"testing"
	"time"

	errs "tagsignal/pkg/errors"
)

func fastConfig() *Config {
	cfg := DefaultConfig()
	cfg.Backoff = &ConstantBackoff{Delay: time.Millisecond}
	return cfg
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := Do(func() error {
		attempts++
		if attempts < 3 {
			return errs.New(errs.ErrorTypeNavigation, "flaky")
		}
		return nil
	}, fastConfig())

	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnTerminalError(t *testing.T) {
	attempts := 0
	err := Do(func() error {
		attempts++
		return errs.New(errs.ErrorTypeAuth, "rejected")
	}, fastConfig())

	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Errorf("terminal errors must not be retried, got %d attempts", attempts)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 2

	attempts := 0
	err := Do(func() error {
		attempts++
		return errs.New(errs.ErrorTypeExtraction, "still broken")
	}, cfg)

	if err == nil {
		t.Fatal("expected an error after exhausting attempts")
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestDoRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastConfig()
	cfg.Context = ctx

	err := Do(func() error {
		return errs.New(errs.ErrorTypeNavigation, "flaky")
	}, cfg)

	if err == nil {
		t.Fatal("expected cancellation to surface")
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(func() (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errs.New(errs.ErrorTypeRateLimit, "throttled")
		}
		return 42, nil
	}, fastConfig())

	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestWait(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("zero delay should return immediately, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, time.Minute); err == nil {
		t.Error("expected cancelled context to interrupt the wait")
	}
}
