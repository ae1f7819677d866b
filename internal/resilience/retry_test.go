package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastCfg() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	err := Do(context.Background(), DefaultRetryConfig(), func(_ context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_SuccessAfterRetry(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastCfg(), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(errors.New("temporary"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastCfg(), func(_ context.Context) error {
		calls++
		return NewTransientError(errors.New("always fails"))
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_NonTransientError_NoRetry(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastCfg(), func(_ context.Context) error {
		calls++
		return errors.New("schema violation")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_ShouldRetryOverride(t *testing.T) {
	var calls int
	cfg := fastCfg()
	cfg.ShouldRetry = func(error) bool { return true }

	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return errors.New("not normally transient")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	err := Do(ctx, fastCfg(), func(_ context.Context) error {
		calls++
		cancel()
		return NewTransientError(errors.New("temporary"))
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call after cancellation, got %d", calls)
	}
}

func TestDo_OnRetryCallback(t *testing.T) {
	var retries []int
	cfg := fastCfg()
	cfg.OnRetry = func(attempt int, _ error) {
		retries = append(retries, attempt)
	}

	_ = Do(context.Background(), cfg, func(_ context.Context) error {
		return NewTransientError(errors.New("always fails"))
	})
	if len(retries) != 2 {
		t.Errorf("expected 2 retry callbacks, got %d", len(retries))
	}
}

func TestComputeBackoff_CapsAtMax(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     300 * time.Millisecond,
		Multiplier:     10,
		JitterFraction: 0,
	})
	if d := computeBackoff(5, cfg); d != 300*time.Millisecond {
		t.Errorf("expected cap at 300ms, got %v", d)
	}
}

func TestFromRetryConfig_Defaults(t *testing.T) {
	cfg := FromRetryConfig(0, 0, 0)
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected default 3 attempts, got %d", cfg.MaxAttempts)
	}
	cfg = FromRetryConfig(5, 50, 1000)
	if cfg.MaxAttempts != 5 || cfg.InitialBackoff != 50*time.Millisecond || cfg.MaxBackoff != time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
