package adsb

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestRetryWithBackoff tests basic retry logic.
func TestRetryWithBackoff(t *testing.T) {
	fast := RetryConfig{
		MaxRetries:   3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}

	t.Run("Success on first attempt", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(context.Background(), fast, func(context.Context) error {
			attempts++
			return nil
		})

		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})

	t.Run("Success after retries", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(context.Background(), fast, func(context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("temporary error")
			}
			return nil
		})

		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if attempts != 3 {
			t.Errorf("Expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("Max retries exceeded", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(context.Background(), fast, func(context.Context) error {
			attempts++
			return errors.New("persistent error")
		})

		if err == nil {
			t.Error("Expected error after max retries")
		}
		// Should attempt: initial + 3 retries = 4 total
		if attempts != 4 {
			t.Errorf("Expected 4 attempts (initial + 3 retries), got %d", attempts)
		}
	})

	t.Run("Context cancellation", func(t *testing.T) {
		attempts := 0
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := RetryWithBackoff(ctx, DefaultRetryConfig(), func(context.Context) error {
			attempts++
			return errors.New("error")
		})

		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled error, got: %v", err)
		}
		if attempts != 0 {
			t.Errorf("Expected no attempt on a cancelled context, got %d", attempts)
		}
	})

	t.Run("Context timeout during retry", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		config := RetryConfig{
			MaxRetries:   10,
			InitialDelay: 100 * time.Millisecond, // Longer than timeout
			MaxDelay:     time.Second,
			Multiplier:   2.0,
		}

		start := time.Now()
		err := RetryWithBackoff(ctx, config, func(context.Context) error {
			return errors.New("error")
		})
		elapsed := time.Since(start)

		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected deadline error, got: %v", err)
		}
		if elapsed > 200*time.Millisecond {
			t.Errorf("Expected quick timeout, took %v", elapsed)
		}
	})

	t.Run("Fixed interval with multiplier 1", func(t *testing.T) {
		var delays []time.Duration
		config := RetryConfig{
			MaxRetries:   3,
			InitialDelay: 5 * time.Millisecond,
			Multiplier:   1.0,
			OnRetry: func(_ int, _ error, delay time.Duration) {
				delays = append(delays, delay)
			},
		}

		_ = RetryWithBackoff(context.Background(), config, func(context.Context) error {
			return errors.New("error")
		})

		if len(delays) != 3 {
			t.Fatalf("Expected 3 retry notifications, got %d", len(delays))
		}
		for i, d := range delays {
			if d != 5*time.Millisecond {
				t.Errorf("Delay %d: expected 5ms, got %v", i, d)
			}
		}
	})

	t.Run("Rate limit hint overrides backoff", func(t *testing.T) {
		var got time.Duration
		config := RetryConfig{
			MaxRetries:        1,
			InitialDelay:      time.Millisecond,
			Multiplier:        2.0,
			RespectRetryAfter: true,
			OnRetry: func(_ int, _ error, delay time.Duration) {
				got = delay
			},
		}

		attempts := 0
		err := RetryWithBackoff(context.Background(), config, func(context.Context) error {
			attempts++
			if attempts == 1 {
				return &RateLimitError{StatusCode: 429, RetryAfter: 20 * time.Millisecond}
			}
			return nil
		})

		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if got != 20*time.Millisecond {
			t.Errorf("Expected Retry-After delay 20ms, got %v", got)
		}
	})
}

func TestBackoffDelay(t *testing.T) {
	cfg := RetryConfig{
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		Multiplier:   2.0,
	}

	want := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		50 * time.Millisecond, // capped
		50 * time.Millisecond,
	}
	for attempt, w := range want {
		if got := backoffDelay(cfg, attempt); got != w {
			t.Errorf("attempt %d: expected %v, got %v", attempt, w, got)
		}
	}
}

// TestDefaultRetryConfig tests default configuration.
func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries 3, got %d", config.MaxRetries)
	}
	if config.InitialDelay != time.Second {
		t.Errorf("Expected InitialDelay 1s, got %v", config.InitialDelay)
	}
	if config.MaxDelay != 60*time.Second {
		t.Errorf("Expected MaxDelay 60s, got %v", config.MaxDelay)
	}
	if config.Multiplier != 2.0 {
		t.Errorf("Expected Multiplier 2.0, got %f", config.Multiplier)
	}
}

// TestRetryPreservesError tests that original error is returned.
func TestRetryPreservesError(t *testing.T) {
	expectedErr := errors.New("specific error message")

	config := RetryConfig{
		MaxRetries:   2,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}
	err := RetryWithBackoff(context.Background(), config, func(context.Context) error {
		return expectedErr
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected error to be preserved, got: %v", err)
	}
}
