package store

import (
	"context"
	"errors"
	"testing"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
)

func TestWithRetry(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		failures  []error
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{"succeeds first time", nil, 3, 1, nil},
		{"retries conflict then succeeds", []error{apperror.ErrConflict}, 3, 2, nil},
		{"retries duplicate number", []error{apperror.ErrDuplicateNumber, apperror.ErrDuplicateNumber}, 3, 3, nil},
		{"gives up after attempts", []error{apperror.ErrConflict, apperror.ErrConflict, apperror.ErrConflict}, 3, 3, apperror.ErrConflict},
		{"does not retry business errors", []error{apperror.ErrInsufficientStock}, 3, 1, apperror.ErrInsufficientStock},
		{"does not retry unknown errors", []error{boom}, 3, 1, boom},
		{"zero attempts still runs once", []error{apperror.ErrConflict}, 0, 1, apperror.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), RetryPolicy{Attempts: tt.attempts}, func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) && !(err == nil && tt.wantErr == nil) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetry(ctx, RetryPolicy{Attempts: 5, Backoff: 1}, func() error {
		calls++
		return apperror.ErrConflict
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}
