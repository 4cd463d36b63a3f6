package services

import (
	"context"
	"errors"
	"time"

	"github.com/foodlogr/backend/internal/model"
)

// Store calls are retried a bounded number of times with exponential
// backoff before a storage fault surfaces to the caller. Only
// model.ErrStorageUnavailable is retryable; every other error returns
// on the first attempt.
const (
	retryAttempts  = 3
	retryBaseDelay = 50 * time.Millisecond
)

func withRetry(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, model.ErrStorageUnavailable) || attempt == retryAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func retryValue[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var out T
	err := withRetry(ctx, func() error {
		var ferr error
		out, ferr = fn()
		return ferr
	})
	return out, err
}
