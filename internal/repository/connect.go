package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"

	"record-ingest-backend/config"
)

var (
	connectInitialInterval = 2 * time.Second
	connectMaxInterval     = 15 * time.Second
)

// ConnectWithRetry runs attempt once plus cfg.ConnectRetries more times with
// exponential backoff. Each attempt gets its own cfg.ConnectTimeout deadline.
func ConnectWithRetry(ctx context.Context, storeName string, cfg config.StoreConfig, attempt func(ctx context.Context) error) error {
	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}

	attemptNo := 0
	operation := func() error {
		attemptNo++
		attemptCtx := ctx
		if cfg.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
			defer cancel()
		}
		if err := attempt(attemptCtx); err != nil {
			log.Warn().Err(err).Str("store", storeName).Int("attempt", attemptNo).Msg("Store connection attempt failed")
			return err
		}
		return nil
	}

	connectBackoff := backoff.NewExponentialBackOff()
	connectBackoff.InitialInterval = connectInitialInterval
	connectBackoff.MaxInterval = connectMaxInterval
	connectBackoff.MaxElapsedTime = 0

	log.Info().Str("store", storeName).Int("retries", retries).Msg("Connecting to store")
	var policy backoff.BackOff = &backoff.StopBackOff{}
	if retries > 0 {
		// WithMaxRetries treats 0 as unlimited.
		policy = backoff.WithMaxRetries(connectBackoff, uint64(retries))
	}
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return fmt.Errorf("connect to %s: %w", storeName, err)
	}
	log.Info().Str("store", storeName).Msg("Connected to store")
	return nil
}
