package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"record-ingest-backend/config"
	"record-ingest-backend/internal/repository"
	"record-ingest-backend/internal/service"
)

// Scheduler runs file ingestion on a fixed interval. The interval counts from
// process start and is not aligned to the wall clock.
type Scheduler struct {
	cron       *cron.Cron
	ingest     service.IngestService
	runOnStart bool
	interval   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
}

func New(ingest service.IngestService, interval time.Duration, runOnStart bool) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("ingest interval must be positive, got %s", interval)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:       cron.New(),
		ingest:     ingest,
		runOnStart: runOnStart,
		interval:   interval,
		ctx:        ctx,
		cancel:     cancel,
	}

	schedule := "@every " + interval.String()
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("add cron job %q: %w", schedule, err)
	}
	log.Info().Str("schedule", schedule).Msg("Scheduled data file ingestion job")
	return s, nil
}

// Start begins the periodic schedule and, if configured, one immediate run.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	log.Info().Dur("interval", s.interval).Msg("Starting ingestion scheduler")
	if s.runOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run()
		}()
	}
	s.cron.Start()
}

// Stop cancels any in-flight run and waits for it and the cron scheduler to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}

	log.Info().Msg("Stopping ingestion scheduler...")
	cronDone := s.cron.Stop()
	runsDone := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(runsDone)
	}()

	for _, done := range []<-chan struct{}{cronDone.Done(), runsDone} {
		select {
		case <-done:
		case <-ctx.Done():
			log.Error().Msg("Context cancelled while waiting for ingestion scheduler to stop.")
			return ctx.Err()
		}
	}
	log.Info().Msg("Ingestion scheduler stopped gracefully.")
	return nil
}

func (s *Scheduler) run() {
	err := s.ingest.ProcessFile(s.ctx)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrRunInProgress):
		log.Warn().Msg("Previous ingestion run still in progress, skipped this trigger")
	case errors.Is(err, context.Canceled):
		log.Info().Msg("Ingestion run cancelled")
	default:
		log.Error().Err(err).Msg("Error during scheduled data file ingestion")
	}
}

// NewScheduler wires the scheduler into the application lifecycle. The store
// is connected in the background once the app starts; scheduling only begins
// after that connection succeeds, and a failed connection leaves it disabled
// while the HTTP server keeps running.
func NewScheduler(lc fx.Lifecycle, cfg *config.Config, recordStore repository.RecordStore, ingest service.IngestService) (*Scheduler, error) {
	s, err := New(ingest, cfg.Ingest.Interval, cfg.Ingest.RunOnStart)
	if err != nil {
		return nil, err
	}

	var connectWG sync.WaitGroup
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			connectWG.Add(1)
			go func() {
				defer connectWG.Done()
				s.activate(recordStore)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.cancel()
			connectWG.Wait()
			return s.Stop(ctx)
		},
	})
	return s, nil
}

func (s *Scheduler) activate(recordStore repository.RecordStore) {
	if err := recordStore.Connect(s.ctx); err != nil {
		log.Error().Err(err).Str("store", recordStore.Name()).Msg("Error connecting to store, periodic ingestion disabled")
		return
	}
	if s.ctx.Err() != nil {
		return
	}
	s.Start()
}
