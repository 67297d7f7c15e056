package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidConfig is returned when the scheduler configuration is unusable
var ErrInvalidConfig = errors.New("invalid scheduler configuration")

// JobNameCompleteBookings identifies the booking completion job in logs and metrics
const JobNameCompleteBookings = "complete_past_bookings"

// BookingCompleter moves finished bookings to completed
type BookingCompleter interface {
	CompletePast(ctx context.Context) (int64, error)
}

// RunObserver is notified after every job run
type RunObserver interface {
	ObserveSchedulerRun(job string, duration time.Duration, err error)
}

// BookingMaintenanceConfig holds configuration for the maintenance scheduler
type BookingMaintenanceConfig struct {
	Enabled bool

	// Interval between two completion runs
	Interval time.Duration

	// JobTimeout bounds a single run
	JobTimeout time.Duration
}

// DefaultBookingMaintenanceConfig returns default configuration
func DefaultBookingMaintenanceConfig() BookingMaintenanceConfig {
	return BookingMaintenanceConfig{
		Enabled:    true,
		Interval:   5 * time.Minute,
		JobTimeout: time.Minute,
	}
}

// BookingMaintenanceScheduler periodically completes bookings whose end has passed
type BookingMaintenanceScheduler struct {
	completer BookingCompleter
	observer  RunObserver
	logger    *zap.Logger
	config    BookingMaintenanceConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewBookingMaintenanceScheduler creates the scheduler; observer may be nil
func NewBookingMaintenanceScheduler(
	completer BookingCompleter,
	observer RunObserver,
	logger *zap.Logger,
	config BookingMaintenanceConfig,
) (*BookingMaintenanceScheduler, error) {
	if config.Enabled && config.Interval <= 0 {
		return nil, ErrInvalidConfig
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultBookingMaintenanceConfig().JobTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingMaintenanceScheduler{
		completer: completer,
		observer:  observer,
		logger:    logger,
		config:    config,
	}, nil
}

// Start runs one completion pass immediately and then one per interval
func (s *BookingMaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Booking maintenance scheduler is disabled")
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Booking maintenance scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run, bounded by ctx
func (s *BookingMaintenanceScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Booking maintenance scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Booking maintenance scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *BookingMaintenanceScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunOnce performs a single completion pass
func (s *BookingMaintenanceScheduler) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.completer.CompletePast(ctx)
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveSchedulerRun(JobNameCompleteBookings, elapsed, err)
	}

	if err != nil {
		s.logger.Error("Failed to complete past bookings", zap.Error(err), zap.Duration("duration", elapsed))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Completed past bookings", zap.Int64("count", n), zap.Duration("duration", elapsed))
	}
	return n, nil
}

func (s *BookingMaintenanceScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	_, _ = s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		}
	}
}
