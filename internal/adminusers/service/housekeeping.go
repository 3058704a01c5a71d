package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
)

// HousekeepingService periodically removes forgotten-password tokens and
// invites that expired more than Retention ago. Expired records are already
// inert; this only bounds table growth.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service. A non-positive
// interval defaults to 1 hour and a negative retention to zero.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention < 0 {
		retention = 0
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the background worker.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one purge pass. Each deletion is independent; a failure
// in one does not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	cutoff := clock(s.Now).Add(-s.Retention)
	s.Logger.Debug("starting housekeeping cleanup", "cutoff", cutoff)

	var total int64

	if n, err := s.Store.ForgottenPasswords().DeleteExpiredForgottenPasswords(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete expired forgotten passwords", "error", err)
	} else {
		total += n
	}

	if n, err := s.Store.Invites().DeleteExpiredInvites(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete expired invites", "error", err)
	} else {
		total += n
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted", total)
}
