package background

import (
	"context"
	"log/slog"
	"time"
)

// AttemptCleaner removes stale time-boxed ledger rows.
type AttemptCleaner interface {
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// LogCleaner trims audit log rows past the retention window.
type LogCleaner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupManager is retention housekeeping only. Block expiry is handled
// lazily at read time; this never lifts a block early, it just drops attempt
// rows long past their window and audit entries past retention.
type CleanupManager struct {
	attempts     AttemptCleaner
	logs         LogCleaner
	logger       *slog.Logger
	interval     time.Duration
	logRetention time.Duration
	stopCh       chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	attempts AttemptCleaner,
	logs LogCleaner,
	logger *slog.Logger,
	interval time.Duration,
	logRetention time.Duration,
) *CleanupManager {
	return &CleanupManager{
		attempts:     attempts,
		logs:         logs,
		logger:       logger,
		interval:     interval,
		logRetention: logRetention,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Attempt rows whose block window (if any) lapsed over a week ago carry
	// no signal anymore.
	attemptCutoff := time.Now().Add(-7 * 24 * time.Hour)
	deleted, err := cm.attempts.DeleteStale(cleanupCtx, attemptCutoff)
	if err != nil {
		cm.logger.Error("failed to clean up stale attempts", slog.Any("error", err))
	} else if deleted > 0 {
		cm.logger.Info("stale attempts removed", slog.Int64("rows_deleted", deleted))
	}

	logCutoff := time.Now().Add(-cm.logRetention)
	deleted, err = cm.logs.DeleteOlderThan(cleanupCtx, logCutoff)
	if err != nil {
		cm.logger.Error("failed to trim order logs", slog.Any("error", err))
	} else if deleted > 0 {
		cm.logger.Info("old order logs removed", slog.Int64("rows_deleted", deleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
