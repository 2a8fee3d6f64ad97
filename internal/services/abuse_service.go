package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/bh1mart/bh1mart/internal/models"
)

// AttemptLedger is the persistence interface for the time-boxed abuse ledger.
type AttemptLedger interface {
	GetByDeviceID(ctx context.Context, deviceID string) (*models.AttemptRecord, error)
	IncrementFailed(ctx context.Context, deviceID string) (*models.AttemptRecord, error)
	SetBlockIfUnblocked(ctx context.Context, deviceID string, until time.Time, minAttempts int) (bool, error)
	Reset(ctx context.Context, deviceID string) error
	ClearExpiredBlock(ctx context.Context, deviceID string, expiredUntil time.Time) error
}

// AbuseConfig holds the time-boxed ledger thresholds.
type AbuseConfig struct {
	MaxFailedAttempts int
	BlockDuration     time.Duration
}

// AbuseService implements the time-boxed abuse ledger: failed attempts per
// device, a fixed block window at the threshold, and lazy expiry on read.
//
// Every method fails OPEN on persistence errors: a broken ledger must never
// take order submission down, so infra failures are logged and treated as
// "no block" / "nothing recorded". This is deliberate policy, not an
// oversight.
type AbuseService struct {
	repo   AttemptLedger
	config AbuseConfig
	logger *slog.Logger
}

// NewAbuseService creates a new AbuseService
func NewAbuseService(repo AttemptLedger, config AbuseConfig, logger *slog.Logger) *AbuseService {
	return &AbuseService{
		repo:   repo,
		config: config,
		logger: logger,
	}
}

// CheckBlock reports whether the device currently carries a time-boxed
// block. A block whose deadline has passed is cleared here, on read; there
// is no background sweep.
func (s *AbuseService) CheckBlock(ctx context.Context, deviceID string) models.BlockState {
	if deviceID == "" {
		return models.BlockState{}
	}

	rec, err := s.repo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		if err != models.ErrNotFound {
			s.logger.Error("abuse ledger read failed, failing open",
				slog.String("device_id", deviceID),
				slog.Any("error", err))
		}
		return models.BlockState{}
	}

	if rec.BlockedUntil == nil {
		return models.BlockState{}
	}

	if time.Now().Before(*rec.BlockedUntil) {
		return models.BlockState{Kind: models.BlockTimeBoxed, Until: *rec.BlockedUntil}
	}

	// Block expired: reset lazily so the device gets a clean slate.
	if err := s.repo.ClearExpiredBlock(ctx, deviceID, *rec.BlockedUntil); err != nil {
		s.logger.Error("failed to clear expired block",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
	}
	return models.BlockState{}
}

// RecordFailedAttempt counts one hard validation failure. When the counter
// reaches the threshold and no block is armed yet, the device is blocked for
// the configured window. The increment and the block transition are each a
// single atomic statement, so concurrent failures from one device cannot
// race past the threshold unblocked.
func (s *AbuseService) RecordFailedAttempt(ctx context.Context, deviceID string) {
	if deviceID == "" {
		return
	}

	rec, err := s.repo.IncrementFailed(ctx, deviceID)
	if err != nil {
		s.logger.Error("failed to record abuse attempt",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		return
	}

	if rec.FailedAttempts >= s.config.MaxFailedAttempts && rec.BlockedUntil == nil {
		until := time.Now().Add(s.config.BlockDuration)
		armed, err := s.repo.SetBlockIfUnblocked(ctx, deviceID, until, s.config.MaxFailedAttempts)
		if err != nil {
			s.logger.Error("failed to arm device block",
				slog.String("device_id", deviceID),
				slog.Any("error", err))
			return
		}
		if armed {
			s.logger.Warn("device blocked",
				slog.String("device_id", deviceID),
				slog.Int("failed_attempts", rec.FailedAttempts),
				slog.Time("blocked_until", until))
		}
	}
}

// ResetAttempts clears the device's counter and block after an accepted
// submission. Idempotent.
func (s *AbuseService) ResetAttempts(ctx context.Context, deviceID string) {
	if deviceID == "" {
		return
	}

	if err := s.repo.Reset(ctx, deviceID); err != nil {
		s.logger.Error("failed to reset abuse attempts",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
	}
}
