package services

import (
	"context"
	"log/slog"

	"github.com/bh1mart/bh1mart/internal/models"
)

const stickyBlockReason = "Repeated invalid order attempts"

// DeviceLedger is the persistence interface for the sticky abuse ledger.
type DeviceLedger interface {
	GetByFingerprint(ctx context.Context, fingerprint string) (*models.DeviceSecurityRecord, error)
	IncrementInvalid(ctx context.Context, fingerprint string) (*models.DeviceSecurityRecord, error)
	BlockIfUnblocked(ctx context.Context, fingerprint, reason string, minAttempts int) (bool, error)
	Unblock(ctx context.Context, fingerprint string) error
	ListTracked(ctx context.Context, limit int) ([]*models.DeviceSecurityRecord, error)
	CountBlocked(ctx context.Context) (int64, error)
}

// DeviceSecurityService implements the sticky abuse ledger. A device that
// crosses the invalid-attempt threshold stays blocked until an operator
// lifts it; there is no expiry. Reads and writes fail open like the
// time-boxed ledger.
type DeviceSecurityService struct {
	repo              DeviceLedger
	maxFailedAttempts int
	logger            *slog.Logger
}

// NewDeviceSecurityService creates a new DeviceSecurityService
func NewDeviceSecurityService(repo DeviceLedger, maxFailedAttempts int, logger *slog.Logger) *DeviceSecurityService {
	return &DeviceSecurityService{
		repo:              repo,
		maxFailedAttempts: maxFailedAttempts,
		logger:            logger,
	}
}

// CheckBlock reports whether the device carries a sticky block.
func (s *DeviceSecurityService) CheckBlock(ctx context.Context, fingerprint string) models.BlockState {
	if fingerprint == "" {
		return models.BlockState{}
	}

	rec, err := s.repo.GetByFingerprint(ctx, fingerprint)
	if err != nil {
		if err != models.ErrNotFound {
			s.logger.Error("device ledger read failed, failing open",
				slog.String("fingerprint", fingerprint),
				slog.Any("error", err))
		}
		return models.BlockState{}
	}

	if rec.IsBlocked {
		return models.BlockState{Kind: models.BlockSticky}
	}
	return models.BlockState{}
}

// RecordInvalidAttempt counts one hard validation failure against the sticky
// ledger and arms the permanent block at the threshold.
func (s *DeviceSecurityService) RecordInvalidAttempt(ctx context.Context, fingerprint string) {
	if fingerprint == "" {
		return
	}

	rec, err := s.repo.IncrementInvalid(ctx, fingerprint)
	if err != nil {
		s.logger.Error("failed to record invalid attempt",
			slog.String("fingerprint", fingerprint),
			slog.Any("error", err))
		return
	}

	if rec.InvalidAttempts >= s.maxFailedAttempts && !rec.IsBlocked {
		armed, err := s.repo.BlockIfUnblocked(ctx, fingerprint, stickyBlockReason, s.maxFailedAttempts)
		if err != nil {
			s.logger.Error("failed to arm sticky block",
				slog.String("fingerprint", fingerprint),
				slog.Any("error", err))
			return
		}
		if armed {
			s.logger.Warn("device sticky-blocked",
				slog.String("fingerprint", fingerprint),
				slog.Int("invalid_attempts", rec.InvalidAttempts))
		}
	}
}

// Unblock lifts a sticky block. Returns models.ErrNotFound when the
// fingerprint has no record.
func (s *DeviceSecurityService) Unblock(ctx context.Context, fingerprint string) error {
	if err := s.repo.Unblock(ctx, fingerprint); err != nil {
		return err
	}
	s.logger.Info("device unblocked", slog.String("fingerprint", fingerprint))
	return nil
}

// ListTracked returns the devices the sticky ledger knows about, most
// recently active first.
func (s *DeviceSecurityService) ListTracked(ctx context.Context, limit int) ([]*models.DeviceSecurityRecord, error) {
	return s.repo.ListTracked(ctx, limit)
}

// CountBlocked returns the number of devices currently sticky-blocked.
func (s *DeviceSecurityService) CountBlocked(ctx context.Context) (int64, error) {
	return s.repo.CountBlocked(ctx)
}
