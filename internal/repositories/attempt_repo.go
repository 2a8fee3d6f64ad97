package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/bh1mart/bh1mart/internal/database"
	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository handles the time-boxed abuse ledger (attempts table).
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository
func NewAttemptRepository(db *database.DB) *AttemptRepository {
	return &AttemptRepository{pool: db.Pool}
}

func scanAttemptRow(scanner rowScanner) (*models.AttemptRecord, error) {
	var rec models.AttemptRecord
	err := scanner.Scan(
		&rec.DeviceID, &rec.FailedAttempts, &rec.BlockedUntil,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &rec, nil
}

// GetByDeviceID returns the attempt record for a device, or ErrNotFound.
func (r *AttemptRepository) GetByDeviceID(ctx context.Context, deviceID string) (*models.AttemptRecord, error) {
	query := `
		SELECT device_id, failed_attempts, blocked_until, created_at, updated_at
		FROM attempts WHERE device_id = $1
	`
	return scanAttemptRow(r.pool.QueryRow(ctx, query, deviceID))
}

// IncrementFailed atomically upserts the record and bumps the failure counter
// in a single statement, returning the post-increment state. Two concurrent
// callers each get a distinct counter value, so the caller's threshold check
// cannot double-admit a device racing past the limit.
func (r *AttemptRepository) IncrementFailed(ctx context.Context, deviceID string) (*models.AttemptRecord, error) {
	query := `
		INSERT INTO attempts (device_id, failed_attempts)
		VALUES ($1, 1)
		ON CONFLICT (device_id) DO UPDATE
		SET failed_attempts = attempts.failed_attempts + 1,
		    updated_at = NOW()
		RETURNING device_id, failed_attempts, blocked_until, created_at, updated_at
	`
	rec, err := scanAttemptRow(r.pool.QueryRow(ctx, query, deviceID))
	if err != nil {
		return nil, fmt.Errorf("failed to increment attempts: %w", err)
	}
	return rec, nil
}

// SetBlockIfUnblocked arms the block in one conditional update. The WHERE
// clause makes the threshold transition idempotent under concurrency: only
// the first writer past the threshold sets blocked_until, later ones see zero
// rows affected and leave the existing deadline alone.
func (r *AttemptRepository) SetBlockIfUnblocked(ctx context.Context, deviceID string, until time.Time, minAttempts int) (bool, error) {
	query := `
		UPDATE attempts
		SET blocked_until = $2, updated_at = NOW()
		WHERE device_id = $1 AND blocked_until IS NULL AND failed_attempts >= $3
	`
	tag, err := r.pool.Exec(ctx, query, deviceID, until, minAttempts)
	if err != nil {
		return false, fmt.Errorf("failed to set block: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Reset clears the counter and any block. Safe to call for devices with no
// record and idempotent when repeated.
func (r *AttemptRepository) Reset(ctx context.Context, deviceID string) error {
	query := `
		UPDATE attempts
		SET failed_attempts = 0, blocked_until = NULL, updated_at = NOW()
		WHERE device_id = $1
	`
	if _, err := r.pool.Exec(ctx, query, deviceID); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	return nil
}

// ClearExpiredBlock performs the lazy expiry: it resets the record only if
// its block deadline matches and has passed, so a concurrent re-block is
// never wiped by a stale reader.
func (r *AttemptRepository) ClearExpiredBlock(ctx context.Context, deviceID string, expiredUntil time.Time) error {
	query := `
		UPDATE attempts
		SET failed_attempts = 0, blocked_until = NULL, updated_at = NOW()
		WHERE device_id = $1 AND blocked_until = $2 AND blocked_until <= NOW()
	`
	if _, err := r.pool.Exec(ctx, query, deviceID, expiredUntil); err != nil {
		return fmt.Errorf("failed to clear expired block: %w", err)
	}
	return nil
}

// DeleteStale removes records that carry no block and have not been touched
// since the cutoff. Retention only; live blocks are never swept.
func (r *AttemptRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM attempts
		WHERE blocked_until IS NULL AND failed_attempts = 0 AND updated_at < $1
	`
	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale attempts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}
