package repositories

import (
	"context"
	"fmt"

	"github.com/bh1mart/bh1mart/internal/database"
	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeviceSecurityRepository handles the sticky abuse ledger
// (device_security table).
type DeviceSecurityRepository struct {
	pool *pgxpool.Pool
}

// NewDeviceSecurityRepository creates a new DeviceSecurityRepository
func NewDeviceSecurityRepository(db *database.DB) *DeviceSecurityRepository {
	return &DeviceSecurityRepository{pool: db.Pool}
}

func scanDeviceRow(scanner rowScanner) (*models.DeviceSecurityRecord, error) {
	var rec models.DeviceSecurityRecord
	err := scanner.Scan(
		&rec.Fingerprint, &rec.InvalidAttempts, &rec.IsBlocked,
		&rec.BlockedReason, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &rec, nil
}

func scanDeviceRows(rows pgx.Rows) ([]*models.DeviceSecurityRecord, error) {
	defer rows.Close()

	records := make([]*models.DeviceSecurityRecord, 0)
	for rows.Next() {
		rec, err := scanDeviceRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device rows: %w", err)
	}

	return records, nil
}

// GetByFingerprint returns the security record for a device, or ErrNotFound.
func (r *DeviceSecurityRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*models.DeviceSecurityRecord, error) {
	query := `
		SELECT fingerprint, invalid_attempts, is_blocked, blocked_reason, created_at, updated_at
		FROM device_security WHERE fingerprint = $1
	`
	return scanDeviceRow(r.pool.QueryRow(ctx, query, fingerprint))
}

// IncrementInvalid atomically upserts the record and bumps the invalid
// counter, returning the post-increment state.
func (r *DeviceSecurityRepository) IncrementInvalid(ctx context.Context, fingerprint string) (*models.DeviceSecurityRecord, error) {
	query := `
		INSERT INTO device_security (fingerprint, invalid_attempts)
		VALUES ($1, 1)
		ON CONFLICT (fingerprint) DO UPDATE
		SET invalid_attempts = device_security.invalid_attempts + 1,
		    updated_at = NOW()
		RETURNING fingerprint, invalid_attempts, is_blocked, blocked_reason, created_at, updated_at
	`
	rec, err := scanDeviceRow(r.pool.QueryRow(ctx, query, fingerprint))
	if err != nil {
		return nil, fmt.Errorf("failed to increment invalid attempts: %w", err)
	}
	return rec, nil
}

// BlockIfUnblocked flips is_blocked in one conditional update. Once set, the
// flag stays until an explicit Unblock; repeat threshold crossings are no-ops.
func (r *DeviceSecurityRepository) BlockIfUnblocked(ctx context.Context, fingerprint, reason string, minAttempts int) (bool, error) {
	query := `
		UPDATE device_security
		SET is_blocked = TRUE, blocked_reason = $2, updated_at = NOW()
		WHERE fingerprint = $1 AND is_blocked = FALSE AND invalid_attempts >= $3
	`
	tag, err := r.pool.Exec(ctx, query, fingerprint, reason, minAttempts)
	if err != nil {
		return false, fmt.Errorf("failed to block device: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Unblock clears the sticky block and the counter. Admin action only.
func (r *DeviceSecurityRepository) Unblock(ctx context.Context, fingerprint string) error {
	query := `
		UPDATE device_security
		SET is_blocked = FALSE, invalid_attempts = 0, blocked_reason = '', updated_at = NOW()
		WHERE fingerprint = $1
	`
	tag, err := r.pool.Exec(ctx, query, fingerprint)
	if err != nil {
		return fmt.Errorf("failed to unblock device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListTracked returns security records ordered by most recently updated, for
// the admin dashboard.
func (r *DeviceSecurityRepository) ListTracked(ctx context.Context, limit int) ([]*models.DeviceSecurityRecord, error) {
	query := `
		SELECT fingerprint, invalid_attempts, is_blocked, blocked_reason, created_at, updated_at
		FROM device_security ORDER BY updated_at DESC LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query device records: %w", err)
	}
	return scanDeviceRows(rows)
}

// CountBlocked returns the number of currently sticky-blocked devices.
func (r *DeviceSecurityRepository) CountBlocked(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM device_security WHERE is_blocked = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count blocked devices: %w", err)
	}
	return count, nil
}
