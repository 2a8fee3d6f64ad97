package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/bh1mart/bh1mart/internal/database"
	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderLogRepository handles the append-only submission audit trail.
type OrderLogRepository struct {
	pool *pgxpool.Pool
}

// NewOrderLogRepository creates a new OrderLogRepository
func NewOrderLogRepository(db *database.DB) *OrderLogRepository {
	return &OrderLogRepository{pool: db.Pool}
}

func scanOrderLogRow(scanner rowScanner) (*models.OrderLog, error) {
	var log models.OrderLog
	err := scanner.Scan(
		&log.ID, &log.Fingerprint, &log.Phone, &log.IP,
		&log.Status, &log.Reason, &log.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &log, nil
}

func scanOrderLogRows(rows pgx.Rows) ([]*models.OrderLog, error) {
	defer rows.Close()

	logs := make([]*models.OrderLog, 0)
	for rows.Next() {
		log, err := scanOrderLogRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order log rows: %w", err)
	}

	return logs, nil
}

// Create appends one submission outcome. Logs are write-only from the
// engine's perspective; nothing in the request path reads them back.
func (r *OrderLogRepository) Create(ctx context.Context, log *models.OrderLog) error {
	log.ID = uuid.New().String()

	query := `
		INSERT INTO order_logs (id, fingerprint, phone, ip, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		log.ID, log.Fingerprint, log.Phone, log.IP, log.Status, log.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to create order log: %w", err)
	}
	return nil
}

// GetRecentByFingerprint returns the latest log entries for one device, for
// the admin security dashboard.
func (r *OrderLogRepository) GetRecentByFingerprint(ctx context.Context, fingerprint string, limit int) ([]*models.OrderLog, error) {
	query := `
		SELECT id, fingerprint, phone, ip, status, reason, created_at
		FROM order_logs WHERE fingerprint = $1
		ORDER BY created_at DESC LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, fingerprint, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query order logs: %w", err)
	}
	return scanOrderLogRows(rows)
}

// DeleteOlderThan trims log rows past the retention cutoff.
func (r *OrderLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM order_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old order logs: %w", err)
	}
	return tag.RowsAffected(), nil
}
