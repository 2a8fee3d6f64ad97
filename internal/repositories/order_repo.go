package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bh1mart/bh1mart/internal/database"
	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository handles order data access.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{pool: db.Pool}
}

func scanOrderRow(scanner rowScanner) (*models.Order, error) {
	var order models.Order
	var itemsJSON []byte

	err := scanner.Scan(
		&order.ID, &order.Name, &order.Phone, &order.Room, &order.Fingerprint,
		&itemsJSON, &order.Total, &order.Notes, &order.Status,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, fmt.Errorf("failed to decode order items: %w", err)
		}
	}

	return &order, nil
}

func scanOrderRows(rows pgx.Rows) ([]*models.Order, error) {
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	return orders, nil
}

// Create persists an accepted order with status pending.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New().String()
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}

	query := `
		INSERT INTO orders (id, name, phone, room, fingerprint, items, total, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, name, phone, room, fingerprint, items, total, notes, status, created_at, updated_at
	`
	return scanOrderRow(r.pool.QueryRow(ctx, query,
		order.ID, order.Name, order.Phone, order.Room, order.Fingerprint,
		itemsJSON, order.Total, order.Notes, order.Status,
	))
}

// GetByID returns one order or ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `
		SELECT id, name, phone, room, fingerprint, items, total, notes, status, created_at, updated_at
		FROM orders WHERE id = $1
	`
	return scanOrderRow(r.pool.QueryRow(ctx, query, id))
}

// List returns recent orders for the admin panel.
func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, name, phone, room, fingerprint, items, total, notes, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return scanOrderRows(rows)
}

// UpdateStatus moves an order through its lifecycle.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	query := `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, phone, room, fingerprint, items, total, notes, status, created_at, updated_at
	`
	return scanOrderRow(r.pool.QueryRow(ctx, query, id, status))
}

// CountByFingerprintAndStatus counts a device's orders in the given statuses.
// The orchestrator's historical-abuse check uses this with the
// cancelled/rejected set.
func (r *OrderRepository) CountByFingerprintAndStatus(ctx context.Context, fingerprint string, statuses []string) (int, error) {
	query := `
		SELECT COUNT(*) FROM orders
		WHERE fingerprint = $1 AND status = ANY($2)
	`
	var count int
	err := r.pool.QueryRow(ctx, query, fingerprint, statuses).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
