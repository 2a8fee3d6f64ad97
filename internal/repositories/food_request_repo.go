package repositories

import (
	"context"
	"fmt"

	"github.com/bh1mart/bh1mart/internal/database"
	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FoodRequestRepository handles food request data access.
type FoodRequestRepository struct {
	pool *pgxpool.Pool
}

// NewFoodRequestRepository creates a new FoodRequestRepository
func NewFoodRequestRepository(db *database.DB) *FoodRequestRepository {
	return &FoodRequestRepository{pool: db.Pool}
}

func scanFoodRequestRow(scanner rowScanner) (*models.FoodRequest, error) {
	var fr models.FoodRequest
	err := scanner.Scan(
		&fr.ID, &fr.Name, &fr.Phone, &fr.Room, &fr.FoodItem, &fr.Description,
		&fr.Fingerprint, &fr.Status, &fr.CreatedAt, &fr.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &fr, nil
}

func scanFoodRequestRows(rows pgx.Rows) ([]*models.FoodRequest, error) {
	defer rows.Close()

	requests := make([]*models.FoodRequest, 0)
	for rows.Next() {
		fr, err := scanFoodRequestRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food request: %w", err)
		}
		requests = append(requests, fr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating food request rows: %w", err)
	}

	return requests, nil
}

// Create persists an accepted food request.
func (r *FoodRequestRepository) Create(ctx context.Context, fr *models.FoodRequest) (*models.FoodRequest, error) {
	fr.ID = uuid.New().String()
	if fr.Status == "" {
		fr.Status = models.FoodRequestPending
	}

	query := `
		INSERT INTO food_requests (id, name, phone, room, food_item, description, fingerprint, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, name, phone, room, food_item, description, fingerprint, status, created_at, updated_at
	`
	return scanFoodRequestRow(r.pool.QueryRow(ctx, query,
		fr.ID, fr.Name, fr.Phone, fr.Room, fr.FoodItem, fr.Description, fr.Fingerprint, fr.Status,
	))
}

// GetByID returns one request or ErrNotFound. Public so users can track
// their own requests.
func (r *FoodRequestRepository) GetByID(ctx context.Context, id string) (*models.FoodRequest, error) {
	query := `
		SELECT id, name, phone, room, food_item, description, fingerprint, status, created_at, updated_at
		FROM food_requests WHERE id = $1
	`
	return scanFoodRequestRow(r.pool.QueryRow(ctx, query, id))
}

// List returns recent requests for the admin panel.
func (r *FoodRequestRepository) List(ctx context.Context, limit, offset int) ([]*models.FoodRequest, error) {
	query := `
		SELECT id, name, phone, room, food_item, description, fingerprint, status, created_at, updated_at
		FROM food_requests ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query food requests: %w", err)
	}
	return scanFoodRequestRows(rows)
}

// UpdateStatus moves a request through its lifecycle.
func (r *FoodRequestRepository) UpdateStatus(ctx context.Context, id, status string) (*models.FoodRequest, error) {
	query := `
		UPDATE food_requests SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, phone, room, food_item, description, fingerprint, status, created_at, updated_at
	`
	return scanFoodRequestRow(r.pool.QueryRow(ctx, query, id, status))
}
