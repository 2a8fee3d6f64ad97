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

// ProductRepository handles catalog data access.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{pool: db.Pool}
}

func scanProductRow(scanner rowScanner) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &p.Image,
		&p.Priority, &p.InStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &p, nil
}

func scanProductRows(rows pgx.Rows) ([]*models.Product, error) {
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	return products, nil
}

// List returns the catalog ordered for display.
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT id, name, category, price, image, priority, in_stock, created_at, updated_at
		FROM products ORDER BY priority ASC, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return scanProductRows(rows)
}

// Create adds a product to the catalog.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.ID = uuid.New().String()

	query := `
		INSERT INTO products (id, name, category, price, image, priority, in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, category, price, image, priority, in_stock, created_at, updated_at
	`
	return scanProductRow(r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Category, p.Price, p.Image, p.Priority, p.InStock,
	))
}

// Update overwrites the mutable product fields.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $2, category = $3, price = $4, image = $5, priority = $6, in_stock = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, category, price, image, priority, in_stock, created_at, updated_at
	`
	return scanProductRow(r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Category, p.Price, p.Image, p.Priority, p.InStock,
	))
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Count returns the catalog size, used by the one-time seed guard.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
