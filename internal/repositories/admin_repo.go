package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/bh1mart/bh1mart/internal/database"
	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository handles operator account data access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{pool: db.Pool}
}

func scanAdminRow(scanner rowScanner) (*models.Admin, error) {
	var admin models.Admin
	err := scanner.Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Name,
		&admin.TOTPSecret, &admin.TOTPEnabled, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &admin, nil
}

// GetByEmail returns an admin by email (case-insensitive), or ErrNotFound.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `
		SELECT id, email, password_hash, name, totp_secret, totp_enabled, created_at, updated_at
		FROM admins WHERE email = $1
	`
	return scanAdminRow(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

// GetByID returns an admin by id, or ErrNotFound.
func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `
		SELECT id, email, password_hash, name, totp_secret, totp_enabled, created_at, updated_at
		FROM admins WHERE id = $1
	`
	return scanAdminRow(r.pool.QueryRow(ctx, query, id))
}

// Create inserts a new admin account.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = uuid.New().String()
	admin.Email = strings.ToLower(admin.Email)

	query := `
		INSERT INTO admins (id, email, password_hash, name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, name, totp_secret, totp_enabled, created_at, updated_at
	`
	result, err := scanAdminRow(r.pool.QueryRow(ctx, query,
		admin.ID, admin.Email, admin.PasswordHash, admin.Name,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return result, nil
}

// SetTOTPSecret stores a pending TOTP secret for an admin.
func (r *AdminRepository) SetTOTPSecret(ctx context.Context, id, secret string) error {
	query := `UPDATE admins SET totp_secret = $2, totp_enabled = FALSE, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, secret)
	if err != nil {
		return fmt.Errorf("failed to set totp secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// EnableTOTP marks an admin's TOTP enrollment as confirmed.
func (r *AdminRepository) EnableTOTP(ctx context.Context, id string) error {
	query := `UPDATE admins SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1 AND totp_secret IS NOT NULL`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to enable totp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
