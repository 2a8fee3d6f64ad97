package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bh1mart/bh1mart/internal/auth"
	"github.com/bh1mart/bh1mart/internal/models"
	pkgauth "github.com/bh1mart/bh1mart/pkg/auth"
	pkglogger "github.com/bh1mart/bh1mart/pkg/logger"
)

// AdminAccounts is the persistence interface for operator accounts.
type AdminAccounts interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	SetTOTPSecret(ctx context.Context, id, secret string) error
	EnableTOTP(ctx context.Context, id string) error
}

// RecentLogs reads the tail of a device's audit trail for the dashboard.
type RecentLogs interface {
	GetRecentByFingerprint(ctx context.Context, fingerprint string, limit int) ([]*models.OrderLog, error)
}

// DeviceReport is one row of the security dashboard: a sticky-ledger record
// with that device's latest audit entries attached.
type DeviceReport struct {
	Device     *models.DeviceSecurityRecord
	RecentLogs []*models.OrderLog
}

// SecurityDashboard is what the admin panel's security tab renders.
type SecurityDashboard struct {
	Devices      []*DeviceReport
	BlockedCount int64
}

// AdminService handles operator login and the security dashboard.
type AdminService struct {
	admins  AdminAccounts
	devices *DeviceSecurityService
	logs    RecentLogs
	tokens  *auth.TokenManager
	totp    *auth.TOTPManager
	timing  *auth.TimingDelay
	logger  *slog.Logger
	audit   *pkglogger.AuditLogger
}

// NewAdminService creates a new AdminService
func NewAdminService(
	admins AdminAccounts,
	devices *DeviceSecurityService,
	logs RecentLogs,
	tokens *auth.TokenManager,
	totp *auth.TOTPManager,
	timing *auth.TimingDelay,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
) *AdminService {
	return &AdminService{
		admins:  admins,
		devices: devices,
		logs:    logs,
		tokens:  tokens,
		totp:    totp,
		timing:  timing,
		logger:  logger,
		audit:   audit,
	}
}

// Login verifies credentials and, when the account has TOTP enabled, the
// second-factor code. All failure modes return models.ErrUnauthorized after
// an equalized delay so callers cannot probe which step failed.
func (s *AdminService) Login(ctx context.Context, email, password, totpCode string) (string, *models.Admin, error) {
	start := time.Now()

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		s.audit.LogAdminLogin(email, "", false)
		s.timing.WaitFrom(start, false)
		return "", nil, models.ErrUnauthorized
	}

	if err := pkgauth.ComparePassword(admin.PasswordHash, password); err != nil {
		s.audit.LogAdminLogin(admin.Email, "", false)
		s.timing.WaitFrom(start, false)
		return "", nil, models.ErrUnauthorized
	}

	if admin.TOTPEnabled {
		if admin.TOTPSecret == nil || !s.totp.Validate(*admin.TOTPSecret, totpCode) {
			s.audit.LogAdminLogin(admin.Email, "", false)
			s.timing.WaitFrom(start, false)
			return "", nil, models.ErrUnauthorized
		}
	}

	token, err := s.tokens.Generate(admin.ID, admin.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	s.audit.LogAdminLogin(admin.Email, "", true)
	return token, admin, nil
}

// GetAdmin returns one operator account.
func (s *AdminService) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	return s.admins.GetByID(ctx, id)
}

// EnsureAdmin creates the bootstrap operator account on first start. A
// matching existing account is left untouched.
func (s *AdminService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil
	} else if err != models.ErrNotFound {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return fmt.Errorf("bootstrap password rejected: %w", err)
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if _, err := s.admins.Create(ctx, &models.Admin{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("bootstrap admin created", slog.String("email", email))
	return nil
}

// Dashboard assembles the security tab: every tracked device with its recent
// audit entries, plus the blocked-device count. A log read failure for one
// device degrades that row instead of failing the whole view.
func (s *AdminService) Dashboard(ctx context.Context, limit int) (*SecurityDashboard, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	records, err := s.devices.ListTracked(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	reports := make([]*DeviceReport, 0, len(records))
	for _, rec := range records {
		logs, err := s.logs.GetRecentByFingerprint(ctx, rec.Fingerprint, 5)
		if err != nil {
			s.logger.Error("failed to load device logs",
				slog.String("fingerprint", rec.Fingerprint),
				slog.Any("error", err))
			logs = nil
		}
		reports = append(reports, &DeviceReport{Device: rec, RecentLogs: logs})
	}

	blocked, err := s.devices.CountBlocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count blocked devices: %w", err)
	}

	return &SecurityDashboard{Devices: reports, BlockedCount: blocked}, nil
}

// UnblockDevice lifts a device's sticky block.
func (s *AdminService) UnblockDevice(ctx context.Context, fingerprint, actorEmail string) error {
	if err := s.devices.Unblock(ctx, fingerprint); err != nil {
		return err
	}
	s.audit.LogDeviceUnblocked(fingerprint, actorEmail)
	return nil
}

// SetupTOTP starts second-factor enrollment: stores a pending secret and
// returns it with the QR code. The factor is not required until ConfirmTOTP
// succeeds.
func (s *AdminService) SetupTOTP(ctx context.Context, adminID string) (secret, qrDataURL string, err error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return "", "", err
	}

	secret, qrDataURL, err = s.totp.GenerateSecretWithQR(admin.Email)
	if err != nil {
		return "", "", err
	}

	if err := s.admins.SetTOTPSecret(ctx, adminID, secret); err != nil {
		return "", "", fmt.Errorf("failed to store totp secret: %w", err)
	}
	return secret, qrDataURL, nil
}

// ConfirmTOTP finishes enrollment by checking one code against the pending
// secret.
func (s *AdminService) ConfirmTOTP(ctx context.Context, adminID, code string) error {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if admin.TOTPSecret == nil || !s.totp.Validate(*admin.TOTPSecret, code) {
		return models.ErrUnauthorized
	}

	if err := s.admins.EnableTOTP(ctx, adminID); err != nil {
		return fmt.Errorf("failed to enable totp: %w", err)
	}

	s.logger.Info("admin totp enabled", slog.String("email", admin.Email))
	return nil
}
