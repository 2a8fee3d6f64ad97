package services_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bh1mart/bh1mart/internal/auth"
	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/bh1mart/bh1mart/internal/services"
	pkgauth "github.com/bh1mart/bh1mart/pkg/auth"
	pkglogger "github.com/bh1mart/bh1mart/pkg/logger"
)

// MockAdminAccounts implements AdminAccounts for testing
type MockAdminAccounts struct {
	byEmail map[string]*models.Admin
	byID    map[string]*models.Admin
}

func NewMockAdminAccounts() *MockAdminAccounts {
	return &MockAdminAccounts{
		byEmail: make(map[string]*models.Admin),
		byID:    make(map[string]*models.Admin),
	}
}

func (m *MockAdminAccounts) add(admin *models.Admin) {
	m.byEmail[admin.Email] = admin
	m.byID[admin.ID] = admin
}

func (m *MockAdminAccounts) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	admin, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return admin, nil
}

func (m *MockAdminAccounts) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	admin, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return admin, nil
}

func (m *MockAdminAccounts) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = "admin-" + admin.Email
	m.add(admin)
	return admin, nil
}

func (m *MockAdminAccounts) SetTOTPSecret(ctx context.Context, id, secret string) error {
	admin, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	admin.TOTPSecret = &secret
	admin.TOTPEnabled = false
	return nil
}

func (m *MockAdminAccounts) EnableTOTP(ctx context.Context, id string) error {
	admin, ok := m.byID[id]
	if !ok || admin.TOTPSecret == nil {
		return models.ErrNotFound
	}
	admin.TOTPEnabled = true
	return nil
}

// MockRecentLogs implements RecentLogs for testing
type MockRecentLogs struct {
	logs map[string][]*models.OrderLog
}

func (m *MockRecentLogs) GetRecentByFingerprint(ctx context.Context, fingerprint string, limit int) ([]*models.OrderLog, error) {
	return m.logs[fingerprint], nil
}

type adminFixture struct {
	service  *services.AdminService
	accounts *MockAdminAccounts
	devices  *MockDeviceLedger
	tokens   *auth.TokenManager
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	accounts := NewMockAdminAccounts()
	devices := NewMockDeviceLedger()
	tokens := auth.NewTokenManager("test-secret-that-is-long-enough-0123456789", 7*24*time.Hour)
	totpMgr := auth.NewTOTPManager("bh1mart-test")
	timing := auth.NewTimingDelay(auth.TimingConfig{})

	service := services.NewAdminService(
		accounts,
		newDeviceService(devices),
		&MockRecentLogs{logs: make(map[string][]*models.OrderLog)},
		tokens, totpMgr, timing, logger, pkglogger.NewAuditLogger(logger),
	)

	return &adminFixture{service: service, accounts: accounts, devices: devices, tokens: tokens}
}

func seedAdmin(t *testing.T, f *adminFixture, password string) *models.Admin {
	t.Helper()
	hash, err := pkgauth.HashPassword(password)
	require.NoError(t, err)

	admin := &models.Admin{
		ID:           "admin-1",
		Email:        "owner@example.com",
		PasswordHash: hash,
		Name:         "Store Owner",
	}
	f.accounts.add(admin)
	return admin
}

func TestAdminService_LoginSuccess(t *testing.T) {
	f := newAdminFixture(t)
	seedAdmin(t, f, "Str0ng!Passw0rd")

	token, admin, err := f.service.Login(context.Background(), "owner@example.com", "Str0ng!Passw0rd", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "owner@example.com", admin.Email)

	claims, err := f.tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
}

func TestAdminService_LoginWrongPassword(t *testing.T) {
	f := newAdminFixture(t)
	seedAdmin(t, f, "Str0ng!Passw0rd")

	_, _, err := f.service.Login(context.Background(), "owner@example.com", "wrong", "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAdminService_LoginUnknownEmail(t *testing.T) {
	f := newAdminFixture(t)

	_, _, err := f.service.Login(context.Background(), "nobody@example.com", "whatever", "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAdminService_TOTPEnrollmentAndLogin(t *testing.T) {
	f := newAdminFixture(t)
	seedAdmin(t, f, "Str0ng!Passw0rd")
	ctx := context.Background()

	secret, qrDataURL, err := f.service.SetupTOTP(ctx, "admin-1")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.True(t, strings.HasPrefix(qrDataURL, "data:image/png;base64,"))

	// Pending secret does not gate logins yet.
	_, _, err = f.service.Login(ctx, "owner@example.com", "Str0ng!Passw0rd", "")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.service.ConfirmTOTP(ctx, "admin-1", code))

	// Now a login without a code fails...
	_, _, err = f.service.Login(ctx, "owner@example.com", "Str0ng!Passw0rd", "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// ...and one with a fresh code succeeds.
	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	_, _, err = f.service.Login(ctx, "owner@example.com", "Str0ng!Passw0rd", code)
	assert.NoError(t, err)
}

func TestAdminService_EnsureAdminIsIdempotent(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.EnsureAdmin(ctx, "owner@example.com", "Str0ng!Passw0rd", "Store Owner"))
	created := f.accounts.byEmail["owner@example.com"]
	require.NotNil(t, created)

	require.NoError(t, f.service.EnsureAdmin(ctx, "owner@example.com", "Different!Pass1", "Store Owner"))
	assert.Same(t, created, f.accounts.byEmail["owner@example.com"])
}

func TestAdminService_DashboardAndUnblock(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	f.devices.records["fp-1"] = &models.DeviceSecurityRecord{
		Fingerprint:     "fp-1",
		InvalidAttempts: 2,
		IsBlocked:       true,
		BlockedReason:   "Repeated invalid order attempts",
	}

	dashboard, err := f.service.Dashboard(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dashboard.BlockedCount)
	require.Len(t, dashboard.Devices, 1)
	assert.True(t, dashboard.Devices[0].Device.IsBlocked)

	require.NoError(t, f.service.UnblockDevice(ctx, "fp-1", "owner@example.com"))

	dashboard, err = f.service.Dashboard(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(0), dashboard.BlockedCount)
}

func TestAdminService_UnblockUnknownFingerprint(t *testing.T) {
	f := newAdminFixture(t)

	err := f.service.UnblockDevice(context.Background(), "missing", "owner@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
