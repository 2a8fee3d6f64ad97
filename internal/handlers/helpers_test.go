package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bh1mart/bh1mart/internal/auth"
	"github.com/bh1mart/bh1mart/internal/handlers"
	"github.com/bh1mart/bh1mart/internal/middleware"
	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/bh1mart/bh1mart/internal/routes"
	"github.com/bh1mart/bh1mart/internal/services"
	pkgauth "github.com/bh1mart/bh1mart/pkg/auth"
	pkghttp "github.com/bh1mart/bh1mart/pkg/http"
	pkglogger "github.com/bh1mart/bh1mart/pkg/logger"
)

// In-memory fakes for every persistence interface the services consume. The
// handlers sit on real services so these tests exercise the whole pipeline
// from HTTP request to store write.

type fakeAttempts struct {
	records map[string]*models.AttemptRecord
}

func newFakeAttempts() *fakeAttempts {
	return &fakeAttempts{records: make(map[string]*models.AttemptRecord)}
}

func (f *fakeAttempts) GetByDeviceID(ctx context.Context, deviceID string) (*models.AttemptRecord, error) {
	rec, ok := f.records[deviceID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeAttempts) IncrementFailed(ctx context.Context, deviceID string) (*models.AttemptRecord, error) {
	rec, ok := f.records[deviceID]
	if !ok {
		rec = &models.AttemptRecord{DeviceID: deviceID}
		f.records[deviceID] = rec
	}
	rec.FailedAttempts++
	copied := *rec
	return &copied, nil
}

func (f *fakeAttempts) SetBlockIfUnblocked(ctx context.Context, deviceID string, until time.Time, minAttempts int) (bool, error) {
	rec, ok := f.records[deviceID]
	if !ok || rec.BlockedUntil != nil || rec.FailedAttempts < minAttempts {
		return false, nil
	}
	rec.BlockedUntil = &until
	return true, nil
}

func (f *fakeAttempts) Reset(ctx context.Context, deviceID string) error {
	delete(f.records, deviceID)
	return nil
}

func (f *fakeAttempts) ClearExpiredBlock(ctx context.Context, deviceID string, expiredUntil time.Time) error {
	if rec, ok := f.records[deviceID]; ok && rec.BlockedUntil != nil && rec.BlockedUntil.Equal(expiredUntil) {
		delete(f.records, deviceID)
	}
	return nil
}

type fakeDevices struct {
	records map[string]*models.DeviceSecurityRecord
}

func newFakeDevices() *fakeDevices {
	return &fakeDevices{records: make(map[string]*models.DeviceSecurityRecord)}
}

func (f *fakeDevices) GetByFingerprint(ctx context.Context, fingerprint string) (*models.DeviceSecurityRecord, error) {
	rec, ok := f.records[fingerprint]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeDevices) IncrementInvalid(ctx context.Context, fingerprint string) (*models.DeviceSecurityRecord, error) {
	rec, ok := f.records[fingerprint]
	if !ok {
		rec = &models.DeviceSecurityRecord{Fingerprint: fingerprint}
		f.records[fingerprint] = rec
	}
	rec.InvalidAttempts++
	copied := *rec
	return &copied, nil
}

func (f *fakeDevices) BlockIfUnblocked(ctx context.Context, fingerprint, reason string, minAttempts int) (bool, error) {
	rec, ok := f.records[fingerprint]
	if !ok || rec.IsBlocked || rec.InvalidAttempts < minAttempts {
		return false, nil
	}
	rec.IsBlocked = true
	rec.BlockedReason = reason
	return true, nil
}

func (f *fakeDevices) Unblock(ctx context.Context, fingerprint string) error {
	rec, ok := f.records[fingerprint]
	if !ok {
		return models.ErrNotFound
	}
	rec.IsBlocked = false
	rec.BlockedReason = ""
	rec.InvalidAttempts = 0
	return nil
}

func (f *fakeDevices) ListTracked(ctx context.Context, limit int) ([]*models.DeviceSecurityRecord, error) {
	records := make([]*models.DeviceSecurityRecord, 0, len(f.records))
	for _, rec := range f.records {
		copied := *rec
		records = append(records, &copied)
	}
	return records, nil
}

func (f *fakeDevices) CountBlocked(ctx context.Context) (int64, error) {
	var count int64
	for _, rec := range f.records {
		if rec.IsBlocked {
			count++
		}
	}
	return count, nil
}

type fakeOrders struct {
	orders map[string]*models.Order
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[string]*models.Order)}
}

func (f *fakeOrders) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New().String()
	order.Status = models.OrderStatusPending
	order.CreatedAt = time.Now()
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return order, nil
}

func (f *fakeOrders) List(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	orders := make([]*models.Order, 0, len(f.orders))
	for _, order := range f.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	order.Status = status
	return order, nil
}

func (f *fakeOrders) CountByFingerprintAndStatus(ctx context.Context, fingerprint string, statuses []string) (int, error) {
	count := 0
	for _, order := range f.orders {
		if order.Fingerprint != fingerprint {
			continue
		}
		for _, status := range statuses {
			if order.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

type fakeOrderLogs struct {
	entries []*models.OrderLog
}

func (f *fakeOrderLogs) Create(ctx context.Context, log *models.OrderLog) error {
	log.CreatedAt = time.Now()
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeOrderLogs) GetRecentByFingerprint(ctx context.Context, fingerprint string, limit int) ([]*models.OrderLog, error) {
	var logs []*models.OrderLog
	for i := len(f.entries) - 1; i >= 0 && len(logs) < limit; i-- {
		if f.entries[i].Fingerprint == fingerprint {
			logs = append(logs, f.entries[i])
		}
	}
	return logs, nil
}

type fakeFoodRequests struct {
	requests map[string]*models.FoodRequest
}

func newFakeFoodRequests() *fakeFoodRequests {
	return &fakeFoodRequests{requests: make(map[string]*models.FoodRequest)}
}

func (f *fakeFoodRequests) Create(ctx context.Context, fr *models.FoodRequest) (*models.FoodRequest, error) {
	fr.ID = uuid.New().String()
	fr.Status = models.FoodRequestPending
	fr.CreatedAt = time.Now()
	f.requests[fr.ID] = fr
	return fr, nil
}

func (f *fakeFoodRequests) GetByID(ctx context.Context, id string) (*models.FoodRequest, error) {
	fr, ok := f.requests[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return fr, nil
}

func (f *fakeFoodRequests) List(ctx context.Context, limit, offset int) ([]*models.FoodRequest, error) {
	requests := make([]*models.FoodRequest, 0, len(f.requests))
	for _, fr := range f.requests {
		requests = append(requests, fr)
	}
	return requests, nil
}

func (f *fakeFoodRequests) UpdateStatus(ctx context.Context, id, status string) (*models.FoodRequest, error) {
	fr, ok := f.requests[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	fr.Status = status
	return fr, nil
}

type fakeProducts struct {
	products map[string]*models.Product
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{products: make(map[string]*models.Product)}
}

func (f *fakeProducts) List(ctx context.Context) ([]*models.Product, error) {
	products := make([]*models.Product, 0, len(f.products))
	for _, p := range f.products {
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeProducts) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.ID = uuid.New().String()
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProducts) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	if _, ok := f.products[p.ID]; !ok {
		return nil, models.ErrNotFound
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProducts) Delete(ctx context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProducts) Count(ctx context.Context) (int64, error) {
	return int64(len(f.products)), nil
}

type fakeAdmins struct {
	byEmail map[string]*models.Admin
	byID    map[string]*models.Admin
}

func newFakeAdmins() *fakeAdmins {
	return &fakeAdmins{
		byEmail: make(map[string]*models.Admin),
		byID:    make(map[string]*models.Admin),
	}
}

func (f *fakeAdmins) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	admin, ok := f.byEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return admin, nil
}

func (f *fakeAdmins) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	admin, ok := f.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return admin, nil
}

func (f *fakeAdmins) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = uuid.New().String()
	f.byEmail[admin.Email] = admin
	f.byID[admin.ID] = admin
	return admin, nil
}

func (f *fakeAdmins) SetTOTPSecret(ctx context.Context, id, secret string) error {
	admin, ok := f.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	admin.TOTPSecret = &secret
	admin.TOTPEnabled = false
	return nil
}

func (f *fakeAdmins) EnableTOTP(ctx context.Context, id string) error {
	admin, ok := f.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	admin.TOTPEnabled = true
	return nil
}

type fakeNotifier struct {
	orders   []*models.Order
	requests []*models.FoodRequest
}

func (f *fakeNotifier) NotifyOrder(ctx context.Context, order *models.Order) {
	f.orders = append(f.orders, order)
}

func (f *fakeNotifier) NotifyFoodRequest(ctx context.Context, request *models.FoodRequest) {
	f.requests = append(f.requests, request)
}

// apiFixture wires the full /api router over in-memory stores.
type apiFixture struct {
	router   *chi.Mux
	attempts *fakeAttempts
	devices  *fakeDevices
	orders   *fakeOrders
	logs     *fakeOrderLogs
	requests *fakeFoodRequests
	products *fakeProducts
	admins   *fakeAdmins
	notifier *fakeNotifier
	tokens   *auth.TokenManager
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	f := &apiFixture{
		attempts: newFakeAttempts(),
		devices:  newFakeDevices(),
		orders:   newFakeOrders(),
		logs:     &fakeOrderLogs{},
		requests: newFakeFoodRequests(),
		products: newFakeProducts(),
		admins:   newFakeAdmins(),
		notifier: &fakeNotifier{},
		tokens:   auth.NewTokenManager("test-secret-that-is-long-enough-0123456789", time.Hour),
	}

	abuse := services.NewAbuseService(f.attempts, services.AbuseConfig{
		MaxFailedAttempts: 2,
		BlockDuration:     24 * time.Hour,
	}, logger)
	deviceSec := services.NewDeviceSecurityService(f.devices, 2, logger)
	gate := services.NewAdmissionGate(abuse, deviceSec)
	validator := services.NewOrderValidator(f.orders, 2, logger)
	audit := pkglogger.NewAuditLogger(logger)

	orderService := services.NewOrderService(
		f.orders, f.logs, gate, validator, abuse, deviceSec,
		f.notifier, "919812345670", logger, audit,
	)
	foodRequestService := services.NewFoodRequestService(f.requests, gate, f.notifier, logger)
	productService := services.NewProductService(f.products, logger)
	adminService := services.NewAdminService(
		f.admins, deviceSec, f.logs,
		f.tokens, auth.NewTOTPManager("bh1mart-test"),
		auth.NewTimingDelay(auth.TimingConfig{}), logger, audit,
	)

	ipConfig := &pkghttp.IPConfig{}
	f.router = chi.NewRouter()
	f.router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r,
			handlers.NewOrderHandler(orderService, ipConfig),
			handlers.NewFoodRequestHandler(foodRequestService, ipConfig),
			handlers.NewProductHandler(productService),
			handlers.NewAdminHandler(adminService),
			f.tokens,
			middleware.RateLimitConfig{Requests: 1000, Window: 10 * time.Minute},
		)
	})
	return f
}

func (f *apiFixture) seedAdmin(t *testing.T, email, password string) *models.Admin {
	t.Helper()
	hash, err := pkgauth.HashPassword(password)
	require.NoError(t, err)

	admin, err := f.admins.Create(context.Background(), &models.Admin{
		Email:        email,
		PasswordHash: hash,
		Name:         "Store Owner",
	})
	require.NoError(t, err)
	return admin
}

func (f *apiFixture) adminToken(t *testing.T, admin *models.Admin) string {
	t.Helper()
	token, err := f.tokens.Generate(admin.ID, admin.Email)
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:54321"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func orderPayload(fingerprint string) map[string]any {
	return map[string]any{
		"name":        "Rahul Sharma",
		"phone":       "9812345670",
		"room":        "A-201",
		"fingerprint": fingerprint,
		"items": []map[string]any{
			{"name": "Maggi", "price": 30, "quantity": 2},
			{"name": "Kurkure", "price": 35, "quantity": 1},
		},
	}
}
