package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bh1mart/bh1mart/internal/auth"
	"github.com/bh1mart/bh1mart/internal/database"
	"github.com/bh1mart/bh1mart/internal/handlers"
	middlewareCustom "github.com/bh1mart/bh1mart/internal/middleware"
	"github.com/bh1mart/bh1mart/internal/repositories"
	"github.com/bh1mart/bh1mart/internal/routes"
	"github.com/bh1mart/bh1mart/internal/services"
	pkghttp "github.com/bh1mart/bh1mart/pkg/http"
	pkglogger "github.com/bh1mart/bh1mart/pkg/logger"
)

const testJWTSecret = "test-secret-32-characters-long-for-testing"

// TestServer runs the full HTTP stack over a real database with notifications
// captured in memory.
type TestServer struct {
	Server   *httptest.Server
	DB       *database.DB
	Tokens   *auth.TokenManager
	Notifier *CapturingNotifier
}

// NewTestServer wires repositories, services, handlers and routes exactly the
// way main does, minus the SES notifier and the background cleanup loop.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	attemptRepo := repositories.NewAttemptRepository(db)
	deviceRepo := repositories.NewDeviceSecurityRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	orderLogRepo := repositories.NewOrderLogRepository(db)
	productRepo := repositories.NewProductRepository(db)
	foodRequestRepo := repositories.NewFoodRequestRepository(db)
	adminRepo := repositories.NewAdminRepository(db)

	abuseService := services.NewAbuseService(attemptRepo, services.AbuseConfig{
		MaxFailedAttempts: 2,
		BlockDuration:     24 * time.Hour,
	}, logger)
	deviceService := services.NewDeviceSecurityService(deviceRepo, 2, logger)
	gate := services.NewAdmissionGate(abuseService, deviceService)
	validator := services.NewOrderValidator(orderRepo, 2, logger)

	notifier := &CapturingNotifier{}
	tokenManager := auth.NewTokenManager(testJWTSecret, time.Hour)
	audit := pkglogger.NewAuditLogger(logger)

	orderService := services.NewOrderService(
		orderRepo, orderLogRepo, gate, validator, abuseService, deviceService,
		notifier, "919812345670", logger, audit,
	)
	foodRequestService := services.NewFoodRequestService(foodRequestRepo, gate, notifier, logger)
	productService := services.NewProductService(productRepo, logger)
	adminService := services.NewAdminService(
		adminRepo, deviceService, orderLogRepo,
		tokenManager, auth.NewTOTPManager("bh1mart-test"),
		auth.NewTimingDelay(auth.TimingConfig{}), logger, audit,
	)

	ipConfig := &pkghttp.IPConfig{}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Route("/api", func(api chi.Router) {
		routes.RegisterRoutes(api,
			handlers.NewOrderHandler(orderService, ipConfig),
			handlers.NewFoodRequestHandler(foodRequestService, ipConfig),
			handlers.NewProductHandler(productService),
			handlers.NewAdminHandler(adminService),
			tokenManager,
			middlewareCustom.RateLimitConfig{Requests: 1000, Window: 10 * time.Minute},
		)
	})

	return &TestServer{
		Server:   httptest.NewServer(r),
		DB:       db,
		Tokens:   tokenManager,
		Notifier: notifier,
	}
}

// Close shuts down the test server.
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server.
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes a request with a Bearer token.
func (ts *TestServer) RequestWithAuth(method, path, token string, body interface{}) (*http.Response, error) {
	return ts.Request(method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// ParseJSONResponse parses a JSON response body into target.
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// GetErrorMessage extracts the message field from an error response.
func GetErrorMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if msg, ok := errResp["message"].(string); ok {
		return msg, nil
	}
	return "", nil
}
