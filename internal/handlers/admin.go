package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bh1mart/bh1mart/internal/auth"
	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/bh1mart/bh1mart/internal/services"
	pkghttp "github.com/bh1mart/bh1mart/pkg/http"
)

// AdminHandler handles operator login and the security dashboard endpoints
type AdminHandler struct {
	service *services.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// LoginRequest represents the request body for admin login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	TOTPCode string `json:"totp_code" validate:"omitempty,len=6,numeric"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ConfirmTOTPRequest represents the request body for finishing TOTP enrollment
type ConfirmTOTPRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// DeviceReportResponse is one dashboard row.
type DeviceReportResponse struct {
	Fingerprint     string              `json:"fingerprint"`
	InvalidAttempts int                 `json:"invalid_attempts"`
	IsBlocked       bool                `json:"is_blocked"`
	BlockedReason   string              `json:"blocked_reason,omitempty"`
	LastSeen        string              `json:"last_seen"`
	RecentLogs      []*OrderLogResponse `json:"recent_logs"`
}

// OrderLogResponse is one audit entry in a dashboard row.
type OrderLogResponse struct {
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	IP        string `json:"ip"`
	CreatedAt string `json:"created_at"`
}

// RegisterPublicRoutes registers the unauthenticated admin routes
func (h *AdminHandler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/admin/login", h.Login)
}

// RegisterAdminRoutes registers the token-protected admin routes
func (h *AdminHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/verify", h.Verify)
	router.Get("/blocked-devices", h.BlockedDevices)
	router.Post("/unblock-device/{fingerprint}", h.UnblockDevice)
	router.Post("/totp/setup", h.SetupTOTP)
	router.Post("/totp/confirm", h.ConfirmTOTP)
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	token, admin, err := h.service.Login(r.Context(), req.Email, req.Password, req.TOTPCode)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Invalid credentials")
			return
		}
		pkghttp.WriteInternalError(w, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, &LoginResponse{
		Token: token,
		Email: admin.Email,
		Name:  admin.Name,
	})
}

// Verify handles GET /api/admin/verify; reaching it at all means the token
// middleware accepted the session.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Invalid session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"email": claims.Email,
	})
}

// BlockedDevices handles GET /api/admin/blocked-devices
func (h *AdminHandler) BlockedDevices(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	dashboard, err := h.service.Dashboard(r.Context(), limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to load security dashboard")
		return
	}

	devices := make([]*DeviceReportResponse, 0, len(dashboard.Devices))
	for _, report := range dashboard.Devices {
		logs := make([]*OrderLogResponse, 0, len(report.RecentLogs))
		for _, entry := range report.RecentLogs {
			logs = append(logs, &OrderLogResponse{
				Status:    entry.Status,
				Reason:    entry.Reason,
				IP:        entry.IP,
				CreatedAt: entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		}
		devices = append(devices, &DeviceReportResponse{
			Fingerprint:     report.Device.Fingerprint,
			InvalidAttempts: report.Device.InvalidAttempts,
			IsBlocked:       report.Device.IsBlocked,
			BlockedReason:   report.Device.BlockedReason,
			LastSeen:        report.Device.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
			RecentLogs:      logs,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices":       devices,
		"blocked_count": dashboard.BlockedCount,
	})
}

// UnblockDevice handles POST /api/admin/unblock-device/{fingerprint}
func (h *AdminHandler) UnblockDevice(w http.ResponseWriter, r *http.Request) {
	fingerprint := chi.URLParam(r, "fingerprint")
	if fingerprint == "" {
		pkghttp.WriteBadRequest(w, "Fingerprint is required")
		return
	}

	actor := ""
	if claims := auth.GetAdminFromContext(r); claims != nil {
		actor = claims.Email
	}

	if err := h.service.UnblockDevice(r.Context(), fingerprint, actor); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Device not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to unblock device")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Device unblocked"})
}

// SetupTOTP handles POST /api/admin/totp/setup
func (h *AdminHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Invalid session")
		return
	}

	secret, qrDataURL, err := h.service.SetupTOTP(r.Context(), claims.AdminID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to start TOTP enrollment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":  secret,
		"qr_code": qrDataURL,
	})
}

// ConfirmTOTP handles POST /api/admin/totp/confirm
func (h *AdminHandler) ConfirmTOTP(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Invalid session")
		return
	}

	var req ConfirmTOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ConfirmTOTP(r.Context(), claims.AdminID, req.Code); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteBadRequest(w, "Invalid code")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to enable TOTP")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "TOTP enabled"})
}
