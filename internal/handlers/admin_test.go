package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bh1mart/bh1mart/internal/handlers"
	"github.com/bh1mart/bh1mart/internal/models"
)

func TestAdminLogin_Success(t *testing.T) {
	f := newAPIFixture(t)
	f.seedAdmin(t, "owner@example.com", "Str0ng!Passw0rd")

	rec := f.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{
		"email":    "owner@example.com",
		"password": "Str0ng!Passw0rd",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.LoginResponse
	decodeJSON(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "owner@example.com", resp.Email)

	// The issued token opens the protected routes.
	rec = f.do(t, http.MethodGet, "/api/admin/verify", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	f := newAPIFixture(t)
	f.seedAdmin(t, "owner@example.com", "Str0ng!Passw0rd")

	rec := f.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{
		"email":    "owner@example.com",
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLogin_MissingFields(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{
		"email": "owner@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlockedDevices_Dashboard(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.seedAdmin(t, "owner@example.com", "Str0ng!Passw0rd")
	token := f.adminToken(t, admin)

	// Two hard failures sticky-block the device.
	payload := orderPayload("fp-1")
	payload["phone"] = "9999999999"
	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodPost, "/api/order", "", payload)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/admin/blocked-devices", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Devices      []*handlers.DeviceReportResponse `json:"devices"`
		BlockedCount int64                            `json:"blocked_count"`
	}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, int64(1), resp.BlockedCount)
	require.Len(t, resp.Devices, 1)
	assert.Equal(t, "fp-1", resp.Devices[0].Fingerprint)
	assert.True(t, resp.Devices[0].IsBlocked)
	assert.NotEmpty(t, resp.Devices[0].RecentLogs)
}

func TestUnblockDevice_RestoresAccess(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.seedAdmin(t, "owner@example.com", "Str0ng!Passw0rd")
	token := f.adminToken(t, admin)

	f.devices.records["fp-1"] = &models.DeviceSecurityRecord{
		Fingerprint:     "fp-1",
		InvalidAttempts: 2,
		IsBlocked:       true,
	}

	rec := f.do(t, http.MethodPost, "/api/admin/unblock-device/fp-1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/order", "", orderPayload("fp-1"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUnblockDevice_UnknownFingerprint(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.seedAdmin(t, "owner@example.com", "Str0ng!Passw0rd")
	token := f.adminToken(t, admin)

	rec := f.do(t, http.MethodPost, "/api/admin/unblock-device/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTOTPSetupAndConfirm(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.seedAdmin(t, "owner@example.com", "Str0ng!Passw0rd")
	token := f.adminToken(t, admin)

	rec := f.do(t, http.MethodPost, "/api/admin/totp/setup", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var setup map[string]string
	decodeJSON(t, rec, &setup)
	assert.NotEmpty(t, setup["secret"])
	assert.Contains(t, setup["qr_code"], "data:image/png;base64,")

	rec = f.do(t, http.MethodPost, "/api/admin/totp/confirm", token,
		map[string]string{"code": "000000"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, f.admins.byID[admin.ID].TOTPEnabled)
}
