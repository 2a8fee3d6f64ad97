package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bh1mart/bh1mart/internal/handlers"
	"github.com/bh1mart/bh1mart/internal/models"
)

func TestSubmitOrder_Accepted(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/order", "", orderPayload("fp-1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp handlers.SubmitOrderResponse
	decodeJSON(t, rec, &resp)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, 95, resp.Total)
	assert.Contains(t, resp.WhatsAppLink, "https://wa.me/919812345670?text=")

	stored := f.orders.orders[resp.OrderID]
	require.NotNil(t, stored)
	assert.Equal(t, "9812345670", stored.Phone)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Len(t, f.notifier.orders, 1)
}

func TestSubmitOrder_MalformedBody(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/order", "", map[string]any{"name": "Rahul"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitOrder_SoftRejectionKeepsReason(t *testing.T) {
	f := newAPIFixture(t)

	payload := orderPayload("fp-1")
	payload["room"] = "A201"
	rec := f.do(t, http.MethodPost, "/api/order", "", payload)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "invalid_order", resp["error"])
	assert.Contains(t, resp["message"], "Room")
}

func TestSubmitOrder_HardRejectionIsGeneric(t *testing.T) {
	f := newAPIFixture(t)

	payload := orderPayload("fp-1")
	payload["phone"] = "9999999999"
	rec := f.do(t, http.MethodPost, "/api/order", "", payload)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Invalid order information. Please check your details and try again.", resp["message"])
	assert.Equal(t, 1, f.attempts.records["fp-1"].FailedAttempts)
	assert.Equal(t, 1, f.devices.records["fp-1"].InvalidAttempts)
}

func TestSubmitOrder_BlockedAfterRepeatedFraud(t *testing.T) {
	f := newAPIFixture(t)

	payload := orderPayload("fp-1")
	payload["phone"] = "9999999999"
	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodPost, "/api/order", "", payload)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	}

	// Clean data no longer helps; the device is turned away at the gate.
	rec := f.do(t, http.MethodPost, "/api/order", "", orderPayload("fp-1"))
	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Contains(t, resp["message"], "temporarily blocked")
	assert.Empty(t, f.orders.orders)
}

func TestGetOrder_RoundTrip(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/order", "", orderPayload("fp-1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.SubmitOrderResponse
	decodeJSON(t, rec, &created)

	rec = f.do(t, http.MethodGet, "/api/order/"+created.OrderID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order handlers.OrderResponse
	decodeJSON(t, rec, &order)
	assert.Equal(t, "Rahul Sharma", order.Name)
	assert.Equal(t, "A-201", order.Room)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/order/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrderQR_ReturnsPNG(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/order", "", orderPayload("fp-1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.SubmitOrderResponse
	decodeJSON(t, rec, &created)

	rec = f.do(t, http.MethodGet, "/api/order/"+created.OrderID+"/qr", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])
}

func TestListOrders_RequiresToken(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateOrderStatus_AsAdmin(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.seedAdmin(t, "owner@example.com", "Str0ng!Passw0rd")
	token := f.adminToken(t, admin)

	rec := f.do(t, http.MethodPost, "/api/order", "", orderPayload("fp-1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created handlers.SubmitOrderResponse
	decodeJSON(t, rec, &created)

	rec = f.do(t, http.MethodPatch, "/api/admin/orders/"+created.OrderID+"/status", token,
		map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code)

	var order handlers.OrderResponse
	decodeJSON(t, rec, &order)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
}

func TestUpdateOrderStatus_UnknownStatus(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.seedAdmin(t, "owner@example.com", "Str0ng!Passw0rd")
	token := f.adminToken(t, admin)

	rec := f.do(t, http.MethodPatch, "/api/admin/orders/some-id/status", token,
		map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
