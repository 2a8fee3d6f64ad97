package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/bh1mart/bh1mart/internal/services"
	pkghttp "github.com/bh1mart/bh1mart/pkg/http"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	service  *services.OrderService
	ipConfig *pkghttp.IPConfig
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *services.OrderService, ipConfig *pkghttp.IPConfig) *OrderHandler {
	return &OrderHandler{service: service, ipConfig: ipConfig}
}

// Request/Response DTOs

// OrderItemRequest is one cart line in a submission.
type OrderItemRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Price    int    `json:"price" validate:"required,gte=1"`
	Quantity int    `json:"quantity" validate:"required,gte=1,lte=50"`
}

// SubmitOrderRequest represents the request body for placing an order
type SubmitOrderRequest struct {
	Name        string             `json:"name" validate:"required,max=100"`
	Phone       string             `json:"phone" validate:"required,max=20"`
	Room        string             `json:"room" validate:"required,max=10"`
	Fingerprint string             `json:"fingerprint" validate:"max=64"`
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,max=30,dive"`
	Notes       string             `json:"notes" validate:"max=500"`
}

// SubmitOrderResponse is returned for accepted orders.
type SubmitOrderResponse struct {
	OrderID      string `json:"order_id"`
	Message      string `json:"message"`
	WhatsAppLink string `json:"whatsapp_link"`
	Total        int    `json:"total"`
}

// UpdateOrderStatusRequest represents the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed delivered cancelled rejected"`
}

// OrderResponse represents an order in the HTTP response
type OrderResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Phone     string             `json:"phone"`
	Room      string             `json:"room"`
	Items     []models.OrderItem `json:"items"`
	Total     int                `json:"total"`
	Notes     string             `json:"notes,omitempty"`
	Status    string             `json:"status"`
	CreatedAt string             `json:"created_at"`
}

func orderModelToResponse(order *models.Order) *OrderResponse {
	return &OrderResponse{
		ID:        order.ID,
		Name:      order.Name,
		Phone:     order.Phone,
		Room:      order.Room,
		Items:     order.Items,
		Total:     order.Total,
		Notes:     order.Notes,
		Status:    order.Status,
		CreatedAt: order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// RegisterAdminRoutes registers the operator-facing order routes
func (h *OrderHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/orders", h.ListOrders)
	router.Patch("/orders/{id}/status", h.UpdateStatus)
}

// SubmitOrder handles POST /api/order
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	result, err := h.service.SubmitOrder(r.Context(), services.SubmitOrderInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Room:        req.Room,
		Fingerprint: req.Fingerprint,
		Items:       items,
		Notes:       req.Notes,
		IP:          pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to process order")
		return
	}

	switch result.Status {
	case services.SubmitBlocked:
		pkghttp.WriteForbidden(w, result.Message)
	case services.SubmitRejected:
		pkghttp.WriteError(w, http.StatusUnprocessableEntity, "invalid_order", result.Message)
	default:
		writeJSON(w, http.StatusCreated, &SubmitOrderResponse{
			OrderID:      result.Order.ID,
			Message:      result.Message,
			WhatsAppLink: result.WhatsAppLink,
			Total:        result.Order.Total,
		})
	}
}

// GetOrder handles GET /api/order/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Order not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to load order")
		return
	}
	writeJSON(w, http.StatusOK, orderModelToResponse(order))
}

// GetOrderQR handles GET /api/order/{id}/qr, returning the WhatsApp link as
// a PNG for the confirmation screen.
func (h *OrderHandler) GetOrderQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.OrderQR(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Order not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// ListOrders handles GET /api/admin/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.service.ListOrders(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to list orders")
		return
	}

	responses := make([]*OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, orderModelToResponse(order))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": responses,
		"total":  len(responses),
	})
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Order not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Unknown order status")
		default:
			pkghttp.WriteInternalError(w, "Failed to update order")
		}
		return
	}
	writeJSON(w, http.StatusOK, orderModelToResponse(order))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
