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

// FoodRequestHandler handles food request HTTP endpoints
type FoodRequestHandler struct {
	service  *services.FoodRequestService
	ipConfig *pkghttp.IPConfig
}

// NewFoodRequestHandler creates a new FoodRequestHandler
func NewFoodRequestHandler(service *services.FoodRequestService, ipConfig *pkghttp.IPConfig) *FoodRequestHandler {
	return &FoodRequestHandler{service: service, ipConfig: ipConfig}
}

// SubmitFoodRequestRequest represents the request body for a stock request
type SubmitFoodRequestRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"required,max=20"`
	Room        string `json:"room" validate:"required,max=10"`
	FoodItem    string `json:"food_item" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Fingerprint string `json:"fingerprint" validate:"max=64"`
}

// FoodRequestResponse represents a food request in the HTTP response
type FoodRequestResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Room        string `json:"room"`
	FoodItem    string `json:"food_item"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// UpdateFoodRequestStatusRequest represents the request body for a status change
type UpdateFoodRequestStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved stocked declined"`
}

func foodRequestModelToResponse(fr *models.FoodRequest) *FoodRequestResponse {
	return &FoodRequestResponse{
		ID:          fr.ID,
		Name:        fr.Name,
		Room:        fr.Room,
		FoodItem:    fr.FoodItem,
		Description: fr.Description,
		Status:      fr.Status,
		CreatedAt:   fr.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// RegisterAdminRoutes registers the operator-facing routes
func (h *FoodRequestHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/food-requests", h.List)
	router.Patch("/food-requests/{id}/status", h.UpdateStatus)
}

// Submit handles POST /api/food-request
func (h *FoodRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitFoodRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.Submit(r.Context(), services.SubmitFoodRequestInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Room:        req.Room,
		FoodItem:    req.FoodItem,
		Description: req.Description,
		Fingerprint: req.Fingerprint,
		IP:          pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to process request")
		return
	}

	switch result.Status {
	case services.SubmitBlocked:
		pkghttp.WriteForbidden(w, result.Message)
	case services.SubmitRejected:
		pkghttp.WriteError(w, http.StatusUnprocessableEntity, "invalid_request", result.Message)
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"message": result.Message})
	}
}

// Get handles GET /api/food-request/{id}
func (h *FoodRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	fr, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Food request not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to get food request")
		return
	}
	writeJSON(w, http.StatusOK, foodRequestModelToResponse(fr))
}

// List handles GET /api/admin/food-requests
func (h *FoodRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	requests, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to list food requests")
		return
	}

	responses := make([]*FoodRequestResponse, 0, len(requests))
	for _, fr := range requests {
		responses = append(responses, foodRequestModelToResponse(fr))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requests": responses,
		"total":    len(responses),
	})
}

// UpdateStatus handles PATCH /api/admin/food-requests/{id}/status
func (h *FoodRequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateFoodRequestStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	fr, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Food request not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Unknown request status")
		default:
			pkghttp.WriteInternalError(w, "Failed to update food request")
		}
		return
	}
	writeJSON(w, http.StatusOK, foodRequestModelToResponse(fr))
}
