package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bh1mart/bh1mart/internal/models"
	"github.com/bh1mart/bh1mart/internal/services"
	pkghttp "github.com/bh1mart/bh1mart/pkg/http"
)

// ProductHandler handles catalog HTTP endpoints
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// ProductRequest represents the request body for creating or updating a product
type ProductRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"required,max=50"`
	Price    int    `json:"price" validate:"required,gte=1"`
	Image    string `json:"image" validate:"max=200"`
	Priority int    `json:"priority" validate:"gte=0"`
	InStock  bool   `json:"in_stock"`
}

// ProductResponse represents a product in the HTTP response
type ProductResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int    `json:"price"`
	Image    string `json:"image,omitempty"`
	Priority int    `json:"priority"`
	InStock  bool   `json:"in_stock"`
}

func productModelToResponse(p *models.Product) *ProductResponse {
	return &ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Image:    p.Image,
		Priority: p.Priority,
		InStock:  p.InStock,
	}
}

// RegisterPublicRoutes registers the catalog read route
func (h *ProductHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/products", h.List)
}

// RegisterAdminRoutes registers the catalog management routes
func (h *ProductHandler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/products", h.Create)
	router.Post("/products/seed", h.Seed)
	router.Put("/products/{id}", h.Update)
	router.Delete("/products/{id}", h.Delete)
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to list products")
		return
	}

	responses := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, productModelToResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": responses})
}

// Create handles POST /api/admin/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	product, err := h.service.Create(r.Context(), &models.Product{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Image:    req.Image,
		Priority: req.Priority,
		InStock:  req.InStock,
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid product")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, productModelToResponse(product))
}

// Seed handles POST /api/admin/products/seed, a one-time catalog bootstrap.
func (h *ProductHandler) Seed(w http.ResponseWriter, r *http.Request) {
	seeded, err := h.service.Seed(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "Catalog already seeded")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to seed catalog")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"seeded": seeded})
}

// Update handles PUT /api/admin/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	product, err := h.service.Update(r.Context(), &models.Product{
		ID:       chi.URLParam(r, "id"),
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Image:    req.Image,
		Priority: req.Priority,
		InStock:  req.InStock,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Product not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, productModelToResponse(product))
}

// Delete handles DELETE /api/admin/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Product not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
