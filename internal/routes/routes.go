package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/bh1mart/bh1mart/internal/auth"
	"github.com/bh1mart/bh1mart/internal/handlers"
	"github.com/bh1mart/bh1mart/internal/middleware"
)

// RegisterRoutes registers all application routes under /api.
func RegisterRoutes(
	router chi.Router,
	orderHandler *handlers.OrderHandler,
	foodRequestHandler *handlers.FoodRequestHandler,
	productHandler *handlers.ProductHandler,
	adminHandler *handlers.AdminHandler,
	tokenManager *auth.TokenManager,
	submitLimit middleware.RateLimitConfig,
) {
	// Public routes. Submissions carry an IP rate limit on top of the
	// fraud-layer device gating.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(submitLimit))
		r.Post("/order", orderHandler.SubmitOrder)
		r.Post("/food-request", foodRequestHandler.Submit)
	})

	router.Get("/order/{id}", orderHandler.GetOrder)
	router.Get("/order/{id}/qr", orderHandler.GetOrderQR)
	router.Get("/food-request/{id}", foodRequestHandler.Get)
	productHandler.RegisterPublicRoutes(router)
	adminHandler.RegisterPublicRoutes(router)

	// Operator routes behind the session token.
	router.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdmin(tokenManager))

		adminHandler.RegisterAdminRoutes(r)
		orderHandler.RegisterAdminRoutes(r)
		foodRequestHandler.RegisterAdminRoutes(r)
		productHandler.RegisterAdminRoutes(r)
	})
}
