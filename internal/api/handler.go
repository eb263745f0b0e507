package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"restopos/domain"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	secret   string
	logger   *slog.Logger
	validate *validator.Validate
	hub      *eventHub
}

// New constructs a Handler.
func New(db *sqlx.DB, secret string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		db:       db,
		secret:   secret,
		logger:   logger,
		validate: newValidator(),
		hub:      newEventHub(logger),
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(h.authMiddleware)

		api.Route("/tenants", func(r chi.Router) {
			admin := r.With(h.requireRole(domain.RoleAdmin))
			admin.Post("/", h.createTenant)
			r.Get("/", h.listTenants)
			r.Get("/{id}", h.getTenant)
			admin.Put("/{id}", h.updateTenant)
			admin.Put("/{id}/toggle-active", h.toggleTenant)
		})

		api.Route("/branches", func(r chi.Router) {
			mgr := r.With(h.requireRole(domain.RoleAdmin, domain.RoleManager))
			mgr.Post("/", h.createBranch)
			r.Get("/", h.listBranches)
			r.Get("/{id}", h.getBranch)
			mgr.Put("/{id}", h.updateBranch)
			mgr.Put("/{id}/toggle-active", h.toggleBranch)
		})

		api.Route("/staff", func(r chi.Router) {
			r.Use(h.requireRole(domain.RoleAdmin, domain.RoleManager))
			r.Post("/", h.createStaff)
			r.Get("/", h.listStaff)
			r.Get("/{id}", h.getStaff)
			r.Put("/{id}", h.updateStaff)
			r.Put("/{id}/toggle-active", h.toggleStaff)
		})

		api.Route("/categories", func(r chi.Router) {
			mgr := r.With(h.requireRole(domain.RoleAdmin, domain.RoleManager))
			mgr.Post("/", h.createCategory)
			r.Get("/", h.listCategories)
			mgr.Put("/{id}", h.updateCategory)
			mgr.Put("/{id}/toggle-active", h.toggleCategory)
		})

		api.Route("/items", func(r chi.Router) {
			mgr := r.With(h.requireRole(domain.RoleAdmin, domain.RoleManager))
			mgr.Post("/", h.createItem)
			r.Get("/", h.listItems)
			r.Get("/{id}", h.getItem)
			mgr.Put("/{id}", h.updateItem)
			mgr.Put("/{id}/toggle-active", h.toggleItem)
			// Availability flips during service, so cashiers may toggle it.
			r.Put("/{id}/toggle-available", h.toggleItemAvailability)
		})

		api.Route("/customers", func(r chi.Router) {
			r.Post("/", h.createCustomer)
			r.Get("/", h.listCustomers)
			r.Put("/{id}", h.updateCustomer)
			r.Put("/{id}/toggle-active", h.toggleCustomer)
		})

		api.Route("/tables", func(r chi.Router) {
			r.Post("/", h.createTable)
			r.Get("/", h.listTables)
			r.Put("/{id}", h.updateTable)
			r.Put("/{id}/toggle-active", h.toggleTable)
		})

		api.Route("/kitchens", func(r chi.Router) {
			r.Post("/", h.createKitchen)
			r.Get("/", h.listKitchens)
			r.Put("/{id}", h.updateKitchen)
			r.Put("/{id}/toggle-active", h.toggleKitchen)
		})

		api.Get("/order-types", h.listOrderTypes)
		api.Get("/payment-modes", h.listPaymentModes)

		api.Route("/stocks", func(r chi.Router) {
			r.Post("/", h.postStockMovement)
			r.Get("/", h.listStockMovements)
			r.Get("/low", h.lowStockAlerts)
		})

		api.Route("/orders", func(r chi.Router) {
			r.Post("/", h.submitOrder)
			r.Get("/", h.listOrders)
			r.Get("/events", h.orderEvents)
			r.Get("/{id}", h.getOrder)
			r.Put("/{id}/status", h.updateOrderStatus)
			r.Delete("/{id}", h.deleteOrder)
		})

		api.Route("/reports", func(r chi.Router) {
			r.Use(h.requireRole(domain.RoleAdmin, domain.RoleManager))
			r.Get("/sales", h.salesReport)
			r.Get("/sales/daily", h.dailySales)
			r.Get("/sales/monthly", h.monthlySales)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
