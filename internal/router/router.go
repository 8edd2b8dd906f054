package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/repairbox/api/internal/config"
	"github.com/repairbox/api/internal/database"
	"github.com/repairbox/api/internal/handler"
	mw "github.com/repairbox/api/internal/middleware"
	"github.com/repairbox/api/internal/notify"
	"github.com/repairbox/api/internal/service"
	"github.com/repairbox/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // SvelteKit dev server
			"http://localhost:3000",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket board (handles auth internally via query param)
	r.Get("/ws/board", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	orderService := service.NewOrderService(
		queries,
		pool,
		func(db database.DBTX) service.Store {
			return database.New(db)
		},
		NewSender(cfg),
		hub,
	)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Staff accounts (MANAGER only)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole("MANAGER"))
			userHandler := handler.NewUserHandler(queries)
			r.Route("/users", userHandler.RegisterRoutes)
		})

		// Customer directory
		customerHandler := handler.NewCustomerHandler(queries)
		r.Route("/customers", customerHandler.RegisterRoutes)

		// Master-data lookups for the intake form
		lookupHandler := handler.NewLookupHandler(queries)
		lookupHandler.RegisterRoutes(r)

		// Repair orders and their checklists
		orderHandler := handler.NewOrderHandler(orderService, queries)
		checklistHandler := handler.NewChecklistHandler(orderService)
		r.Route("/orders", func(r chi.Router) {
			orderHandler.RegisterRoutes(r)
			r.Route("/{id}", func(r chi.Router) {
				orderHandler.RegisterDetailRoutes(r)
				checklistHandler.RegisterRoutes(r)
			})
		})
	})

	return r
}

// NewSender picks the customer notification channel: Twilio when credentials
// are configured, the log otherwise.
func NewSender(cfg *config.Config) notify.Sender {
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		return notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom, cfg.TwilioWhatsAppFrom)
	}
	return notify.LogSender{}
}
