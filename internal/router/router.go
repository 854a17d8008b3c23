package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"storefront-backend/internal/handlers"
	"storefront-backend/internal/logger"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/websocket"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Product   *handlers.ProductHandler
	Assistant *handlers.AssistantHandler
	Admin     *handlers.AdminHandler
}

func New(
	jwtAuth *middleware.JWTAuth,
	h Handlers,
	wsHub *websocket.Hub,
	log *logger.Logger,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	// Every assistant call costs a model round trip
	assistantLimiter := middleware.NewRateLimiter(20, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Get("/me", h.Auth.Me)
			})
		})

		// ──── Catalog Routes (public) ────
		r.Get("/categories", h.Product.Categories)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Post("/by-ids", h.Product.ByIDs)
			r.Get("/{id}", h.Product.Get)
		})

		// ──── Assistant Routes ────
		r.Route("/assistant", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.With(assistantLimiter.Middleware).Post("/", h.Assistant.Ask)
			r.Get("/history", h.Assistant.History)
			r.Delete("/history", h.Assistant.ClearHistory)
		})

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(middleware.RequireAdmin)
			r.Post("/generate-description", h.Admin.GenerateDescription)
			r.Post("/seed-products", h.Admin.SeedProducts)
			r.Get("/products/export", h.Admin.ExportProducts)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
