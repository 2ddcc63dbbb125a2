package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/stockroom/backend/docs"
	"github.com/stockroom/backend/internal/apperror"
	"github.com/stockroom/backend/internal/logger"
	"github.com/stockroom/backend/internal/middleware"
	"github.com/stockroom/backend/internal/services"
)

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	Logger *zap.Logger
	Items  services.ItemService
	// Auth is nil when GitHub login is not configured; the auth routes are
	// then not mounted.
	Auth        *AuthHandler
	RequireAuth bool
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	errorHandler := middleware.NewErrorHandler(cfg.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logger.RequestLogger(cfg.Logger))
	r.Use(errorHandler.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Set before any subrouter is mounted so they inherit both.
	r.NotFound(statusPipeline(errorHandler, cfg.Logger, "notFound", http.StatusNotFound, "Route not found").ServeHTTP)
	r.MethodNotAllowed(statusPipeline(errorHandler, cfg.Logger, "methodNotAllowed", http.StatusMethodNotAllowed, "Method not allowed").ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api-docs/index.html", http.StatusMovedPermanently)
	})
	r.Get("/api-docs/*", httpSwagger.Handler(httpSwagger.URL("/api-docs/doc.json")))

	base := NewPipeline(errorHandler, cfg.Logger)
	if cfg.RequireAuth && cfg.Auth != nil {
		base = base.With(cfg.Auth.RequireSession())
	}

	items := NewItemHandler(cfg.Items, cfg.Logger)
	r.Route("/api/items", func(r chi.Router) {
		r.Method(http.MethodGet, "/", base.With(Stage{"listItems", items.ListItems}))
		r.Method(http.MethodPost, "/", base.With(ValidateCreate(), Stage{"createItem", items.CreateItem}))

		r.Route("/{id}", func(r chi.Router) {
			r.Method(http.MethodGet, "/", base.With(ValidateID(), Stage{"getItem", items.GetItem}))
			r.Method(http.MethodPut, "/", base.With(ValidateID(), ValidateUpdate(), Stage{"updateItem", items.UpdateItem}))
			r.Method(http.MethodDelete, "/", base.With(ValidateID(), Stage{"deleteItem", items.DeleteItem}))
		})
	})

	if cfg.Auth != nil {
		session := NewPipeline(errorHandler, cfg.Logger, cfg.Auth.LoadSession())
		r.Method(http.MethodGet, "/login", session.With(Stage{"login", cfg.Auth.Login}))
		r.Method(http.MethodGet, "/github/callback", session.With(Stage{"oauthCallback", cfg.Auth.Callback}))
		r.Method(http.MethodGet, "/logout", session.With(Stage{"logout", cfg.Auth.Logout}))
		r.Method(http.MethodGet, "/auth/status", session.With(Stage{"authStatus", cfg.Auth.Status}))
	}

	return r
}

// statusPipeline answers every request with a fixed status and message.
func statusPipeline(errors *middleware.ErrorHandler, logger *zap.Logger, name string, status int, message string) *Pipeline {
	return NewPipeline(errors, logger, Stage{Name: name, Run: func(*Exchange) error {
		return apperror.WithStatus(status, message)
	}})
}
