package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/docvault/internal/api/handlers"
	"github.com/hugh/docvault/internal/api/middleware"
	"github.com/hugh/docvault/internal/auth"
	"github.com/hugh/docvault/internal/database/models"
	"github.com/hugh/docvault/internal/documents"
	"github.com/hugh/docvault/internal/reports"
	"github.com/hugh/docvault/internal/users"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Logger      *slog.Logger
	AuthService auth.Authenticator
	Users       *users.Store
	Documents   *documents.Store
	Reports     *reports.Service
	Queue       handlers.Enqueuer // nil disables POST /ingestion/trigger

	TokenTTL       time.Duration
	SecureCookies  bool
	UploadMaxBytes int64
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
}

var (
	adminOnly     = []models.Role{models.RoleAdmin}
	uploaders     = []models.Role{models.RoleAdmin, models.RoleEditor}
	anyRegistered = []models.Role{models.RoleAdmin, models.RoleEditor, models.RoleViewer}
)

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.CSRFHeaderName},
		ExposedHeaders:   []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.CSRF())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.TokenTTL, cfg.SecureCookies)
	userHandler := handlers.NewUserHandler(cfg.Users)
	documentHandler := handlers.NewDocumentHandler(cfg.Documents, cfg.UploadMaxBytes)
	reportHandler := handlers.NewReportHandler(cfg.Reports, cfg.Queue)

	// authenticated mounts the caller and, when configured, a per-user limit.
	authenticated := func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.AuthService))
		if cfg.RateLimiter != nil {
			r.Use(middleware.RateLimit(cfg.RateLimiter))
		}
	}

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			authenticated(r)
			r.Post("/logout", authHandler.Logout)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", authHandler.Register)

		r.Group(func(r chi.Router) {
			authenticated(r)
			r.With(middleware.RequireRole(adminOnly...)).Get("/", userHandler.List)
			r.With(middleware.RequireRole(adminOnly...)).Get("/{id}", userHandler.Get)
			r.With(middleware.RequireRole(uploaders...)).Put("/{id}", userHandler.Update)
			r.With(middleware.RequireRole(adminOnly...)).Delete("/{id}", userHandler.Delete)
		})
	})

	r.Route("/documents", func(r chi.Router) {
		authenticated(r)
		r.With(middleware.RequireRole(uploaders...)).Post("/upload", documentHandler.Upload)
		r.With(middleware.RequireRole(anyRegistered...)).Get("/", documentHandler.List)
		r.With(middleware.RequireRole(anyRegistered...)).Get("/{id}", documentHandler.Get)
		r.With(middleware.RequireRole(uploaders...)).Put("/{id}", documentHandler.Update)
		r.With(middleware.RequireRole(uploaders...)).Delete("/{id}", documentHandler.Delete)
	})

	r.Route("/ingestion", func(r chi.Router) {
		authenticated(r)
		r.Use(middleware.RequireRole(adminOnly...))
		r.Get("/total-users-by-role", reportHandler.UsersByRole)
		r.Get("/documents-uploaded-by-role", reportHandler.DocumentsByRole)
		r.Get("/documents-uploaded-by-user", reportHandler.DocumentsByUser)
		r.Get("/total-documents-uploaded-by-admin-and-editor", reportHandler.AdminEditorTotal)
		r.Get("/all-documents-with-user", reportHandler.DocumentsWithUploader)
		r.Post("/trigger", reportHandler.Trigger)
	})

	return &Router{r}
}
