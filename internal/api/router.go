package api

import (
	"log/slog"

	"github.com/clipsum/backend/internal/api/handlers"
	"github.com/clipsum/backend/internal/api/middleware"
	"github.com/clipsum/backend/internal/auth"
	"github.com/clipsum/backend/internal/users"
	"github.com/clipsum/backend/internal/videos"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	UserService    *users.Service
	VideoService   *videos.Service
	Development    bool
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Development)
	userHandler := handlers.NewUserHandler(cfg.UserService, cfg.Development)
	videoHandler := handlers.NewVideoHandler(cfg.VideoService, cfg.Development)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/verify-email", authHandler.VerifyEmail)
		r.Post("/auth/request-password-reset", authHandler.RequestPasswordReset)
		r.Post("/auth/reset-password", authHandler.ResetPassword)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Post("/auth/change-password", authHandler.ChangePassword)

			r.Route("/user", func(r chi.Router) {
				r.Get("/me", userHandler.Me)
				r.Patch("/me", userHandler.UpdateMe)
			})

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", videoHandler.List)
				r.Post("/", videoHandler.Create)
				r.Get("/{id}", videoHandler.Get)
				r.Patch("/{id}", videoHandler.Update)
				r.Delete("/{id}", videoHandler.Delete)
				r.Get("/{id}/upload-url", videoHandler.UploadURL)
				r.Post("/{id}/confirm", videoHandler.Confirm)
			})
		})
	})

	return &Router{r}
}
