package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mycity/intake/internal/chatbot"
	"github.com/mycity/intake/internal/config"
	"github.com/mycity/intake/internal/db"
	"github.com/mycity/intake/internal/rate"
	"github.com/mycity/intake/internal/repository/sqlite"
	"github.com/mycity/intake/internal/storage"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, d *db.DB, photos *storage.DiskStore, queue Enqueuer) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(d, logger)

	// Create handlers
	systemHandler := NewSystemHandler(d)
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	complaintsHandler := NewComplaintsHandler(repo, photos, queue, cfg.MaxUploadBytes)
	chatbotHandler := NewChatbotHandler(chatbot.New(repo))

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")

	// Uploaded photos
	if photos != nil {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(photos.Dir()))))
	}

	// All /api routes share one per-IP rate limiter
	rateMW := RateLimitMiddleware(rate.NewLimiter(), cfg.RateLimit, cfg.RateWindow)

	// Public endpoints; registered before the token-gated subrouter so mux
	// tries them first
	api := r.PathPrefix("/api").Subrouter()
	api.Use(rateMW)
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/complaints", complaintsHandler.Submit).Methods("POST")
	api.HandleFunc("/complaints/{id}", complaintsHandler.Get).Methods("GET")
	api.HandleFunc("/resolved", complaintsHandler.ListResolved).Methods("GET")
	api.HandleFunc("/chatbot", chatbotHandler.Respond).Methods("POST")

	// Administrator-gated endpoints
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(rateMW)
	protected.Use(JWTAuthMiddleware(cfg.JWTSecret, repo))
	protected.HandleFunc("/complaints", complaintsHandler.List).Methods("GET")
	protected.HandleFunc("/complaints/{id}/status", complaintsHandler.UpdateStatus).Methods("PUT")

	return r
}
