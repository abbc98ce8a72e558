package server

import (
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/cache"
	"github.com/aTrapDeer/portfolio-backend/internal/config"
	"github.com/aTrapDeer/portfolio-backend/internal/contact"
	"github.com/aTrapDeer/portfolio-backend/internal/content"
	"github.com/aTrapDeer/portfolio-backend/internal/httpx"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/mailer"
	"github.com/aTrapDeer/portfolio-backend/internal/media"
	"github.com/aTrapDeer/portfolio-backend/internal/ratelimit"
	"github.com/aTrapDeer/portfolio-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Services are the collaborators the routes need. Anything left nil gets a
// local default: no email, no media host, in-process rate limits.
type Services struct {
	Config   *config.Config
	DB       *gorm.DB
	Mailer   mailer.Mailer
	Uploader media.Uploader
	Limits   ratelimit.Store
	Notifier content.Notifier
	Log      zerolog.Logger
}

type resource interface {
	RegisterRoutes(router chi.Router, gate *auth.Gate)
}

func NewRouter(s Services) http.Handler {
	cfg := s.Config
	log := s.Log

	if s.Mailer == nil {
		s.Mailer = mailer.NewSMTP(config.SMTPConfig{}, log)
	}
	if s.Uploader == nil {
		s.Uploader = media.Unconfigured{}
	}
	if s.Limits == nil {
		s.Limits = ratelimit.NewMemoryStore(limitPolicy(cfg.RateLimit))
	}

	tokens := auth.NewTokens(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL())
	gate := auth.NewGate(tokens, cfg.Auth.CookieName, log)
	cookie := auth.CookieOptions{Name: cfg.Auth.CookieName, Secure: cfg.IsProduction()}

	deps := content.Deps{
		DB:        s.DB,
		Cache:     cache.New(cfg.Cache.TTL()),
		Notifier:  s.Notifier,
		Validator: validation.New(),
		Log:       log,
	}
	profile := content.NewProfile(deps)

	resources := []resource{
		content.NewBioHandler(profile, deps),
		content.NewHandler[content.Skill]("skills", "Skill", deps),
		content.NewHandler[content.Experience]("experience", "Experience", deps),
		content.NewHandler[content.Education]("education", "Education", deps),
		content.NewHandler[content.Project]("projects", "Project", deps),
		media.NewHandler(s.Uploader, profile, log),
	}

	authHandler := auth.NewHandler(auth.NewService(auth.NewRepository(s.DB), tokens), gate, cookie, log)
	contactHandler := contact.NewHandler(contact.NewService(s.DB, s.Mailer, cfg.SMTP.To, log), log)
	limit := ratelimit.Middleware(s.Limits, "contact", log)
	schemas := content.NewSchemas(map[string]any{"contact": contact.Submission{}})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if cfg.Server.TrustProxy {
		router.Use(middleware.RealIP)
	}
	router.Use(logger.Middleware(log))
	router.Use(middleware.Recoverer)
	router.Use(corsHandler(cfg.Server.CORSOrigins))

	router.Get("/health", health(s.DB))

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		for _, res := range resources {
			res.RegisterRoutes(r, gate)
		}
		contactHandler.RegisterRoutes(r, gate, limit)
		schemas.RegisterRoutes(r)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondWithError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}

func limitPolicy(cfg config.RateLimitConfig) ratelimit.Policy {
	policy := ratelimit.Policy{Limit: cfg.Limit, Window: cfg.Window()}
	if policy.Limit <= 0 || policy.Window <= 0 {
		return ratelimit.DefaultPolicy()
	}
	return policy
}

// CORS for the frontend deployments. Credentials are only allowed with an
// explicit origin list.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: len(origins) > 0,
	})
	return c.Handler
}

func health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			httpx.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
