// Package server wires the HTTP API together and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/config"
	"github.com/aTrapDeer/portfolio-backend/internal/contact"
	"github.com/aTrapDeer/portfolio-backend/internal/content"
	"github.com/aTrapDeer/portfolio-backend/internal/db"
	"github.com/aTrapDeer/portfolio-backend/internal/mailer"
	"github.com/aTrapDeer/portfolio-backend/internal/media"
	"github.com/aTrapDeer/portfolio-backend/internal/ratelimit"
	"github.com/aTrapDeer/portfolio-backend/internal/revalidate"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type App struct {
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client
	server *http.Server
	log    zerolog.Logger
}

// Models is every table the API owns.
func Models() []any {
	return append([]any{&auth.Admin{}, &contact.Message{}}, content.Models()...)
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	log.Info().Str("env", cfg.Env).Msg("initializing application")

	database, err := db.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database, Models()...); err != nil {
		db.Close(database)
		return nil, err
	}

	app := &App{config: cfg, db: database, log: log}

	policy := limitPolicy(cfg.RateLimit)
	var limits ratelimit.Store = ratelimit.NewMemoryStore(policy)
	if cfg.Redis.Addr != "" {
		client, err := connectRedis(cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, rate limits are per instance")
		} else {
			app.redis = client
			limits = ratelimit.NewRedisStore(client, policy)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("rate limits shared through redis")
		}
	}

	smtp := mailer.NewSMTP(cfg.SMTP, log)
	if !smtp.Configured() {
		log.Warn().Msg("email is not configured, contact notifications and replies will fail")
	}

	var uploader media.Uploader = media.Unconfigured{}
	if cld, err := media.NewCloudinary(cfg.Cloudinary); err != nil {
		log.Warn().Err(err).Msg("uploads disabled")
	} else {
		uploader = cld
	}

	revalidator := revalidate.New(cfg.Revalidate.URL, cfg.Revalidate.Secret, log)
	if !revalidator.Enabled() {
		log.Info().Msg("NEXT_REVALIDATION_URL is not set, frontend revalidation disabled")
	}

	handler := NewRouter(Services{
		Config:   cfg,
		DB:       database,
		Mailer:   smtp,
		Uploader: uploader,
		Limits:   limits,
		Notifier: revalidator,
		Log:      log,
	})

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	log.Info().Msg("application initialized successfully")
	return app, nil
}

func connectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		// calls are attempted once, a failed counter lets the request through
		MaxRetries: -1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Run serves until Shutdown is called.
func (a *App) Run() error {
	a.log.Info().Str("port", a.config.Server.Port).Msg("server starting")
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info().Msg("shutting down server")
	err := a.server.Shutdown(ctx)

	if a.redis != nil {
		if cerr := a.redis.Close(); cerr != nil {
			a.log.Warn().Err(cerr).Msg("failed to close redis")
		}
	}
	if cerr := db.Close(a.db); cerr != nil {
		a.log.Warn().Err(cerr).Msg("failed to close database")
	}
	return err
}
