package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/config"
	"github.com/aTrapDeer/portfolio-backend/internal/db"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/seed"
	"github.com/aTrapDeer/portfolio-backend/internal/server"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	serviceName = "portfolio-backend"
	version     = "1.0.0"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Portfolio content API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(newServeCmd(), newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logr := logger.NewWithServiceContext(cfg.Env, serviceName, version)

	if err := cfg.Validate(); err != nil {
		logr.Error().Err(err).Msg("invalid configuration")
		return err
	}

	app, err := server.New(cfg, logr)
	if err != nil {
		logr.Error().Err(err).Msg("failed to initialize application")
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logr.Error().Err(err).Msg("server failed")
		}
		return err
	case sig := <-quit:
		logr.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		logr.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	logr.Info().Msg("server exited properly")
	return nil
}

func newSeedCmd() *cobra.Command {
	var withContent bool
	var adminName string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Provision the admin login from ADMIN_EMAIL and ADMIN_PASSWORD",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logr := logger.NewWithServiceContext(cfg.Env, serviceName, version)

			database, err := db.Open(cfg.Database, logr)
			if err != nil {
				return err
			}
			defer db.Close(database)

			if err := db.Migrate(database, server.Models()...); err != nil {
				return err
			}

			opts := seed.Options{
				AdminEmail:    cfg.Admin.SeedEmail,
				AdminPassword: cfg.Admin.SeedPassword,
				AdminName:     adminName,
				Content:       withContent,
			}
			if err := seed.Run(cmd.Context(), database, opts, logr); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}

			if cfg.Admin.SeedPassword == "admin123" {
				logr.Warn().Msg("admin uses the default password, change ADMIN_PASSWORD")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withContent, "content", false, "replace all content with the bundled sample data")
	cmd.Flags().StringVar(&adminName, "name", "Admin", "display name of the admin")
	return cmd
}
