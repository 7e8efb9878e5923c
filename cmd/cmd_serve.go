package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"storeit/config"
	"storeit/jobs"
	"storeit/middleware"
	"storeit/routes"
	"storeit/services"
	"storeit/store"
	"storeit/utils"
)

type ServeCmd struct {
	flags *Flags
}

func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API and background notification jobs",
		Action: cmd.run,
	})
	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config
	cfg.LogConfig(log.Logger)

	dbs, err := connectDatabases(ctx, cfg)
	if err != nil {
		return err
	}
	defer disconnectDatabases()

	if cfg.MigrateOnStart {
		if err := store.EnsureIndexes(ctx, dbs.analytics); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	storage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	container := routes.NewServiceContainer(
		dbs.app,
		dbs.analytics,
		storage,
		services.FileLimits{MaxFileSize: cfg.MaxFileSize, MaxUserStorage: cfg.MaxUserStorage},
		routes.AuthConfig{JWTSecret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestContext(),
		middleware.RequestLogger(utils.Component("http")),
		cors.New(corsConfig(cfg.AllowedOrigins)),
		limiter.Middleware(),
	)

	routes.RegisterHealthRoutes(router, func(ctx context.Context) error {
		return dbs.client.Ping(ctx, nil)
	})
	routes.SetupRoutesWithContainer(router.Group("/api"), container)

	notificationJobs := jobs.NewNotificationJobs(
		container.Analytics,
		container.Notifications,
		container.Users,
		cfg.DigestInterval,
		cfg.StorageAlertThreshold,
	)
	go notificationJobs.Start(ctx)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting storeit server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := config.CreateContext(15 * time.Second)
	defer cancel()

	log.Info().Msg("shutting down server")
	return server.Shutdown(shutdownCtx)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}

	c.AllowOrigins = origins
	return c
}
