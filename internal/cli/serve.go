package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the escalation monitor",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := newContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.auth.BootstrapAdmin(ctx); err != nil {
		logger.Error("bootstrap admin failed", zap.Error(err))
	}
	if _, err := c.complaints.RebuildIndex(ctx); err != nil {
		logger.Warn("geo index rebuild failed; duplicate checks may miss existing complaints", zap.Error(err))
	}

	app := newApp(c)

	var wg sync.WaitGroup
	if cfg.Escalation.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.monitor.Run(ctx)
		}()
	} else {
		logger.Warn("escalation monitor disabled; relying on on-read and manual sweeps")
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-listenErr:
		cancel()
	}

	if shutdownErr := app.Shutdown(); shutdownErr != nil {
		logger.Warn("http shutdown", zap.Error(shutdownErr))
	}
	wg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newApp(c *container) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               c.cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, c.logger.Named("http"), c.metrics, c.cfg.App.RequestTimeout())

	var limiter fiber.Handler
	if c.redis.Enabled() {
		counter := httptransport.NewRedisSubmissionCounter(c.redis.Client, "complaints:ratelimit:")
		limiter = httptransport.SubmissionRateLimiter(counter, c.cfg.RateLimit.ComplaintsPerDay, c.logger.Named("ratelimit"))
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(c.cfg.App.Name, c.cfg.App.Version, map[string]handlers.Dependency{
			"postgres": c.postgres,
			"redis":    c.redis,
		}),
		Users:          handlers.NewUsersHandler(c.auth),
		Complaints:     handlers.NewComplaintsHandler(c.complaints),
		Reports:        handlers.NewReportsHandler(c.reports),
		Admin:          handlers.NewAdminHandler(c.monitor),
		AuthMiddleware: auth.NewAuthMiddleware(c.auth.TokenManager(), c.users),
		RateLimiter:    limiter,
		Metrics:        c.metrics,
	})
	return app
}
