package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fleet-sync/core/loader"
	"fleet-sync/core/logger"
	"fleet-sync/core/middleware/auth"
	"fleet-sync/core/middleware/rayid"
	"fleet-sync/feature/history"
	"fleet-sync/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the run history and preflight API",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE:  runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer rt.close()
	logg := rt.logger

	rt.openHistory(ctx)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	mgr := loader.NewManager()
	mgr.Register(history.NewFeature(rt.history))
	mgr.Register(integrity.NewFeature(integrity.NewService(rt.integrityDeps(rt.source(), rt.target()), logg)))

	// RayID first so every later log line carries it
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return fmt.Errorf("failed to load features: %w", err)
	}
	logg.Info("Loaded features", zap.Strings("features", loaded))

	errCh := make(chan error, 1)
	go func() {
		addr := rt.cfg.Server.Address()
		logg.Info("Starting server", zap.String("address", addr))
		errCh <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logg.Info("Shutting down server...")
	return app.Shutdown()
}
