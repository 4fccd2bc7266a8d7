package server

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/insightdelivered/extrato-parser/internal/api"
	"github.com/insightdelivered/extrato-parser/internal/config"
)

// ShutdownTimeout bounds how long in-flight requests may take to finish.
const ShutdownTimeout = 10 * time.Second

const (
	allowMethods = "GET, POST, OPTIONS"
	allowHeaders = "Accept, Content-Type, Content-Length, Accept-Encoding, " + api.HeaderRequestID
)

// New builds the fiber app serving the statement API.
func New(cfg *config.Config, h *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "extrato-parser",
		BodyLimit:             cfg.BodyLimitBytes(),
		ErrorHandler:          api.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(withCORS(cfg.Server.AllowOrigins))

	h.RegisterRoutes(app)
	return app
}

func withCORS(origins []string) fiber.Handler {
	allow := strings.Join(origins, ",")
	if allow == "" {
		allow = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     allow,
		AllowMethods:     allowMethods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    api.HeaderRequestID,
		AllowCredentials: allow != "*",
	})
}

// Run serves app on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, app *fiber.App, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	logger.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listener(ln)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("gracefully shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	err = app.ShutdownWithContext(shutdownCtx)
	// The listener may not have been handed to the server yet.
	_ = ln.Close()
	<-serveErr

	if err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
