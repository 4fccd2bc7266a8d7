package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/insightdelivered/extrato-parser/internal/api"
	"github.com/insightdelivered/extrato-parser/internal/buildinfo"
	"github.com/insightdelivered/extrato-parser/internal/config"
	"github.com/insightdelivered/extrato-parser/internal/logging"
	"github.com/insightdelivered/extrato-parser/internal/server"
	"github.com/insightdelivered/extrato-parser/internal/statement"
)

func newServeCommand(ext statement.TextExtractor) *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the statement parsing HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, addr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, ext)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to extrato.yaml (defaults apply when omitted)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides config and EXTRATO_ADDR")

	return cmd
}

// loadConfig layers defaults, the optional YAML file, EXTRATO_* variables and
// the --addr flag, in that order.
func loadConfig(path, addr string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config, ext statement.TextExtractor) error {
	logger, err := logging.New(logging.Options{
		Environment: logging.Environment(cfg.Log.Environment),
		Level:       cfg.Log.Level,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("extrato API",
		zap.String("version", buildinfo.Version),
		zap.String("commit", buildinfo.Commit),
		zap.Strings("allow_origins", cfg.Server.AllowOrigins),
		zap.Int("body_limit_mb", cfg.Server.BodyLimitMB),
	)

	app := server.New(cfg, &api.Handler{
		Service: statement.NewService(ext, logger),
		Logger:  logger,
	})
	return server.Run(ctx, app, cfg.Server.Addr, logger)
}
