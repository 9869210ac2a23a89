package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/young626-jang/ltv-flask/internal/app"
	"github.com/young626-jang/ltv-flask/internal/config"
	"github.com/young626-jang/ltv-flask/internal/logging"
	"github.com/young626-jang/ltv-flask/internal/service"
)

// cli carries state shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string
	asJSON     bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "registryctl",
		Short: "Reconstruct Korean property registers",
		Long: `registryctl replays the ownership and encumbrance sections of a property
register (등기사항전부증명서) and reports the rights still in force.

Configuration is read from the environment and the optional CONFIG_FILE,
exactly as the server reads it. Logs go to stderr.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (overrides CONFIG_FILE)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print JSON instead of a summary")

	root.AddCommand(newAnalyzeCmd(c), newWatchCmd(c), newHistoryCmd(c))
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.configPath != "" {
		if err := os.Setenv("CONFIG_FILE", c.configPath); err != nil {
			return fmt.Errorf("set CONFIG_FILE: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Logging.Output = "stderr"
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	c.cfg = cfg
	c.logger = logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr()).With("component", "registryctl")
	return nil
}

// service returns an analysis service. Without persist only the engine is
// wired; with it every configured store is.
func (c *cli) service(ctx context.Context, persist bool) (*service.AnalysisService, func(), error) {
	if !persist {
		svc, err := service.NewAnalysisService(service.Dependencies{
			Engine: app.NewEngine(c.cfg.Engine),
			Logger: c.logger,
		})
		return svc, func() {}, err
	}

	components, err := app.Build(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := components.Close(context.Background()); err != nil {
			c.logger.Warn("closing stores failed", "error", err)
		}
	}
	return components.Service, closeFn, nil
}
