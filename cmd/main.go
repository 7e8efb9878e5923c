package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"storeit/config"
	"storeit/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

// Flags carries global flag values and the loaded configuration to every
// subcommand.
type Flags struct {
	ConfigPath string
	LogLevel   string
	Config     *config.Config
}

func main() {
	if err := utils.InitLogger("info", "development"); err != nil {
		panic(err)
	}

	// .env must be loaded before flag sources read the environment
	config.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := &Flags{}

	app := &cli.Command{
		Name:    "storeit",
		Usage:   "File storage API with activity analytics and notifications",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to optional YAML config file",
				Sources:     cli.EnvVars("CONFIG_FILE"),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.LogLevel != "" {
				cfg.LogLevel = flags.LogLevel
			}

			if err := utils.InitLogger(cfg.LogLevel, cfg.Env); err != nil {
				return ctx, err
			}

			flags.Config = cfg
			return ctx, nil
		},
	}

	serveCmd := NewServeCmd(flags)

	app = serveCmd.Register(app)
	app = NewMigrateCmd(flags).Register(app)
	app = NewDigestCmd(flags).Register(app)

	// serve is the default when no subcommand is given
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'storeit --help' for usage", c.Args().First())
		}
		return serveCmd.run(ctx, c)
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("storeit exited with error")
		os.Exit(1)
	}
}
