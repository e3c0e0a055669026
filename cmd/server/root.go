package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iudanet/mapboard/internal/client/iocli"
	"github.com/iudanet/mapboard/internal/config"
	"github.com/iudanet/mapboard/internal/server"
)

// app хранит viper и путь к файлу конфигурации одного запуска
type app struct {
	v          *viper.Viper
	io         iocli.IO
	configFile string
}

func newRootCommand(stdio iocli.IO) *cobra.Command {
	a := &app{v: config.New(), io: stdio}
	config.SetServerDefaults(a.v)

	root := &cobra.Command{
		Use:           "mapboard-server",
		Short:         "Shared storage and live updates for mapboard drawings",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdio)
	root.SetVersionTemplate(fmt.Sprintf("mapboard-server %s (built %s, commit %s)\n", Version, BuildDate, GitCommit))

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("storage-driver", config.DriverSQLite, "storage driver: sqlite or memory")
	flags.String("storage-dsn", "mapboard.db", "sqlite database path")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	a.bind(flags, map[string]string{
		"storage.driver": "storage-driver",
		"storage.dsn":    "storage-dsn",
		"log.level":      "log-level",
		"log.format":     "log-format",
	})

	root.AddCommand(newServeCommand(a), newTokenCommand(a))
	return root
}

func (a *app) bind(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}
}

// load читает файл конфигурации и проверяет настройки
func (a *app) load() (*config.Server, error) {
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadServer(a.v)
	if err != nil {
		return nil, err
	}
	cfg.Version = Version
	return cfg, nil
}

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server.

Editor tokens are required for writes when auth.secret is set
(MAPBOARD_AUTH_SECRET). Without a secret anyone may write.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "address to listen on")
	flags.Int64("max-body-bytes", 16<<20, "maximum PUT body size")
	flags.Int("rate-limit", 60, "writes allowed per client and page in one window, 0 disables")
	flags.Duration("rate-window", time.Minute, "rate limit window")
	flags.Bool("mdns", false, "advertise the server on the local network")
	a.bind(flags, map[string]string{
		"http.addr":           "addr",
		"http.max_body_bytes": "max-body-bytes",
		"ratelimit.writes":    "rate-limit",
		"ratelimit.window":    "rate-window",
		"mdns.enabled":        "mdns",
	})
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	if cfg.AuthSecret == "" {
		logger.Warn("auth.secret is not set, writes are not authenticated")
	}

	srv, err := server.New(ctx, cfg, store, logger, Version)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
