package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tordrt/litorm"
	"github.com/tordrt/litorm/internal/config"
	"github.com/tordrt/litorm/schema"
)

var (
	dbURL      string
	sqlitePath string
	configFile string
	modelsPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "litorm",
	Short: "Query and manage databases through litorm models",
	Long: `litorm runs queries against PostgreSQL or SQLite through the litorm data-access layer.
Models are declared in a YAML file (see --models) and drive find, describe and sync.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "Database URL (postgres://, postgresql:// or sqlite://)")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: .litorm.yaml in . or $HOME)")
	rootCmd.PersistentFlags().StringVarP(&modelsPath, "models", "m", "", "Models file (default: models.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log every statement to stderr")

	rootCmd.AddCommand(queryCmd, findCmd, describeCmd, syncCmd, inspectCmd, dropCmd)
}

// loadConfig merges the config file and environment with the command line flags.
func loadConfig() (*config.Config, error) {
	if dbURL != "" && sqlitePath != "" {
		return nil, fmt.Errorf("only one of --db-url or --sqlite can be specified")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if dbURL != "" {
		cfg.DatabaseURL = dbURL
		cfg.SQLitePath = ""
	}
	if sqlitePath != "" {
		cfg.SQLitePath = sqlitePath
		cfg.DatabaseURL = ""
	}
	if modelsPath != "" {
		cfg.ModelsPath = modelsPath
	}
	if debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// connect opens the configured database. Models from reg, when given, are
// registered on the connection.
func connect(ctx context.Context, cfg *config.Config, reg *schema.Registry) (*litorm.Connection, error) {
	tag, connCfg, err := cfg.Connection()
	if err != nil {
		return nil, err
	}

	opts := []litorm.Option{litorm.WithLogger(newLogger(cfg))}
	if reg != nil {
		opts = append(opts, litorm.WithRegistry(reg))
	}

	conn, err := litorm.CreateConnection(ctx, connCfg, tag, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", tag, err)
	}
	return conn, nil
}

func disconnect(ctx context.Context, conn *litorm.Connection) {
	if err := conn.Disconnect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close database connection: %v\n", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
