package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tgreview/tgreview/internal/api"
	"github.com/tgreview/tgreview/internal/config"
	"github.com/tgreview/tgreview/internal/session"
)

// Version is stamped at build time.
var Version = "dev"

var (
	cfgFile string
	homeDir string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tgreview",
	Short: "Review and label Telegram messages by relevance",
	Long: `tgreview is a terminal dashboard for reviewing Telegram messages
scored by the relevance service. It supports filtering by date, channel,
score and media type, incremental loading, per-message relevance labels,
and a server-side export of everything marked relevant.

Run 'tgreview login' first to establish a session, then 'tgreview dashboard'
(or just 'tgreview') to start reviewing.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		// A .env file in the working directory may provide TGREVIEW_HOME
		_ = godotenv.Load()

		// Set up logging
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		var err error
		cfg, err = config.Load(cfgFile, homeDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// Ensure home directory exists on first use
		if err := cfg.EnsureHomeDir(); err != nil {
			return fmt.Errorf("create data directory %s: %w", cfg.HomeDir, err)
		}

		logger.Debug("configuration loaded",
			"home", cfg.HomeDir,
			"api", cfg.API.BaseURL,
			"page_size", cfg.UI.PageSize)

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare invocation opens the dashboard
		return dashboardCmd.RunE(cmd, args)
	},
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openSession returns the session store backed by the configured token file.
func openSession() *session.Store {
	return session.Open(cfg.TokenPath())
}

// newClient builds the API client from the loaded configuration.
func newClient(sess *session.Store) (*api.Client, error) {
	return api.New(api.Config{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		AllowInsecure: cfg.API.AllowInsecure,
		RateLimitQPS:  cfg.API.RateLimitQPS,
	}, sess)
}

// loginHint is appended to unauthorized errors from CLI commands.
func loginHint(err error) error {
	return fmt.Errorf("%w\n\nRun 'tgreview login' to establish a session", err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.tgreview/config.toml)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "home directory (overrides TGREVIEW_HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
