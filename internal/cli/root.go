package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/practicehq/planbudget/internal/config"
	"github.com/practicehq/planbudget/pkg/alerts"
	"github.com/practicehq/planbudget/pkg/budget"
	"github.com/practicehq/planbudget/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "planbudget",
	Short: "planbudget - funding plan budget tracking for therapy practices",
	Long: `planbudget tracks client funding plans: allocated budget items, session
usage, utilization rates, and end-of-plan spending projections. It serves a
REST API for practice management frontends and provides CLI access to plan
import, budget status, and session recording.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.planbudget/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initNotifiers creates alert notifiers from config.
func initNotifiers(cfg *config.Config) []alerts.Notifier {
	var notifiers []alerts.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	return notifiers
}

// initEngine creates a fully wired budget engine with its storage backend.
func initEngine(cfg *config.Config) (*budget.Engine, storage.Storage, error) {
	logger := newLogger(cfg)

	store, err := initStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	engine := budget.NewEngine(store, logger)
	return engine, store, nil
}
