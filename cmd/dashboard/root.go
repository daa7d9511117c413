package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/config"
	"github.com/maxviazov/tracker-dashboard/internal/logger"
	"github.com/maxviazov/tracker-dashboard/internal/tui"
)

// defaultTUILog receives the dashboard's log while it owns the terminal.
const defaultTUILog = "logs/dashboard.log"

type rootOptions struct {
	configPath string
	baseURL    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "dashboard",
		Short:        "Terminal dashboard for the tracker backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runTUI(cfg)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (YAML); APP_* env vars override it")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "backend root URL, overrides api.base_url")

	cmd.AddCommand(newSandboxCmd(opts), newPageCmd(opts))
	return cmd
}

// load reads the config and applies flag overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.baseURL != "" {
		cfg.API.BaseURL = o.baseURL
	}
	return cfg, nil
}

func runTUI(cfg *config.Config) error {
	// the alt screen owns stdout; log to a file unless one is configured
	lc := cfg.Logger
	if lc.OutputTarget != "file" {
		lc.OutputTarget = "file"
		lc.File = defaultTUILog
	}
	log, err := logger.New(&lc)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	client, err := api.New(cfg.API.BaseURL, cfg.API.Timeout, log)
	if err != nil {
		return err
	}
	app := tui.New(tui.Options{
		Backend:      client,
		BaseURL:      client.BaseURL(),
		PageLimit:    cfg.View.PageLimit,
		RefreshDelay: cfg.View.RefreshDelay,
		Timeout:      cfg.API.Timeout,
		Email:        cfg.API.Email,
		Password:     cfg.API.Password,
		Logger:       log,
	})

	log.Info().Str("base_url", client.BaseURL()).Msg("dashboard started")
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		log.Error().Err(err).Msg("dashboard stopped with error")
		return err
	}
	log.Info().Msg("dashboard stopped")
	return nil
}

// cliLogger builds the logger of the non-interactive commands. Stdout
// carries command output, so a stdout target moves to stderr.
func cliLogger(cfg *config.Config) (zerolog.Logger, error) {
	lc := cfg.Logger
	if lc.OutputTarget == "" || lc.OutputTarget == "stdout" {
		lc.OutputTarget = "stderr"
	}
	l, err := logger.New(&lc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Logger initialization failed: %v\n", err)
		return zerolog.Nop(), err
	}
	return l, nil
}
