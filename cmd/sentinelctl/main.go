// Sentinel Ops CLI - command-line client for the Sentinel Ops backend.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sentinelops/sentinel/internal/api"
	"github.com/sentinelops/sentinel/internal/auth"
	"github.com/sentinelops/sentinel/internal/config"
	"github.com/sentinelops/sentinel/internal/logging"
	"github.com/sentinelops/sentinel/internal/session"
)

var (
	// Global flags
	configPath string
	baseURL    string

	// Version
	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sentinelctl",
		Short: "Sentinel Ops - mission control from your terminal",
		Long: `sentinelctl is the command-line client for the Sentinel Ops backend.

It covers the same surface as the admin dashboard: the ops planner
board, facility issues, ranger onboarding, the knowledge base and the
notification center, with a live notification feed over WebSocket.

Log in once with 'sentinelctl login'; the session is persisted under
your data directory until you log out.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $HOME/.sentinel/config.json)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend base URL (overrides config)")

	// Commands
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(missionsCmd())
	rootCmd.AddCommand(issuesCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(docsCmd())
	rootCmd.AddCommand(notifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the components every command needs.
type app struct {
	cfg        *config.Config
	logger     zerolog.Logger
	store      *session.Store
	client     *api.Client
	controller *auth.Controller
}

// newApp loads config and wires the client stack.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if baseURL != "" {
		cfg.Server.BaseURL = baseURL
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.File)

	store, err := session.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	client := api.NewClient(api.Config{
		BaseURL:  cfg.Server.BaseURL,
		DeviceID: cfg.DeviceID,
		Timeout:  cfg.RequestTimeout(),
		Store:    store,
		Logger:   logging.Component(logger, "api"),
	})

	controller := auth.NewController(client, store, logging.Component(logger, "auth"))

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		client:     client,
		controller: controller,
	}, nil
}

// requireSession fails fast before commands that need a login.
func (a *app) requireSession() error {
	if err := a.controller.RequireRole(""); err != nil {
		return fmt.Errorf("%w. Run 'sentinelctl login' first", err)
	}
	return nil
}

// versionCmd shows version
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show sentinelctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sentinelctl %s\n", version)
		},
	}
}

// friendly rewrites request errors for terminal display.
func friendly(err error) error {
	reqErr, ok := api.AsRequestError(err)
	if !ok {
		return err
	}
	switch reqErr.Kind {
	case api.KindNetwork:
		return fmt.Errorf("cannot reach the backend: %s", reqErr.Message)
	case api.KindAPI:
		if reqErr.IsAuthFailure() {
			return fmt.Errorf("session rejected (%d): %s. Run 'sentinelctl login'", reqErr.Status, reqErr.Message)
		}
		return fmt.Errorf("server error (%d): %s", reqErr.Status, reqErr.Message)
	default:
		return err
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
