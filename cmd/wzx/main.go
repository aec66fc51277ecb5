package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/webszilla/work-zilla-explorer/internal/config"
	"github.com/webszilla/work-zilla-explorer/internal/gateway"
	"github.com/webszilla/work-zilla-explorer/internal/logging"
	"github.com/webszilla/work-zilla-explorer/internal/metrics"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wzx",
	Short: "Explore a remote work-zilla storage account",
	Long: `wzx is a client for a remote hierarchical file store: browse
folders, search filenames, upload files, and manage entries from the
terminal. Configuration comes from WZX_* environment variables;
WZX_SERVER_URL is required.`,
}

var flagUserID string

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user", "", "Act on another member's files (org admins)")
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(quotaCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(devicesCmd)
}

// setup loads config, initializes logging and metrics, and returns a ready
// gateway client. Every subcommand starts here.
func setup() (*gateway.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logging.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	gw := gateway.New(gateway.Config{
		BaseURL:   cfg.ServerURL,
		Timeout:   cfg.RequestTimeout,
		AuthToken: cfg.AuthToken,
		ReadOnly:  cfg.ReadOnly,
	})
	return gw, cfg, nil
}

// effectiveUser resolves the --user flag against the configured default.
func effectiveUser(cfg *config.Config) string {
	if flagUserID != "" {
		return flagUserID
	}
	return cfg.UserID
}
