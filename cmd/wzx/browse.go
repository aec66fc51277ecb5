package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/webszilla/work-zilla-explorer/internal/explorer"
	"github.com/webszilla/work-zilla-explorer/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the store interactively",
	Long:  `Open an interactive terminal browser over the remote store.`,
	RunE:  runBrowse,
}

var browseDevice string

func init() {
	browseCmd.Flags().StringVar(&browseDevice, "device", "", "Scope to a device's folder")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	gw, cfg, err := setup()
	if err != nil {
		return err
	}

	device := browseDevice
	if device == "" {
		device = cfg.DeviceID
	}
	session := explorer.NewSession(gw, explorer.Scope{
		UserID:   effectiveUser(cfg),
		DeviceID: device,
	}, explorer.Options{
		PageLimit:   cfg.PageLimit,
		SearchLimit: cfg.SearchLimit,
	})
	defer session.Close()

	if err := session.Start(context.Background()); err != nil {
		return fmt.Errorf("load root: %w", err)
	}

	model := tui.NewModel(session)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
