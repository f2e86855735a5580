package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/umlgen/internal/render"
	"github.com/ziadkadry99/umlgen/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive diagram editor in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, _, cleanup, err := newSession(cfg, true)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if _, err := tea.NewProgram(tui.NewModel(ctx, session).WithProber(render.NewFetcher(nil, appLog)), tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("running tui: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
