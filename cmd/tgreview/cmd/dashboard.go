package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tgreview/tgreview/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive review dashboard",
	Long: `Open the interactive terminal dashboard for reviewing messages.

Navigation:
  ↑/k, ↓/j    Move up/down (down past the last row loads the next page)
  PgUp/PgDn   Page up/down
  m           Load more messages
  R           Refresh (reload with the applied filters)

Labeling:
  r           Mark the highlighted message relevant
  n           Mark the highlighted message not relevant
  e           Export all relevant-labeled messages server-side

Filtering:
  f           Open the filter form (enter applies, ctrl+r resets,
              esc closes keeping pending edits)
  c           Refresh the channel list

  q           Quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := openSession()
		client, err := newClient(sess)
		if err != nil {
			return err
		}

		model := tui.New(client, tui.Options{
			PageSize:   cfg.UI.PageSize,
			ChannelTTL: time.Duration(cfg.UI.ChannelCacheTTLMinute) * time.Minute,
			Version:    Version,
		})
		p := tea.NewProgram(model, tea.WithAltScreen())

		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("run dashboard: %w", err)
		}

		if m, ok := final.(tui.Model); ok && m.SessionExpired() {
			return fmt.Errorf("session expired: run 'tgreview login' to sign in again")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
