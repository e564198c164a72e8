package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgreview/tgreview/internal/api"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all relevant-labeled messages server-side",
	Long: `Trigger a server-side export of every message labeled relevant.
The export is written by the server (locally and to its object store);
this command only prints the confirmation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := openSession()
		client, err := newClient(sess)
		if err != nil {
			return err
		}

		message, err := client.ExportRelevant(cmd.Context())
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return loginHint(err)
			}
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Println(message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
