package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgreview/tgreview/internal/api"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the channels present in the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := openSession()
		client, err := newClient(sess)
		if err != nil {
			return err
		}

		channels, err := client.ListChannels(cmd.Context())
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return loginHint(err)
			}
			return fmt.Errorf("list channels: %w", err)
		}

		if len(channels) == 0 {
			fmt.Println("No channels found")
			return nil
		}
		for _, ch := range channels {
			fmt.Println(ch)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(channelsCmd)
}
