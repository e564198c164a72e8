package cmd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tgreview/tgreview/internal/api"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show message counts per media type",
	Long: `Show how many messages the dataset holds overall and per media type.
Counts come from minimal one-message probes of the filter endpoint, issued
concurrently.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := openSession()
		client, err := newClient(sess)
		if err != nil {
			return err
		}

		var mu sync.Mutex
		counts := make(map[api.MediaType]int, len(api.MediaTypes)+1)

		g, ctx := errgroup.WithContext(cmd.Context())

		probe := func(mt api.MediaType) func() error {
			return func() error {
				criteria := api.DefaultCriteria()
				criteria.MediaType = mt
				page, err := client.FetchMessages(ctx, criteria, 1, 1)
				if err != nil {
					return err
				}
				mu.Lock()
				counts[mt] = page.TotalCount
				mu.Unlock()
				return nil
			}
		}

		g.Go(probe("")) // overall
		for _, mt := range api.MediaTypes {
			g.Go(probe(mt))
		}

		if err := g.Wait(); err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return loginHint(err)
			}
			return fmt.Errorf("fetch stats: %w", err)
		}

		fmt.Printf("%-10s %8d\n", "total", counts[""])
		for _, mt := range api.MediaTypes {
			fmt.Printf("%-10s %8d\n", mt, counts[mt])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
