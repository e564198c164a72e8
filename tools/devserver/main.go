// devserver runs a fake relevance API for local development. It serves the
// same wire format as the production backend over a generated in-memory
// corpus, so the dashboard can be pointed at http://localhost:5001 without
// real data or credentials. Any non-empty username and password log in.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/tgreview/tgreview/tools/devserver/dataset"
)

var (
	addrFlag    string
	countFlag   int
	seedFlag    int64
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a fake relevance API for development",
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verboseFlag {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		data := dataset.Generate(countFlag, seedFlag)
		srv := newServer(data, logger)

		logger.Info("devserver listening", "addr", addrFlag, "messages", countFlag)
		return http.ListenAndServe(addrFlag, srv.router())
	},
}

func init() {
	rootCmd.Flags().StringVar(&addrFlag, "addr", "localhost:5001", "listen address")
	rootCmd.Flags().IntVar(&countFlag, "count", 500, "number of fake messages to generate")
	rootCmd.Flags().Int64Var(&seedFlag, "seed", 1, "random seed for the generated corpus")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
