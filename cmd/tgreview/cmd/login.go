package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the relevance service",
	Long: `Sign in to the relevance service and store the session token under
the tgreview home directory. All other commands reuse the stored session
until the server rejects it or 'tgreview logout' removes it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username := loginUsername
		var password string

		fields := []huh.Field{}
		if username == "" {
			fields = append(fields, huh.NewInput().
				Title("Username").
				Value(&username))
		}
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password))

		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			return fmt.Errorf("read credentials: %w", err)
		}
		if username == "" || password == "" {
			return fmt.Errorf("username and password are required")
		}

		sess := openSession()
		client, err := newClient(sess)
		if err != nil {
			return err
		}

		if err := client.Login(cmd.Context(), username, password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		logger.Debug("session token stored", "path", cfg.TokenPath())
		fmt.Printf("Logged in as %s\n", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := openSession()
		if !sess.Authenticated() {
			fmt.Println("No active session")
			return nil
		}
		if err := sess.Clear(); err != nil {
			return err
		}
		fmt.Println("Session cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "user", "u", "", "username (prompted when omitted)")
}
