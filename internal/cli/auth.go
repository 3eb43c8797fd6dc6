package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/tourcompanion/internal/model"
)

func newLoginCmd() *cobra.Command {
	var identifier, secret string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Long: `Sign in with an identifier and secret. The secret is taken from --secret,
then TOURCOMPANION_SECRET, then the first line of standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if identifier == "" {
				return fmt.Errorf("--identifier is required")
			}
			if secret == "" {
				secret = os.Getenv("TOURCOMPANION_SECRET")
			}
			if secret == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no secret given")
				}
				secret = strings.TrimRight(line, "\r\n")
			}

			if err := app.Session.Login(cmd.Context(), identifier, secret); err != nil {
				return err
			}

			output(cmd).Print(statusView(app.Session.Session()))
			return nil
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "Account identifier, usually an email (required)")
	cmd.Flags().StringVar(&secret, "secret", "", "Account secret")
	_ = cmd.MarkFlagRequired("identifier")

	return cmd
}

func newGuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Continue as a guest",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.LoginAsGuest(cmd.Context()); err != nil {
				return err
			}

			output(cmd).Print(statusView(app.Session.Session()))
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Session.Logout(cmd.Context())
			output(cmd).PrintMessage("Logged out")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			output(cmd).Print(statusView(app.Session.Session()))
			return nil
		},
	}
}

func statusView(s model.Session) StatusView {
	return StatusView{Status: s.Status, User: s.User}
}
