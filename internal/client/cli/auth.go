package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/ui"
	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/shared"
)

func (a *App) registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			email, password, err := a.credentials(cmd, out)
			if err != nil {
				return err
			}
			defer shared.WipeByteArray(password)

			again, err := askSecret(a.reader, a.in, out, "Repeat password")
			if err != nil {
				return err
			}
			defer shared.WipeByteArray(again)
			if !bytes.Equal(password, again) {
				return fmt.Errorf("%w: passwords do not match", common.ErrInvalidArgument)
			}

			if err := a.backend.Register(cmd.Context(), email, string(password)); err != nil {
				return fmt.Errorf("register: %w", err)
			}
			fmt.Fprintln(out, ui.Success("Account created. Run `talkflo login` to sign in."))
			return nil
		},
	}
	cmd.Flags().StringP("email", "e", "", "account email")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			email, password, err := a.credentials(cmd, out)
			if err != nil {
				return err
			}
			defer shared.WipeByteArray(password)

			if err := a.backend.Login(cmd.Context(), email, string(password)); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			fmt.Fprintln(out, ui.Success("Logged in as "+email))
			return nil
		},
	}
	cmd.Flags().StringP("email", "e", "", "account email")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.backend.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Logged out"))
			return nil
		},
	}
}

// credentials takes the email from --email or a prompt and always prompts
// for the password. The caller wipes the password.
func (a *App) credentials(cmd *cobra.Command, out io.Writer) (string, []byte, error) {
	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		var err error
		if email, err = askLine(a.reader, out, "Email"); err != nil {
			return "", nil, err
		}
	}
	password, err := askSecret(a.reader, a.in, out, "Password")
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}
