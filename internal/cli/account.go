package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in")

func loginCmd(opts *rootOptions) *cobra.Command {
	var email, password string
	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the user id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				u, err := a.client.Login(cmd.Context(), email, password)
				if u == nil {
					return fmt.Errorf("login failed: %w", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (#%d)\n", u.Name, u.ID)
				return nil
			})
		},
	}
	c.Flags().StringVar(&email, "email", "", "account email (required)")
	c.Flags().StringVar(&password, "password", "", "account password (required)")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}

func registerCmd(opts *rootOptions) *cobra.Command {
	var name, email, password, role string
	c := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				u, err := a.client.Register(cmd.Context(), name, email, password, role)
				if u == nil {
					return fmt.Errorf("register failed: %w", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s (#%d)\n", u.Name, u.ID)
				return nil
			})
		},
	}
	c.Flags().StringVar(&name, "name", "", "display name (required)")
	c.Flags().StringVar(&email, "email", "", "account email (required)")
	c.Flags().StringVar(&password, "password", "", "account password (required)")
	c.Flags().StringVar(&role, "role", "Developer", "role shown on your card")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored user id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if err := a.client.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func whoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the stored user id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				id := a.userID()
				if id == "" {
					return errNotSignedIn
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}
