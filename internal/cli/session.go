package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command. The check is local to this
// machine and does not contact the API.
func NewLoginCommand(opts *RootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the catalog owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.Store(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("username") {
				username = opts.config.OwnerUsername
			}
			result := store.Login(username, password)
			if !result.Success {
				return errors.New(result.Message)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return err
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "owner username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "owner password")

	return cmd
}

func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the owner login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.Store(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			store.Logout()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return err
		},
	}
}

func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the owner is logged in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.Store(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]bool{"ownerLoggedIn": store.OwnerLoggedIn()})
			}
			state := "logged out"
			if store.OwnerLoggedIn() {
				state = "logged in"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "owner %s (%s mode)\n", state, opts.Mode)
			return err
		},
	}
}

// NewTokenCommand requests a server access token for use with --token.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Request an owner access token from the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Mode != "remote" {
				return errors.New("token requires --mode remote")
			}
			if !cmd.Flags().Changed("username") {
				username = opts.config.OwnerUsername
			}
			if !cmd.Flags().Changed("password") {
				password = opts.config.OwnerPassword
			}
			token, err := opts.remote(opts.logger(cmd.ErrOrStderr())).CreateSession(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{"accessToken": token})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "owner username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "owner password")

	return cmd
}
