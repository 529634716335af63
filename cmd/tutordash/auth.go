package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-tutordash/internal/dashboard"
	"github.com/goliatone/go-tutordash/pkg/client"
	"github.com/goliatone/go-tutordash/pkg/formspec"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/renderers/tui"
)

var loginFlags struct {
	user     string
	password string
	register bool
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session for the current profile",
	Long: `Login signs in with --user and --password, or prompts for the login form
when either is missing. --register prompts for the registration form instead.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.api.Logout(cmd.Context()); err != nil {
			// The local session is gone either way.
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return err
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.api.Authenticated() {
			return client.ErrNotAuthenticated
		}
		user, err := app.api.Profile(cmd.Context())
		if err != nil {
			return err
		}
		return printUser(cmd, user)
	},
}

func init() {
	flags := loginCmd.Flags()
	flags.StringVarP(&loginFlags.user, "user", "u", "", "username or email")
	flags.StringVarP(&loginFlags.password, "password", "p", "", "password (prompted when empty)")
	flags.BoolVar(&loginFlags.register, "register", false, "create an account instead")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if !loginFlags.register && loginFlags.user != "" && loginFlags.password != "" {
		result, err := app.api.Login(ctx, loginFlags.user, loginFlags.password)
		if err != nil {
			return err
		}
		return printSignedIn(cmd, result)
	}

	id := formspec.LoginForm
	if loginFlags.register {
		id = formspec.RegisterForm
	}
	renderer, err := prompter(cmd, tui.OutputFormatPrettyText)
	if err != nil {
		return err
	}
	target := formTarget{id: id}
	if loginFlags.user != "" && !loginFlags.register {
		target.values = model.Values{"username_or_email": loginFlags.user}
	}
	if _, _, err := fill(ctx, renderer, target, dashboard.SubmitHandlerFor(app.api, id)); err != nil {
		return err
	}
	user, err := app.api.Profile(ctx)
	if err != nil {
		return err
	}
	return printUser(cmd, user)
}

func printSignedIn(cmd *cobra.Command, result client.AuthResult) error {
	user, err := result.DecodeUser()
	if err != nil {
		return errors.New("signed in, but the profile could not be read")
	}
	return printUser(cmd, user)
}

func printUser(cmd *cobra.Command, user client.User) error {
	name := firstNonEmpty(user.Name, user.Username, user.Email)
	line := "Signed in as " + name
	if len(user.Roles) > 0 {
		line += " (" + strings.Join(user.Roles, ", ") + ")"
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
	return err
}
