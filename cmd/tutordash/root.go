package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-tutordash/internal/config"
)

// skipSetup marks commands that run without config, session or client.
const skipSetup = "tutordash.skip-setup"

var (
	flagConfig string

	// settings collects defaults, the config file, TUTORDASH_* variables and
	// the bound persistent flags.
	settings = config.NewViper()

	// app is built by PersistentPreRunE for every command that needs it.
	app *application
)

var rootCmd = &cobra.Command{
	Use:   "tutordash",
	Short: "Tutoring platform dashboard",
	Long: `tutordash talks to the tutoring platform API from the terminal and can
serve the same forms, network and course pages as a local web dashboard.

Settings come from tutordash.yaml (working directory or user config dir),
TUTORDASH_* environment variables and flags, in increasing precedence.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "config file (default: ./tutordash.yaml or the user config dir)")
	flags.String("base-url", "", "platform API base URL")
	flags.String("profile", "", "session profile")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("forms-dir", "", "directory of extra form documents")

	for key, name := range map[string]string{
		"api.base_url":    "base-url",
		"session.profile": "profile",
		"log.level":       "log-level",
		"forms.dir":       "forms-dir",
	} {
		if err := settings.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(formsCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lintCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipSetup] != "" || cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}
	cfg, err := config.Load(settings, flagConfig)
	if err != nil {
		return err
	}
	a, err := newApplication(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	app = a
	return nil
}

func teardown() error {
	if app == nil {
		return nil
	}
	err := app.Close()
	app = nil
	return err
}
