package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/internal/dashboard"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard",
	Long: `Serve starts the local web dashboard: sign in, the network page, courses
and every form, backed by the same API client and session as the CLI.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (default: server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if !app.cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	server, err := dashboard.New(app.api,
		dashboard.WithForms(app.forms),
		dashboard.WithLogger(app.logger),
		dashboard.WithPageSize(app.cfg.Network.PageSize),
		dashboard.WithSort(app.cfg.Network.Sort),
		dashboard.WithTheme(dashboard.StaticTheme(
			app.cfg.Server.Theme, app.cfg.Server.ThemeVariant, app.cfg.Server.ThemeTokens,
		)),
	)
	if err != nil {
		return err
	}

	addr := firstNonEmpty(serveFlags.addr, app.cfg.Server.Addr)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Dashboard on http://%s\n", addr)
	if err := server.Run(ctx, addr, app.cfg.Server.ShutdownGrace); err != nil {
		return err
	}
	app.logger.Info("dashboard stopped", zap.String("addr", addr))
	return nil
}
