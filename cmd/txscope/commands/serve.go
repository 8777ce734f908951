package commands

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/marcodd23/go-txscope/pkg/servermgr/fibersrv"
	"github.com/marcodd23/go-txscope/pkg/shutdown"
)

const defaultShutdownTimeoutMs = 5000

func newServeCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an HTTP server exposing the database health check and the manager metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := loadApplication(ctx, *configDir)
			if err != nil {
				return err
			}

			server := fibersrv.NewFiberServer(app.config)
			server.Setup(ctx, func(fiberApp *fiber.App) {
				registerRoutes(fiberApp, app)
			})
			server.RunAsync()

			timeout := app.config.ShutdownTimeoutMs
			if timeout == 0 {
				timeout = defaultShutdownTimeoutMs
			}

			shutdown.WaitForShutdown(ctx, timeout, func(timeoutCtx context.Context) {
				server.Shutdown(timeoutCtx)
				app.close(timeoutCtx)
			})

			return nil
		},
	}
}

func registerRoutes(fiberApp *fiber.App, app *application) {
	fiberApp.Use(recover.New())
	fiberApp.Use(fibersrv.TxScopeMiddleware(app.manager))

	fiberApp.Get("/health/db", fibersrv.DBHealthHandler(app.manager))
	fiberApp.Get("/metrics", fibersrv.MetricsHandler(app.metrics))
}
