package fibersrv

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/logx"
	"github.com/marcodd23/go-txscope/pkg/txscope"
)

// TxScopeMiddleware gives every request its own txscope.Scope on the fiber user context.
//
// Handlers reach it through c.UserContext(). When the handler chain returns (or panics) with a connection
// still bound, the manager rolls it back and releases it.
func TxScopeMiddleware(manager *txscope.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := txscope.NewContext(c.UserContext())
		c.SetUserContext(ctx)

		defer manager.EndScope(ctx)

		return c.Next()
	}
}

// DBHealthHandler pings the database through a short lived connection of the request scope.
func DBHealthHandler(manager *txscope.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := manager.WithConnection(c.UserContext(), func(ctx context.Context, conn dbx.Connection) error {
			return conn.Ping(ctx)
		})
		if err != nil {
			logx.GetLogger().LogWarning(c.UserContext(), "database health check failed", err)

			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "DOWN", "error": err.Error()})
		}

		return c.JSON(fiber.Map{"status": "UP"})
	}
}

// MetricsHandler exposes the manager metrics, 404 when metrics are disabled.
func MetricsHandler(metrics *txscope.Metrics) fiber.Handler {
	return adaptor.HTTPHandler(metrics.Handler())
}
