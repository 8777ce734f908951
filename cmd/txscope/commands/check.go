package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marcodd23/go-txscope/pkg/errorx"
	"github.com/marcodd23/go-txscope/pkg/txscope"
)

func newCheckCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Resolve the data source and run one connection and one transaction through the manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := loadApplication(ctx, *configDir)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			return runCheck(ctx, app.manager, cmd.OutOrStdout())
		},
	}
}

// runCheck opens, pings and closes a connection, then begins and rolls back a transaction.
func runCheck(ctx context.Context, manager *txscope.Manager, out io.Writer) error {
	ctx = txscope.NewContext(ctx)
	defer manager.EndScope(ctx)

	if err := manager.OpenConnection(ctx); err != nil {
		if errors.Is(err, errorx.ErrAcquisitionFailure) {
			_ = manager.CloseConnection(ctx)
		}
		return err
	}

	conn, err := manager.Connection(ctx)
	if err != nil {
		return err
	}

	if err := conn.Ping(ctx); err != nil {
		_ = manager.CloseConnection(ctx)
		return fmt.Errorf("ping failed: %w", err)
	}

	if err := manager.CloseConnection(ctx); err != nil {
		return err
	}

	fmt.Fprintln(out, "connection: OK")

	if err := manager.BeginTransaction(ctx); err != nil {
		return err
	}

	if err := manager.RollbackTransaction(ctx); err != nil {
		return err
	}

	fmt.Fprintln(out, "transaction: OK")

	return nil
}
