package dbx

import (
	"context"

	"github.com/pkg/errors"
)

// QueryAndScan executes a query on conn and maps every row to T through scanFunc.
//
// The rows are always closed before returning, the connection is left untouched: releasing it is
// the job of whoever borrowed it.
//
// Example Usage:
//
//	profiles, err := dbx.QueryAndScan(ctx, conn, func(row dbx.RowScan) (Profile, error) {
//	    var p Profile
//	    err := row.Scan(&p.ID, &p.Name)
//	    return p, err
//	}, "SELECT ID, NAME FROM PROFILE WHERE TENANT_ID = ?", tenantID)
func QueryAndScan[T any](ctx context.Context, conn Connection, scanFunc func(row RowScan) (T, error), query string, args ...any) ([]T, error) {
	var results []T

	err := QueryScanAndProcess(ctx, conn, query, scanFunc, func(item T) error {
		results = append(results, item)
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// QueryScanAndProcess executes a query on conn, maps every row to T and hands it to processCallbackFunc.
// Processing stops at the first scan or callback error.
func QueryScanAndProcess[T any](ctx context.Context, conn Connection, query string, scanFunc func(row RowScan) (T, error), processCallbackFunc func(item T) error, args ...any) (err error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return errors.WithStack(err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = errors.WithStack(closeErr)
		}
	}()

	for rows.Next() {
		item, err := scanFunc(rows)
		if err != nil {
			return errors.WithStack(err)
		}

		if err := processCallbackFunc(item); err != nil {
			return errors.WithStack(err)
		}
	}

	if err := rows.Err(); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
