package pgxdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/errorx"
	"github.com/marcodd23/go-txscope/pkg/logx"
)

//###################################
//#    PoolFactory - pgxpool         #
//###################################

// PoolFactory - pgxpool backed connection factory.
// It Implements dbx.ConnectionFactory
type PoolFactory struct {
	pool   *pgxpool.Pool
	dbConf dbx.ConnConfig
}

// NewPoolFactory - creates the pgx connection pool and wraps it into a dbx.ConnectionFactory.
// Prepared statements are registered on every new physical connection of the pool.
func NewPoolFactory(ctx context.Context, dbConf dbx.ConnConfig, preparesStatements ...dbx.PreparedStatement) (*PoolFactory, error) {
	pool, err := newConnectionPool(ctx, dbConf, preparesStatements...)
	if err != nil {
		return nil, err
	}

	logx.
		GetLogger().
		LogInfo(ctx, fmt.Sprintf("Created new Connection Pool: DB=%s, HOST=%s, PORT=%d",
			pool.Config().ConnConfig.Database,
			pool.Config().ConnConfig.Host,
			pool.Config().ConnConfig.Port))

	return &PoolFactory{
		pool:   pool,
		dbConf: dbConf,
	}, nil
}

func newConnectionPool(ctx context.Context, dbConf dbx.ConnConfig, preparedStatements ...dbx.PreparedStatement) (*pgxpool.Pool, error) {
	poolConfig, err := createConnectionConfiguration(ctx, dbConf)
	if err != nil {
		return nil, err
	}

	// Setup prepared statements
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return setupPreparedStatements(ctx, conn, preparedStatements...)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error creating New Connection Pool")
	}

	return pool, nil
}

func createConnectionConfiguration(ctx context.Context, dbConf dbx.ConnConfig) (*pgxpool.Config, error) {
	if dbConf.DBName == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_Name is EMPTY")
	}

	if dbConf.User == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_User is EMPTY")
	}

	if dbConf.Password == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_Password is EMPTY")
	}

	poolConfig, err := pgxpool.ParseConfig("")
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error parsing default Connection Pool ConnConfig")
	}

	poolConfig.ConnConfig.Database = dbConf.DBName
	poolConfig.ConnConfig.User = dbConf.User
	poolConfig.ConnConfig.Password = dbConf.Password

	if dbConf.MaxConn > 0 {
		poolConfig.MaxConns = int32(runtime.NumCPU()) * dbConf.MaxConn
	}

	if dbConf.IsLocalEnv || dbConf.VpcDirectConnection {
		// If local we need to specify the port, if not local
		// the port is defined in the Unix Socket configuration
		// mounted in the container at runtime (5432)
		logx.
			GetLogger().
			LogInfo(ctx, fmt.Sprintf("Connecting to DB on HOST:%s and PORT:%d", dbConf.Host, uint16(dbConf.Port)))

		poolConfig.ConnConfig.Host = dbConf.Host
		if dbConf.Port > 0 {
			poolConfig.ConnConfig.Port = uint16(dbConf.Port)
		}
	} else {
		logx.GetLogger().LogInfo(ctx, "Connecting to DB trough CLOUD SQL PROXY")
		poolConfig.ConnConfig.Host = fmt.Sprintf("/cloudsql/%s", dbConf.Host)
	}

	return poolConfig, nil
}

func setupPreparedStatements(ctx context.Context, conn *pgx.Conn, preparesStatements ...dbx.PreparedStatement) error {
	for _, stmt := range preparesStatements {
		_, err := conn.Prepare(ctx, stmt.GetName(), stmt.GetQuery())
		if err != nil {
			return errorx.NewDatabaseErrorWrapper(err, "Failed to prepare statement '%s'", stmt.GetName())
		}
	}

	return nil
}

// GetConnection - borrow a connection from the pool, it goes back to the pool on Connection.Close.
func (f *PoolFactory) GetConnection(ctx context.Context) (dbx.Connection, error) {
	if f.pool == nil {
		return nil, errorx.NewDatabaseError("error, Connection Pool To DB not initialized")
	}

	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Error acquiring connection from pool")
	}

	return newPostgresConn(conn), nil
}

// GetDbConnPool - get the connection pool.
func (f *PoolFactory) GetDbConnPool() *pgxpool.Pool {
	return f.pool
}

// GetConnectionConfig - get Db Connection config.
func (f *PoolFactory) GetConnectionConfig() dbx.ConnConfig {
	return f.dbConf
}

// Close - close the connection pool. Borrowed connections must be closed first.
func (f *PoolFactory) Close() {
	if f.pool != nil {
		f.pool.Close()
		logx.GetLogger().LogInfo(context.TODO(), "DB Connection Pool Successfully Closed!")
	}
}
