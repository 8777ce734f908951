package commands

import (
	"context"
	"fmt"

	"github.com/marcodd23/go-txscope/pkg/configx"
	"github.com/marcodd23/go-txscope/pkg/datasource"
	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/logx"
	"github.com/marcodd23/go-txscope/pkg/txscope"
)

// ServiceConfig - txscope service configuration.
type ServiceConfig struct {
	configx.BaseConfig `mapstructure:",squash"`
	ShutdownTimeoutMs  int64 `mapstructure:"shutdownTimeoutMs" validate:"gte=0"`
}

// application holds the process wide components built from the configuration.
type application struct {
	config  *ServiceConfig
	factory dbx.ConnectionFactory
	metrics *txscope.Metrics
	manager *txscope.Manager
}

func loadApplication(ctx context.Context, configDir string) (*application, error) {
	var cfg ServiceConfig
	if err := configx.LoadConfigFromPathForEnv(configDir, &cfg); err != nil {
		return nil, err
	}

	if err := configx.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logx.SetupLogger(cfg)

	factory, err := datasource.Resolve(ctx, datasource.FromConfig(cfg.GetDataSourceConfig()), datasource.NewDefaultRegistry())
	if err != nil {
		return nil, err
	}

	metrics := txscope.NewMetrics(cfg.GetMetricsConfig())

	return &application{
		config:  &cfg,
		factory: factory,
		metrics: metrics,
		manager: txscope.NewManager(factory, txscope.WithMetrics(metrics)),
	}, nil
}

// close releases the pool behind the resolved factory.
func (a *application) close(ctx context.Context) {
	switch f := a.factory.(type) {
	case interface{ Close() error }:
		if err := f.Close(); err != nil {
			logx.GetLogger().LogError(ctx, "error closing data source", err)
		}
	case interface{ Close() }:
		f.Close()
	}
}
