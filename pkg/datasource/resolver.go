package datasource

import (
	"context"
	"fmt"

	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/errorx"
	"github.com/marcodd23/go-txscope/pkg/logx"
	"github.com/marcodd23/go-txscope/pkg/validator"
)

// Resolve turns a data source configuration into a connection factory.
//
// A lookup with no properties goes through dir.Lookup, a lookup with properties through
// dir.LookupWithProperties with the whole ordered bag. Without a lookup the directly configured
// factory is returned, possibly nil: callers must check it before use.
//
// Errors:
//   - errorx.ConfigurationError when cfg is nil, or a lookup is configured without a directory.
//   - errorx.ResolutionError when the lookup definition is malformed or the lookup fails.
func Resolve(ctx context.Context, cfg *Config, dir Directory) (dbx.ConnectionFactory, error) {
	if cfg == nil {
		return nil, errorx.NewConnectionError(errorx.ConfigurationError,
			"data source configuration is nil and thus, is not initialized")
	}

	lookup := cfg.Lookup
	if lookup == nil {
		if cfg.Factory == nil {
			logx.GetLogger().LogWarning(ctx, "data source configuration has neither a factory nor a lookup definition")
		}

		return cfg.Factory, nil
	}

	if err := validator.NewValidator().Validate(lookup); err != nil {
		return nil, errorx.NewConnectionErrorWrapper(err, errorx.ResolutionError, "malformed lookup definition '%s'", lookup.Name)
	}

	if dir == nil {
		return nil, errorx.NewConnectionError(errorx.ConfigurationError, "no directory available to look up '%s'", lookup.Name)
	}

	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("Initializing data source '%s' using the lookup definition (%d properties)", lookup.Name, len(lookup.Properties)))

	var (
		factory dbx.ConnectionFactory
		err     error
	)

	if len(lookup.Properties) == 0 {
		factory, err = dir.Lookup(ctx, lookup.Name)
	} else {
		factory, err = dir.LookupWithProperties(ctx, lookup.Name, lookup.Properties)
	}

	if err != nil {
		return nil, errorx.NewConnectionErrorWrapper(err, errorx.ResolutionError, "error in looking up data source '%s'", lookup.Name)
	}

	return factory, nil
}
