package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/ledgerline/soi-cli/internal/store"
	"github.com/ledgerline/soi-cli/internal/validate"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "soi-runs.db"
		}
		st, err := store.NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEngine builds the validation engine from loaded config.
func initEngine() (validate.Engine, error) {
	opts, err := cfg.Sanitize.Options()
	if err != nil {
		return validate.Engine{}, err
	}
	return validate.Engine{
		Tolerance: cfg.Tolerance.Tolerances(),
		Sanitize:  opts,
	}, nil
}
