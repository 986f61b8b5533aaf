package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/risus/internal/config"
	"github.com/cory-johannsen/risus/internal/game/ruleset"
	"github.com/cory-johannsen/risus/internal/scripting"
	"github.com/cory-johannsen/risus/internal/storage/postgres"
	"github.com/cory-johannsen/risus/internal/tables"
)

// buildRegistry registers the built-in policies plus any found in the
// configured YAML and Lua directories.
func buildRegistry(cfg config.RulesetConfig, logger *zap.Logger) (*ruleset.Registry, error) {
	reg := ruleset.DefaultRegistry()

	var loaded []ruleset.Policy
	if cfg.Dir != "" {
		policies, err := ruleset.LoadPolicies(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("loading rulesets: %w", err)
		}
		loaded = append(loaded, policies...)
	}
	if cfg.ScriptDir != "" {
		policies, err := scripting.LoadPolicies(cfg.ScriptDir, cfg.ScriptInstructionLimit)
		if err != nil {
			return nil, fmt.Errorf("loading ruleset scripts: %w", err)
		}
		loaded = append(loaded, policies...)
	}
	for _, p := range loaded {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
		logger.Debug("ruleset registered",
			zap.String("ruleset", p.ID),
			zap.String("fingerprint", p.Fingerprint()),
		)
	}
	return reg, nil
}

// openStore connects the probability cache when the database is enabled.
// The returned close function is always non-nil.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (tables.Store, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}
	pool, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening probability cache: %w", err)
	}
	logger.Info("probability cache connected", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return pool.Cells(), pool.Close, nil
}

// newService builds the table service for a command, with the cache when
// configured.
func newService(ctx context.Context, a *app, opts ...tables.Option) (*tables.Service, func(), error) {
	store, closeStore, err := openStore(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, tables.WithWorkers(a.cfg.Table.Workers))
	if store != nil {
		opts = append(opts, tables.WithStore(store))
	}
	return tables.NewService(a.registry, a.logger, opts...), closeStore, nil
}
