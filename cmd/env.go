package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/harborlight/scout-cli/internal/optimizer"
	"github.com/harborlight/scout-cli/internal/registry"
	"github.com/harborlight/scout-cli/internal/store"
)

// appEnv bundles the initialized components a command works with.
type appEnv struct {
	Store    store.Store
	Engine   *optimizer.Engine
	Registry *registry.Registry
}

// initApp validates config for the given mode, opens the store, loads
// the field catalog, and constructs the engine on top.
func initApp(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}

	reg := registry.Default()
	if cfg.Registry.Path != "" {
		if _, statErr := os.Stat(cfg.Registry.Path); statErr == nil {
			reg, err = registry.Load(cfg.Registry.Path)
			if err != nil {
				_ = st.Close()
				return nil, err
			}
			zap.L().Debug("field registry loaded", zap.String("path", cfg.Registry.Path))
		}
	}

	eng := optimizer.New(ctx, cfg.Engine.Optimizer(), st)

	return &appEnv{Store: st, Engine: eng, Registry: reg}, nil
}

// Close flushes the engine and releases the store.
func (e *appEnv) Close() {
	if err := e.Engine.Close(); err != nil {
		zap.L().Warn("engine close", zap.Error(err))
	}
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close", zap.Error(err))
	}
}
