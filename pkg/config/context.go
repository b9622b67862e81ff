package config

import (
	"context"
)

type ContextKey string

const ManagerCtxKey ContextKey = "config_manager"

func ContextWithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, ManagerCtxKey, m)
}

func ManagerFromContext(ctx context.Context) *Manager {
	if ctx == nil {
		return nil
	}
	m, _ := ctx.Value(ManagerCtxKey).(*Manager)
	return m
}

// FromContext returns the active configuration, or defaults when no manager
// has been attached.
func FromContext(ctx context.Context) *Config {
	if m := ManagerFromContext(ctx); m != nil {
		if cfg := m.Get(); cfg != nil {
			return cfg
		}
	}
	return Default()
}
