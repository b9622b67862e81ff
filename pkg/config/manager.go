package config

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Manager holds the resolved configuration for the lifetime of a command.
type Manager struct {
	Service Service
	current atomic.Pointer[Config]
}

func NewManager(service Service) *Manager {
	if service == nil {
		service = NewService()
	}
	return &Manager{Service: service}
}

// Load resolves the configuration and makes it the current one.
func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	cfg, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.current.Store(cfg)
	return cfg, nil
}

// Get returns the current configuration or nil before the first Load.
func (m *Manager) Get() *Config {
	return m.current.Load()
}

// SourceOf reports which layer supplied the key.
func (m *Manager) SourceOf(key string) SourceType {
	return m.Service.GetSource(key)
}
