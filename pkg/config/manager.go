package config

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Manager owns the active configuration and swaps it atomically on reload.
type Manager struct {
	Service    Service
	current    atomic.Pointer[Config]
	sources    []Source
	callbacks  []func(*Config)
	callbackMu sync.RWMutex
	reloadMu   sync.Mutex
}

// NewManager creates a new configuration manager.
func NewManager(service Service) *Manager {
	if service == nil {
		service = NewService()
	}
	return &Manager{
		Service:   service,
		callbacks: make([]func(*Config), 0),
	}
}

// Load loads configuration from sources and remembers them for Reload.
func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	m.sources = append([]Source(nil), sources...)
	cfg, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.applyConfig(cfg)
	return cfg, nil
}

// Get returns the current configuration atomically.
func (m *Manager) Get() *Config {
	return m.current.Load()
}

// Reload forces a configuration reload from all sources.
func (m *Manager) Reload(ctx context.Context) error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	cfg, err := m.Service.Load(ctx, m.sources...)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	m.applyConfig(cfg)
	return nil
}

// OnChange registers a callback invoked after every successful (re)load.
func (m *Manager) OnChange(callback func(*Config)) {
	if callback == nil {
		return
	}
	m.callbackMu.Lock()
	m.callbacks = append(m.callbacks, callback)
	m.callbackMu.Unlock()
}

func (m *Manager) applyConfig(cfg *Config) {
	m.current.Store(cfg)
	m.callbackMu.RLock()
	callbacks := make([]func(*Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.callbackMu.RUnlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}
