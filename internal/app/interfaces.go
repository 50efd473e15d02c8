package app

import (
	"github.com/asaskevich/EventBus"

	"github.com/FischerJoao/mindestoque/config"
	"github.com/FischerJoao/mindestoque/internal/backend"
	"github.com/FischerJoao/mindestoque/internal/inventory"
	"github.com/FischerJoao/mindestoque/internal/session"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// BackendProvider provides the REST client for the inventory backend
type BackendProvider interface {
	Backend() *backend.Client
}

// SessionProvider provides the session manager
type SessionProvider interface {
	Sessions() *session.Manager
}

// InventoryProvider provides the per-session collection registry
type InventoryProvider interface {
	Inventory() *inventory.Registry
}

// BusProvider provides the mutation event bus
type BusProvider interface {
	Bus() EventBus.Bus
}

// AppContext combines all provider interfaces for full application context.
// Services should depend on specific providers or this combined interface.
type AppContext interface {
	ConfigProvider
	BackendProvider
	SessionProvider
	InventoryProvider
	BusProvider
}
