package tenantdb

import (
	"errors"
	"fmt"
	"time"
)

// Provider selects the relational engine backing tenant databases.
// Exactly two engines are supported; anything else is a startup error.
type Provider string

const (
	ProviderPostgres Provider = "postgres"
	ProviderMySQL    Provider = "mysql"
)

var (
	// ErrUnsupportedProvider is a configuration-time fatal error. A process
	// running with an unknown provider must never have started.
	ErrUnsupportedProvider = errors.New("unsupported database provider")

	// ErrNoTenantInContext is returned when a session is requested from a
	// context that carries no resolved tenant.
	ErrNoTenantInContext = errors.New("tenantdb: no tenant in context")
)

type Config struct {
	Provider                Provider      `env:"DB_PROVIDER" envDefault:"postgres"`
	DefaultConnectionString string        `env:"DB_DEFAULT_URL,required"` // shared database for tenants without a dedicated one
	MaxOpenConns            int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns            int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime         time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// HandleCapacity bounds the number of per-DSN connection handles kept
	// open at once; least recently used handles are retired on eviction,
	// closing once their in-flight statements drain. Size it above the
	// number of dedicated-DSN tenants expected to be active concurrently.
	HandleCapacity int `env:"DB_HANDLE_CAPACITY" envDefault:"64"`
}

// Validate rejects unknown providers. Called by the factory constructor so
// misconfiguration aborts startup rather than surfacing at query time.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderPostgres, ProviderMySQL:
		return nil
	default:
		return fmt.Errorf("%w: %q (supported: %q, %q)",
			ErrUnsupportedProvider, c.Provider, ProviderPostgres, ProviderMySQL)
	}
}
