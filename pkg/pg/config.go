package pg

import "time"

type Config struct {
	ConnectionString  string        `env:"TENANT_STORE_URL,required"`
	MaxOpenConns      int32         `env:"TENANT_STORE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns      int32         `env:"TENANT_STORE_MAX_IDLE_CONNS" envDefault:"5"`
	HealthCheckPeriod time.Duration `env:"TENANT_STORE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"TENANT_STORE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"TENANT_STORE_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"TENANT_STORE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"TENANT_STORE_RETRY_INTERVAL" envDefault:"5s"`

	MigrationsPath  string `env:"TENANT_STORE_MIGRATIONS_PATH" envDefault:"migrations/tenantstore"`
	MigrationsTable string `env:"TENANT_STORE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}
