package tenantdb

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/adminkit/adminkit/pkg/cache"
	"github.com/adminkit/adminkit/pkg/tenant"
)

// Factory builds tenant-scoped database sessions. It is constructed once at
// startup; sessions are created fresh per unit of work and must not be
// reused across requests or tenants. Connection handles, on the other hand,
// are pooled per DSN so tenants sharing the default database share one
// pool.
type Factory struct {
	cfg       Config
	log       *slog.Logger
	dialector func(dsn string) gorm.Dialector

	mu      sync.Mutex
	handles *cache.LRU[string, *gorm.DB]
}

// NewFactory validates the provider configuration and prepares the handle
// pool. An unsupported provider fails here, at startup.
func NewFactory(cfg Config, log *slog.Logger) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Factory{cfg: cfg, log: log}

	switch cfg.Provider {
	case ProviderPostgres:
		f.dialector = func(dsn string) gorm.Dialector { return postgres.Open(dsn) }
	case ProviderMySQL:
		f.dialector = func(dsn string) gorm.Dialector { return mysql.Open(dsn) }
	}

	capacity := cfg.HandleCapacity
	if capacity <= 0 {
		capacity = 64
	}
	f.handles = cache.NewLRU[string, *gorm.DB](capacity, f.retireHandle)

	return f, nil
}

// Grace window for retiring evicted handles. Sessions created before the
// eviction keep working until their statements drain or the window runs out.
const (
	retireGracePeriod  = 30 * time.Second
	retirePollInterval = 100 * time.Millisecond
)

// retireHandle closes an evicted handle once its in-use connections drain,
// so sessions opened against it before eviction do not start failing with a
// closed database mid-request. HandleCapacity should still exceed the number
// of dedicated-DSN tenants expected to be active concurrently; the grace
// window softens capacity misconfiguration, it does not remove the limit.
func (f *Factory) retireHandle(_ string, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	go func() {
		deadline := time.Now().Add(retireGracePeriod)
		for time.Now().Before(deadline) && sqlDB.Stats().InUse > 0 {
			time.Sleep(retirePollInterval)
		}
		// The DSN is not logged; it may carry credentials.
		if err := sqlDB.Close(); err != nil {
			f.log.Warn("closing evicted database handle", slog.String("error", err.Error()))
		}
	}()
}

// Session returns a scoped session for the tenant resolved in ctx.
// Fails with ErrNoTenantInContext when resolution has not happened; data
// access without a resolved tenant is a programming error, not a fallback
// path.
func (f *Factory) Session(ctx context.Context) (*gorm.DB, error) {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, ErrNoTenantInContext
	}
	return f.SessionFor(ctx, t)
}

// SessionFor builds a session for an explicitly provided tenant. Used by
// the startup initializer, which iterates tenants before any request
// context exists.
func (f *Factory) SessionFor(ctx context.Context, t *tenant.Tenant) (*gorm.DB, error) {
	dsn := t.ConnectionString
	if dsn == "" {
		// Basic tenants without dedicated infrastructure share the default
		// database; isolation then rests on the discriminator filter.
		dsn = f.cfg.DefaultConnectionString
	}

	handle, err := f.handle(dsn)
	if err != nil {
		return nil, err
	}

	// The tenant is pinned into the session context; the scoping callbacks
	// read it from there.
	return handle.Session(&gorm.Session{
		Context: tenant.WithTenant(ctx, t),
		NewDB:   true,
	}), nil
}

// Close releases every pooled connection handle.
func (f *Factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handles.Clear()
}

func (f *Factory) handle(dsn string) (*gorm.DB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if db, ok := f.handles.Get(dsn); ok {
		return db, nil
	}

	db, err := gorm.Open(f.dialector(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := registerCallbacks(db); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(f.cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(f.cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(f.cfg.ConnMaxLifetime)
	}

	f.handles.Put(dsn, db)
	return db, nil
}
