package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/adminkit/adminkit/pkg/tenant"
)

// Seeder inserts or reconciles baseline data in a tenant database. Seeders
// run on every startup and must be idempotent.
type Seeder interface {
	Name() string
	Seed(ctx context.Context, db *gorm.DB, t *tenant.Tenant) error
}

// SeederFunc adapts a function to the Seeder interface.
type SeederFunc struct {
	SeederName string
	Fn         func(ctx context.Context, db *gorm.DB, t *tenant.Tenant) error
}

func (s SeederFunc) Name() string { return s.SeederName }

func (s SeederFunc) Seed(ctx context.Context, db *gorm.DB, t *tenant.Tenant) error {
	return s.Fn(ctx, db, t)
}

type tenantStore interface {
	GetAll(ctx context.Context) ([]tenant.Tenant, error)
	EnsureExists(ctx context.Context, t *tenant.Tenant) error
}

type sessionFactory interface {
	SessionFor(ctx context.Context, t *tenant.Tenant) (*gorm.DB, error)
}

// Report summarizes a startup run. Failed maps tenant ID to the error that
// stopped that tenant's initialization.
type Report struct {
	Succeeded []string
	Failed    map[string]error
}

// Option configures the initializer.
type Option func(*Initializer)

// WithStoreMigrator installs the migration step for the tenant store
// itself. It runs before anything else and its failure aborts the run.
func WithStoreMigrator(migrate func(ctx context.Context) error) Option {
	return func(i *Initializer) { i.migrateStore = migrate }
}

// WithModels registers the schema migrated into every tenant database.
func WithModels(models ...any) Option {
	return func(i *Initializer) { i.models = append(i.models, models...) }
}

// WithSeeders appends seeders; they run per tenant in registration order.
func WithSeeders(seeders ...Seeder) Option {
	return func(i *Initializer) { i.seeders = append(i.seeders, seeders...) }
}

// WithRootTenant overrides the root tenant record seeded on startup.
func WithRootTenant(t tenant.Tenant) Option {
	return func(i *Initializer) { i.root = t }
}

func WithLogger(log *slog.Logger) Option {
	return func(i *Initializer) { i.log = log }
}

// Initializer brings the tenant fleet to a ready state on startup.
type Initializer struct {
	store        tenantStore
	sessions     sessionFactory
	migrateStore func(ctx context.Context) error
	root         tenant.Tenant
	models       []any
	seeders      []Seeder
	log          *slog.Logger
}

func New(store tenantStore, sessions sessionFactory, opts ...Option) *Initializer {
	i := &Initializer{
		store:    store,
		sessions: sessions,
		root: tenant.Tenant{
			ID:       tenant.DefaultTenantID,
			Name:     "Root",
			IsActive: true,
		},
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run executes the startup sequence. Control plane failures (store
// migration, root seeding, listing tenants) abort the run; a failure inside
// a single tenant is recorded in the report and the run continues.
func (i *Initializer) Run(ctx context.Context) (*Report, error) {
	if i.migrateStore != nil {
		if err := i.migrateStore(ctx); err != nil {
			return nil, fmt.Errorf("migrate tenant store: %w", err)
		}
	}

	root := i.root
	if err := i.store.EnsureExists(ctx, &root); err != nil {
		return nil, fmt.Errorf("seed root tenant: %w", err)
	}

	tenants, err := i.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	report := &Report{Failed: make(map[string]error)}
	for idx := range tenants {
		t := &tenants[idx]
		if err := i.initTenant(ctx, t); err != nil {
			i.log.ErrorContext(ctx, "tenant initialization failed",
				slog.String("tenant_id", t.ID),
				slog.Any("error", err),
			)
			report.Failed[t.ID] = err
			continue
		}
		report.Succeeded = append(report.Succeeded, t.ID)
	}

	i.log.InfoContext(ctx, "tenant fleet initialized",
		slog.Int("succeeded", len(report.Succeeded)),
		slog.Int("failed", len(report.Failed)),
	)
	return report, nil
}

func (i *Initializer) initTenant(ctx context.Context, t *tenant.Tenant) error {
	db, err := i.sessions.SessionFor(ctx, t)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	if len(i.models) > 0 {
		if err := db.AutoMigrate(i.models...); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	for _, s := range i.seeders {
		if err := s.Seed(ctx, db, t); err != nil {
			return fmt.Errorf("seeder %s: %w", s.Name(), err)
		}
	}
	return nil
}
