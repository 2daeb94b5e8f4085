package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/adminkit/adminkit/core"
	"github.com/adminkit/adminkit/modules/dimension"
	"github.com/adminkit/adminkit/modules/entitycode"
	"github.com/adminkit/adminkit/modules/identity"
	"github.com/adminkit/adminkit/modules/quiz"
	"github.com/adminkit/adminkit/modules/tenantadmin"
	"github.com/adminkit/adminkit/modules/todo"
	"github.com/adminkit/adminkit/pkg/audit"
	"github.com/adminkit/adminkit/pkg/bootstrap"
	"github.com/adminkit/adminkit/pkg/cache"
	"github.com/adminkit/adminkit/pkg/clientip"
	"github.com/adminkit/adminkit/pkg/config"
	"github.com/adminkit/adminkit/pkg/httpserver"
	"github.com/adminkit/adminkit/pkg/logger"
	"github.com/adminkit/adminkit/pkg/pg"
	"github.com/adminkit/adminkit/pkg/rbac"
	"github.com/adminkit/adminkit/pkg/redis"
	"github.com/adminkit/adminkit/pkg/tenant"
	"github.com/adminkit/adminkit/pkg/tenantdb"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		pgCfg    pg.Config
		redisCfg redis.Config
		dbCfg    tenantdb.Config
		cacheCfg cache.Config
		httpCfg  httpserver.Config
	)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&dbCfg)
	config.MustLoad(&cacheCfg)
	config.MustLoad(&httpCfg)

	log := logger.New(
		logger.WithContextExtractors(tenant.LoggerExtractor()),
		logger.WithAttrs(slog.String("service", "adminkit")),
	)
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect tenant store: %w", err)
	}
	defer pool.Close()

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	factory, err := tenantdb.NewFactory(dbCfg, log)
	if err != nil {
		return fmt.Errorf("tenant database factory: %w", err)
	}
	defer factory.Close()

	store := tenant.NewStore(pool)
	provider := tenant.NewCachedProvider(store, redisClient, tenant.DefaultMetadataTTL, log)
	lifecycle := tenant.NewService(store, provider, log)
	cacheSvc := cache.New(redisClient, cacheCfg, log)

	authz, err := rbac.NewAuthorizer(ctx, rbac.DefaultRoles())
	if err != nil {
		return fmt.Errorf("build authorizer: %w", err)
	}

	init := bootstrap.New(store, factory,
		bootstrap.WithStoreMigrator(func(ctx context.Context) error {
			return pg.Migrate(ctx, pool, pgCfg, log)
		}),
		bootstrap.WithModels(
			&quiz.Quiz{},
			&dimension.Dimension{},
			&entitycode.EntityCode{},
			&todo.Todo{},
			&identity.User{},
			&audit.Event{},
		),
		bootstrap.WithSeeders(entityCodeSeeder()),
		bootstrap.WithLogger(log),
	)
	report, err := init.Run(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	for id, terr := range report.Failed {
		log.Warn("tenant left uninitialized", slog.String("tenant_id", id), slog.Any("error", terr))
	}

	auditor := audit.NewLogger(audit.NewGormStorage(factory))

	quizSvc := quiz.NewService(factory, cacheSvc, log)
	dimensionSvc := dimension.NewService(factory, cacheSvc, log)
	entityCodeSvc := entitycode.NewService(factory, cacheSvc, log)
	todoSvc := todo.NewService(factory, cacheSvc, log)
	identitySvc := identity.NewService(factory, authz, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(clientip.Middleware)

	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(tenant.Middleware(tenant.DefaultResolver(), provider,
			tenant.WithErrorHandler(tenantAPIError)))
		r.Use(identity.Middleware())
		r.Use(audit.Middleware(auditor, log))

		r.Route("/quizzes", guarded(authz, "quizzes", quiz.NewHandler(quizSvc).Router()))
		r.Route("/dimensions", guarded(authz, "dimensions", dimension.NewHandler(dimensionSvc).Router()))
		r.Route("/entity-codes", guarded(authz, "entitycodes", entitycode.NewHandler(entityCodeSvc).Router()))
		r.Route("/todos", guarded(authz, "todos", todo.NewHandler(todoSvc).Router()))
		r.Route("/users", guarded(authz, "users", identity.NewHandler(identitySvc).Router()))

		r.Route("/admin/tenants", func(r chi.Router) {
			r.Use(tenantadmin.RequireRoot)
			r.Use(rbac.RequirePermission(authz, "tenants.manage"))
			r.Mount("/", tenantadmin.NewHandler(lifecycle).Router())
		})
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	log.InfoContext(ctx, "starting http server", slog.String("addr", httpCfg.Addr))
	if err := srv.Run(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// tenantAPIError renders tenant-resolution failures in the same JSON
// envelope as the rest of the API, with stable keys per failure mode.
func tenantAPIError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrTenantRequired):
		core.Error(w, core.HTTPError{Code: http.StatusUnauthorized, Key: "tenant_required"})
	case errors.Is(err, tenant.ErrTenantNotFound):
		core.Error(w, core.HTTPError{Code: http.StatusNotFound, Key: "tenant_not_found"})
	case errors.Is(err, tenant.ErrTenantInactive):
		core.Error(w, core.HTTPError{Code: http.StatusForbidden, Key: "tenant_inactive"})
	case errors.Is(err, tenant.ErrTenantExpired):
		core.Error(w, core.HTTPError{Code: http.StatusForbidden, Key: "tenant_expired"})
	case errors.Is(err, tenant.ErrInvalidIdentifier):
		core.Error(w, core.HTTPError{Code: http.StatusBadRequest, Key: "invalid_tenant_identifier"})
	default:
		core.Error(w, err)
	}
}

// guarded mounts a module router behind read/write permission checks derived
// from the module namespace: GET requires <ns>.read, mutations <ns>.write.
func guarded(authz *rbac.Authorizer, namespace string, h http.Handler) func(chi.Router) {
	read := rbac.RequirePermission(authz, namespace+".read")
	write := rbac.RequirePermission(authz, namespace+".write")
	return func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				switch req.Method {
				case http.MethodGet, http.MethodHead:
					read(next).ServeHTTP(w, req)
				default:
					write(next).ServeHTTP(w, req)
				}
			})
		})
		r.Mount("/", h)
	}
}

// entityCodeSeeder provisions the reference codes every tenant starts with.
// FirstOrCreate keeps reruns idempotent.
func entityCodeSeeder() bootstrap.Seeder {
	defaults := []entitycode.EntityCode{
		{Code: "draft", Label: "Draft", Kind: "status"},
		{Code: "published", Label: "Published", Kind: "status"},
		{Code: "archived", Label: "Archived", Kind: "status"},
	}
	return bootstrap.SeederFunc{
		SeederName: "entity-codes",
		Fn: func(ctx context.Context, db *gorm.DB, t *tenant.Tenant) error {
			for _, ec := range defaults {
				row := entitycode.EntityCode{Code: ec.Code, Kind: ec.Kind}
				if err := db.WithContext(tenant.WithTenant(ctx, t)).
					Where("code = ? AND kind = ?", ec.Code, ec.Kind).
					Attrs(entitycode.EntityCode{Label: ec.Label}).
					FirstOrCreate(&row).Error; err != nil {
					return fmt.Errorf("seed %s/%s: %w", ec.Kind, ec.Code, err)
				}
			}
			return nil
		},
	}
}
