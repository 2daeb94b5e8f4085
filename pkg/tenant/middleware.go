package tenant

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// ErrorHandler handles errors raised during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	errorHandler ErrorHandler
	skipPaths    []string
	now          func() time.Time
}

// MiddlewareOption configures the resolution middleware.
type MiddlewareOption func(*middlewareConfig)

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution entirely,
// e.g. health probes and the tenant sign-up endpoint.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) MiddlewareOption {
	return func(c *middlewareConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Middleware resolves the tenant for every request and stores it in the
// request context. Requests outside the skip list that carry no resolvable
// identifier are rejected before any data access happens, as are tenants
// that are unknown, deactivated, or expired.
func Middleware(resolve Resolver, provider Provider, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: defaultErrorHandler,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			id, err := resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if id == "" {
				cfg.errorHandler(w, r, ErrTenantRequired)
				return
			}

			t, err := provider.GetByID(r.Context(), id)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			if err := t.Validate(cfg.now()); err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}

// defaultErrorHandler maps resolution failures onto HTTP statuses without
// leaking connection or provider details.
func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantRequired):
		http.Error(w, "Tenant identifier is required", http.StatusUnauthorized)
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	case errors.Is(err, ErrTenantInactive):
		http.Error(w, "Tenant is deactivated", http.StatusForbidden)
	case errors.Is(err, ErrTenantExpired):
		http.Error(w, "Tenant subscription has expired", http.StatusForbidden)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "Invalid tenant identifier", http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
