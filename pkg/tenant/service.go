package tenant

import (
	"context"
	"log/slog"
	"time"
)

// Invalidator drops cached tenant metadata after a mutation.
// *CachedProvider implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// Service implements tenant lifecycle operations against the authoritative
// store. Every mutation invalidates the distributed metadata cache so the
// request pipeline observes the change without waiting out the TTL.
type Service struct {
	store       Storage
	invalidator Invalidator
	log         *slog.Logger
}

// NewService creates the lifecycle service. The invalidator may be nil when
// no metadata cache is in front of the store.
func NewService(store Storage, invalidator Invalidator, log *slog.Logger) *Service {
	return &Service{store: store, invalidator: invalidator, log: log}
}

// Create onboards a new tenant. The id must be a DNS-safe slug because it
// travels in headers, claims and cache keys.
func (s *Service) Create(ctx context.Context, t *Tenant) (*Tenant, error) {
	if !validIdentifier(t.ID) {
		return nil, ErrInvalidIdentifier
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant created", "tenant_id", t.ID)
	return t, nil
}

// GetByID returns one tenant or ErrTenantNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*Tenant, error) {
	return s.store.GetByID(ctx, id)
}

// GetAll lists every tenant.
func (s *Service) GetAll(ctx context.Context) ([]Tenant, error) {
	return s.store.GetAll(ctx)
}

// Activate enables a tenant. Unknown ids fail with ErrTenantNotFound.
func (s *Service) Activate(ctx context.Context, id string) (*Tenant, error) {
	return s.mutate(ctx, id, "activate", func(t *Tenant) {
		t.IsActive = true
	})
}

// Deactivate disables a tenant. Requests for it are rejected as soon as the
// cached metadata is invalidated (at worst after the metadata TTL).
func (s *Service) Deactivate(ctx context.Context, id string) (*Tenant, error) {
	return s.mutate(ctx, id, "deactivate", func(t *Tenant) {
		t.IsActive = false
	})
}

// UpgradeSubscription moves the subscription expiry. The active flag is
// untouched: activation and validity are orthogonal.
func (s *Service) UpgradeSubscription(ctx context.Context, id string, validUpto time.Time) (*Tenant, error) {
	return s.mutate(ctx, id, "upgrade subscription", func(t *Tenant) {
		t.ValidUpto = validUpto
	})
}

func (s *Service) mutate(ctx context.Context, id, action string, apply func(*Tenant)) (*Tenant, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(t)

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, id); err != nil {
			// The store update already succeeded; stale cache self-heals
			// after the TTL.
			s.log.WarnContext(ctx, "tenant: cache invalidation failed after mutation",
				"tenant_id", id, "action", action, "error", err)
		}
	}

	s.log.InfoContext(ctx, "tenant lifecycle change applied", "tenant_id", id, "action", action)
	return t, nil
}
