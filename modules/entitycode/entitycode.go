// Package entitycode manages tenant-owned reference codes (status codes,
// categories, classifications) shared by the other business modules.
package entitycode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adminkit/adminkit/pkg/cache"
	"github.com/adminkit/adminkit/pkg/logger"
	"github.com/adminkit/adminkit/pkg/tenant"
	"github.com/adminkit/adminkit/pkg/tenantdb"
)

var (
	ErrNotFound     = errors.New("entitycode: not found")
	ErrInvalidInput = errors.New("entitycode: invalid input")
)

// Reference data changes rarely; cache entries live longer than the
// business records in other modules.
const cacheTTL = 30 * time.Minute

type EntityCode struct {
	tenantdb.AuditableEntity

	Code  string `gorm:"size:63;not null;index" json:"code"`
	Label string `gorm:"size:255;not null" json:"label"`
	Kind  string `gorm:"size:63;not null;index" json:"kind"`
}

func (EntityCode) TableName() string { return "entity_codes" }

type sessionFactory interface {
	Session(ctx context.Context) (*gorm.DB, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, opts ...cache.EntryOption) error
	Remove(ctx context.Context, key string) error
}

type Service struct {
	sessions sessionFactory
	cache    cacheStore
	log      *slog.Logger
}

func NewService(sessions sessionFactory, cacheStore cacheStore, log *slog.Logger) *Service {
	return &Service{sessions: sessions, cache: cacheStore, log: log}
}

func cacheKey(tenantID string, id uuid.UUID) string {
	return cache.Key("entitycode", tenantID, id.String())
}

type CreateParams struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

func (p CreateParams) validate() error {
	if p.Code == "" || p.Label == "" || p.Kind == "" {
		return fmt.Errorf("%w: code, label and kind are required", ErrInvalidInput)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*EntityCode, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	ec := &EntityCode{Code: params.Code, Label: params.Label, Kind: params.Kind}
	if err := db.Create(ec).Error; err != nil {
		return nil, err
	}
	return ec, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*EntityCode, error) {
	tenantID, hasTenant := tenant.IDFromContext(ctx)

	if s.cache != nil && hasTenant {
		var cached EntityCode
		found, err := s.cache.Get(ctx, cacheKey(tenantID, id), &cached)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			s.log.WarnContext(ctx, "entity code cache read failed", logger.Error(err))
		} else if found {
			return &cached, nil
		}
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var ec EntityCode
	if err := db.First(&ec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.cache != nil && hasTenant {
		if err := s.cache.Set(ctx, cacheKey(tenantID, id), &ec, cache.WithSlidingExpiration(cacheTTL)); err != nil {
			s.log.WarnContext(ctx, "entity code cache write failed", logger.Error(err))
		}
	}
	return &ec, nil
}

// List returns codes of the tenant, optionally narrowed to one kind.
func (s *Service) List(ctx context.Context, kind string) ([]EntityCode, error) {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	q := db.Order("kind, code")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var codes []EntityCode
	if err := q.Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

type UpdateParams struct {
	Label *string `json:"label"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*EntityCode, error) {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var ec EntityCode
	if err := db.First(&ec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if params.Label != nil {
		if *params.Label == "" {
			return nil, fmt.Errorf("%w: label is required", ErrInvalidInput)
		}
		ec.Label = *params.Label
	}

	if err := db.Save(&ec).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return &ec, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return err
	}

	if actor, ok := tenantdb.ActorFromContext(ctx); ok {
		if err := db.Model(&EntityCode{}).Where("id = ?", id).Update("deleted_by", actor).Error; err != nil {
			return err
		}
	}

	res := db.Delete(&EntityCode{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if s.cache == nil || !ok {
		return
	}
	if err := s.cache.Remove(ctx, cacheKey(tenantID, id)); err != nil {
		s.log.WarnContext(ctx, "entity code cache invalidation failed", logger.Error(err))
	}
}
