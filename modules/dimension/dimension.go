// Package dimension manages tenant-owned measurement dimensions used by
// quizzes and reporting.
package dimension

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
	ErrNotFound     = errors.New("dimension: not found")
	ErrInvalidInput = errors.New("dimension: invalid input")
)

const cacheTTL = 15 * time.Minute

type Dimension struct {
	tenantdb.AuditableEntity

	Name string `gorm:"size:255;not null" json:"name"`
	Code string `gorm:"size:63;not null;index" json:"code"`
	Unit string `gorm:"size:63" json:"unit"`
}

func (Dimension) TableName() string { return "dimensions" }

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
	return cache.Key("dimension", tenantID, id.String())
}

type CreateParams struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Unit string `json:"unit"`
}

func (p CreateParams) validate() error {
	if p.Name == "" || p.Code == "" {
		return fmt.Errorf("%w: name and code are required", ErrInvalidInput)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Dimension, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dimension{Name: params.Name, Code: params.Code, Unit: params.Unit}
	if err := db.Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Dimension, error) {
	tenantID, hasTenant := tenant.IDFromContext(ctx)

	if s.cache != nil && hasTenant {
		var cached Dimension
		found, err := s.cache.Get(ctx, cacheKey(tenantID, id), &cached)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			s.log.WarnContext(ctx, "dimension cache read failed", logger.Error(err))
		} else if found {
			return &cached, nil
		}
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var d Dimension
	if err := db.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.cache != nil && hasTenant {
		if err := s.cache.Set(ctx, cacheKey(tenantID, id), &d, cache.WithSlidingExpiration(cacheTTL)); err != nil {
			s.log.WarnContext(ctx, "dimension cache write failed", logger.Error(err))
		}
	}
	return &d, nil
}

func (s *Service) List(ctx context.Context) ([]Dimension, error) {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var dims []Dimension
	if err := db.Order("code").Find(&dims).Error; err != nil {
		return nil, err
	}
	return dims, nil
}

type UpdateParams struct {
	Name *string `json:"name"`
	Unit *string `json:"unit"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Dimension, error) {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var d Dimension
	if err := db.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if params.Name != nil {
		if *params.Name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		d.Name = *params.Name
	}
	if params.Unit != nil {
		d.Unit = *params.Unit
	}

	if err := db.Save(&d).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return &d, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return err
	}

	if actor, ok := tenantdb.ActorFromContext(ctx); ok {
		if err := db.Model(&Dimension{}).Where("id = ?", id).Update("deleted_by", actor).Error; err != nil {
			return err
		}
	}

	res := db.Delete(&Dimension{}, "id = ?", id)
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
		s.log.WarnContext(ctx, "dimension cache invalidation failed", logger.Error(err))
	}
}
