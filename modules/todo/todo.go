// Package todo manages tenant-owned task items.
package todo

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
	ErrNotFound     = errors.New("todo: not found")
	ErrInvalidInput = errors.New("todo: invalid input")
)

const cacheTTL = 5 * time.Minute

type Todo struct {
	tenantdb.AuditableEntity

	Title   string     `gorm:"size:255;not null" json:"title"`
	Done    bool       `gorm:"index" json:"done"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

func (Todo) TableName() string { return "todos" }

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
	return cache.Key("todo", tenantID, id.String())
}

type CreateParams struct {
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Todo, error) {
	if params.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	item := &Todo{Title: params.Title, DueDate: params.DueDate}
	if err := db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Todo, error) {
	tenantID, hasTenant := tenant.IDFromContext(ctx)

	if s.cache != nil && hasTenant {
		var cached Todo
		found, err := s.cache.Get(ctx, cacheKey(tenantID, id), &cached)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			s.log.WarnContext(ctx, "todo cache read failed", logger.Error(err))
		} else if found {
			return &cached, nil
		}
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var item Todo
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.cache != nil && hasTenant {
		if err := s.cache.Set(ctx, cacheKey(tenantID, id), &item, cache.WithSlidingExpiration(cacheTTL)); err != nil {
			s.log.WarnContext(ctx, "todo cache write failed", logger.Error(err))
		}
	}
	return &item, nil
}

// List returns the tenant's open items first, then completed ones, both by
// due date.
func (s *Service) List(ctx context.Context) ([]Todo, error) {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var items []Todo
	if err := db.Order("done, due_date").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Complete marks an item done. Completing an already done item is a no-op,
// not an error.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Todo, error) {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var item Todo
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !item.Done {
		item.Done = true
		if err := db.Save(&item).Error; err != nil {
			return nil, err
		}
		s.invalidate(ctx, id)
	}
	return &item, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return err
	}

	if actor, ok := tenantdb.ActorFromContext(ctx); ok {
		if err := db.Model(&Todo{}).Where("id = ?", id).Update("deleted_by", actor).Error; err != nil {
			return err
		}
	}

	res := db.Delete(&Todo{}, "id = ?", id)
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
		s.log.WarnContext(ctx, "todo cache invalidation failed", logger.Error(err))
	}
}
