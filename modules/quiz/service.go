package quiz

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

// ErrNotFound is returned when no quiz matches within the current tenant.
var ErrNotFound = errors.New("quiz: not found")

const cacheTTL = 10 * time.Minute

type sessionFactory interface {
	Session(ctx context.Context) (*gorm.DB, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, opts ...cache.EntryOption) error
	Remove(ctx context.Context, key string) error
}

// Service implements quiz CRUD over the scoped data plane with cache-backed
// single-record reads. The cache is optional; a nil cacheStore degrades to
// database-only reads.
type Service struct {
	sessions sessionFactory
	cache    cacheStore
	log      *slog.Logger
}

func NewService(sessions sessionFactory, cacheStore cacheStore, log *slog.Logger) *Service {
	return &Service{sessions: sessions, cache: cacheStore, log: log}
}

// cacheKey is always tenant-qualified so equal record ids in different
// tenants never collide.
func cacheKey(tenantID string, id uuid.UUID) string {
	return cache.Key("quiz", tenantID, id.String())
}

type CreateParams struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	QuestionCount int    `json:"question_count"`
}

func (p CreateParams) validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return nil
}

// ErrInvalidInput is returned for requests that fail validation.
var ErrInvalidInput = errors.New("quiz: invalid input")

func (s *Service) Create(ctx context.Context, params CreateParams) (*Quiz, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	q := &Quiz{
		Title:         params.Title,
		Description:   params.Description,
		QuestionCount: params.QuestionCount,
	}
	if err := db.Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// Get reads one quiz, preferring the cache. Cache infrastructure failures
// fall through to the database.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Quiz, error) {
	tenantID, hasTenant := tenant.IDFromContext(ctx)

	if s.cache != nil && hasTenant {
		var cached Quiz
		found, err := s.cache.Get(ctx, cacheKey(tenantID, id), &cached)
		switch {
		case err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded):
			s.log.WarnContext(ctx, "quiz cache read failed", logger.Error(err))
		case err != nil:
			return nil, err
		case found:
			return &cached, nil
		}
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var q Quiz
	if err := db.First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.cache != nil && hasTenant {
		if err := s.cache.Set(ctx, cacheKey(tenantID, id), &q, cache.WithSlidingExpiration(cacheTTL)); err != nil {
			s.log.WarnContext(ctx, "quiz cache write failed", logger.Error(err))
		}
	}
	return &q, nil
}

// List returns all quizzes of the current tenant, newest first.
func (s *Service) List(ctx context.Context) ([]Quiz, error) {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var quizzes []Quiz
	if err := db.Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

type UpdateParams struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	QuestionCount *int    `json:"question_count"`
	Published     *bool   `json:"published"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Quiz, error) {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var q Quiz
	if err := db.First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if params.Title != nil {
		if *params.Title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		q.Title = *params.Title
	}
	if params.Description != nil {
		q.Description = *params.Description
	}
	if params.QuestionCount != nil {
		q.QuestionCount = *params.QuestionCount
	}
	if params.Published != nil {
		q.Published = *params.Published
	}

	if err := db.Save(&q).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return &q, nil
}

// Delete soft deletes a quiz and records who deleted it. The row stays in
// the database with deleted_at set and disappears from default queries.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return err
	}

	if actor, ok := tenantdb.ActorFromContext(ctx); ok {
		if err := db.Model(&Quiz{}).Where("id = ?", id).Update("deleted_by", actor).Error; err != nil {
			return err
		}
	}

	res := db.Delete(&Quiz{}, "id = ?", id)
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
		s.log.WarnContext(ctx, "quiz cache invalidation failed", logger.Error(err))
	}
}
