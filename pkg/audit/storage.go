package audit

import (
	"context"

	"gorm.io/gorm"
)

type sessionFactory interface {
	Session(ctx context.Context) (*gorm.DB, error)
}

// GormStorage writes events into the ambient tenant's database. Inserting
// through the scoped session means TenantID is stamped by the data plane,
// not trusted from the event.
type GormStorage struct {
	sessions sessionFactory
}

func NewGormStorage(sessions sessionFactory) *GormStorage {
	return &GormStorage{sessions: sessions}
}

func (s *GormStorage) Store(ctx context.Context, event *Event) error {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return err
	}
	return db.Create(event).Error
}
