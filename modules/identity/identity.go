// Package identity manages tenant-local user accounts and their role
// assignments. Credential verification is the auth layer's concern; this
// module only owns the opaque password hash column.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adminkit/adminkit/pkg/rbac"
	"github.com/adminkit/adminkit/pkg/tenantdb"
)

var (
	ErrNotFound     = errors.New("identity: user not found")
	ErrInvalidInput = errors.New("identity: invalid input")
	ErrUnknownRole  = errors.New("identity: unknown role")
)

type User struct {
	tenantdb.AuditableEntity

	Email       string `gorm:"size:255;not null;index" json:"email"`
	DisplayName string `gorm:"size:255" json:"display_name"`
	Active      bool   `json:"active"`
	RoleName    string `gorm:"size:63;not null" json:"role_name"`

	// PasswordHash is written by the auth layer, never serialized.
	PasswordHash string `gorm:"size:255" json:"-"`
}

func (User) TableName() string { return "users" }

type sessionFactory interface {
	Session(ctx context.Context) (*gorm.DB, error)
}

type Service struct {
	sessions sessionFactory
	authz    *rbac.Authorizer
	log      *slog.Logger
}

func NewService(sessions sessionFactory, authz *rbac.Authorizer, log *slog.Logger) *Service {
	return &Service{sessions: sessions, authz: authz, log: log}
}

type CreateParams struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	RoleName    string `json:"role_name"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}

	role := params.RoleName
	if role == "" {
		role = rbac.RoleViewer
	}
	if !s.authz.KnownRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:       email,
		DisplayName: params.DisplayName,
		Active:      true,
		RoleName:    role,
	}
	if err := db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var u User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := db.Order("email").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// AssignRole switches a user to another defined role.
func (s *Service) AssignRole(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	if !s.authz.KnownRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	u.RoleName = role
	if err := db.Save(u).Error; err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user role changed",
		slog.String("user_id", u.ID.String()),
		slog.String("role", role),
	)
	return u, nil
}

// SetActive enables or disables a user account.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	db, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	u.Active = active
	if err := db.Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	db, err := s.sessions.Session(ctx)
	if err != nil {
		return err
	}

	if actor, ok := tenantdb.ActorFromContext(ctx); ok {
		if err := db.Model(&User{}).Where("id = ?", id).Update("deleted_by", actor).Error; err != nil {
			return err
		}
	}

	res := db.Delete(&User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
