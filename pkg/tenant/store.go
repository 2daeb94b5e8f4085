package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adminkit/adminkit/pkg/pg"
)

// Store is the pgx-backed authoritative tenant store. It talks to the
// dedicated tenant-store database and implements Storage.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a tenant-store connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const tenantColumns = `id, name, connection_string, admin_email, is_active, valid_upto, created_at, updated_at`

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant
	err := row.Scan(&t.ID, &t.Name, &t.ConnectionString, &t.AdminEmail, &t.IsActive, &t.ValidUpto, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByID loads one tenant. Returns ErrTenantNotFound for unknown ids.
func (s *Store) GetByID(ctx context.Context, id string) (*Tenant, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	return scanTenant(row)
}

// GetAll returns every known tenant ordered by creation time. Used by the
// startup initializer and the administrative API.
func (s *Store) GetAll(ctx context.Context) ([]Tenant, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

// Create inserts a new tenant row. The id is immutable afterwards.
func (s *Store) Create(ctx context.Context, t *Tenant) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO tenants (`+tenantColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Name, t.ConnectionString, t.AdminEmail, t.IsActive, t.ValidUpto, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// Update persists mutable tenant fields. The id and creation time never
// change. Returns ErrTenantNotFound if the row does not exist.
func (s *Store) Update(ctx context.Context, t *Tenant) error {
	t.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET name = $2, connection_string = $3, admin_email = $4, is_active = $5, valid_upto = $6, updated_at = $7 WHERE id = $1`,
		t.ID, t.Name, t.ConnectionString, t.AdminEmail, t.IsActive, t.ValidUpto, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// EnsureExists inserts the tenant if its id is not yet present. Duplicate
// inserts from concurrent bootstraps are treated as success, which keeps
// root-tenant seeding idempotent.
func (s *Store) EnsureExists(ctx context.Context, t *Tenant) error {
	_, err := s.GetByID(ctx, t.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrTenantNotFound) {
		return err
	}

	if err := s.Create(ctx, t); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}
	return nil
}
