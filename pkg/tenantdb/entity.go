package tenantdb

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantOwned marks models whose rows belong to exactly one tenant. The
// scoped session callbacks filter and stamp every model implementing it.
type TenantOwned interface {
	GetTenantID() string
	SetTenantID(id string)
}

// TenantEntity is the embeddable base for tenant-owned models. The TenantID
// discriminator is assigned by the create callback from the ambient tenant;
// values set by application code are overwritten.
type TenantEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string    `gorm:"size:63;not null;index" json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *TenantEntity) GetTenantID() string   { return e.TenantID }
func (e *TenantEntity) SetTenantID(id string) { e.TenantID = id }

// BeforeCreate assigns the primary key. Tenant stamping happens in the
// create callback, not here, so it cannot be shadowed by model hooks.
func (e *TenantEntity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// AuditableEntity extends TenantEntity with soft deletion. DeletedAt drives
// GORM's universal soft-delete filter: deleted rows disappear from every
// default query regardless of tenant, and reappear only through the
// explicit Unscoped bypass. DeletedBy records the acting user.
type AuditableEntity struct {
	TenantEntity
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy string         `gorm:"size:63" json:"-"`
}
