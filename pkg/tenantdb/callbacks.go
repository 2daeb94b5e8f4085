package tenantdb

import (
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adminkit/adminkit/pkg/tenant"
)

var tenantOwnedType = reflect.TypeOf((*TenantOwned)(nil)).Elem()

// registerCallbacks installs the tenant scoping hooks on a connection
// handle. Reads, updates and deletes against tenant-owned models gain a
// tenant_id predicate; creates have TenantID stamped from the ambient
// tenant, overwriting whatever the caller set.
func registerCallbacks(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").Register("tenantdb:stamp_tenant", stampTenant); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("tenantdb:scope_query", scopeTenant); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenantdb:scope_row", scopeTenant); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenantdb:scope_update", scopeTenant); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenantdb:scope_delete", scopeTenant); err != nil {
		return err
	}
	return nil
}

// scopeTenant narrows the statement to the ambient tenant's rows. A
// tenant-owned model reached without a tenant in context aborts the
// statement rather than running unscoped.
func scopeTenant(db *gorm.DB) {
	if db.Statement.Schema == nil || !isTenantOwned(db.Statement.Schema.ModelType) {
		return
	}

	t, ok := tenant.FromContext(db.Statement.Context)
	if !ok {
		_ = db.AddError(ErrNoTenantInContext)
		return
	}

	db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: "tenant_id"},
			Value:  t.ID,
		},
	}})
}

// stampTenant assigns TenantID on every record being inserted. Caller
// supplied values are discarded; ownership always follows the ambient
// tenant.
func stampTenant(db *gorm.DB) {
	if db.Statement.Schema == nil || !isTenantOwned(db.Statement.Schema.ModelType) {
		return
	}

	t, ok := tenant.FromContext(db.Statement.Context)
	if !ok {
		_ = db.AddError(ErrNoTenantInContext)
		return
	}

	field := db.Statement.Schema.LookUpField("TenantID")
	if field == nil {
		return
	}

	switch rv := db.Statement.ReflectValue; rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			_ = field.Set(db.Statement.Context, reflect.Indirect(rv.Index(i)), t.ID)
		}
	case reflect.Struct:
		_ = field.Set(db.Statement.Context, rv, t.ID)
	}
}

func isTenantOwned(model reflect.Type) bool {
	if model.Implements(tenantOwnedType) {
		return true
	}
	return reflect.PointerTo(model).Implements(tenantOwnedType)
}
