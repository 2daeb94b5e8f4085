package tenantdb

import "gorm.io/gorm"

// SetDialectorBuilder swaps the provider dialector so tests can build
// sessions without a live database.
func (f *Factory) SetDialectorBuilder(build func(dsn string) gorm.Dialector) {
	f.dialector = build
}
