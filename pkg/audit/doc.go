// Package audit records who did what inside a tenant. Events are persisted
// as tenant-owned rows through the scoped data plane, so the audit trail is
// isolated exactly like the business data it describes.
package audit
