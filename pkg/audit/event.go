package audit

import (
	"errors"

	"github.com/adminkit/adminkit/pkg/tenantdb"
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultError   Result = "error"
)

// ErrEventValidation is returned for events missing required fields.
var ErrEventValidation = errors.New("audit: invalid event")

// Event is one audit trail entry. TenantID and row identity come from the
// embedded base; the scoping callbacks stamp and filter it like any other
// tenant-owned model.
type Event struct {
	tenantdb.TenantEntity

	UserID     string `gorm:"size:63;index" json:"user_id"`
	Action     string `gorm:"size:255;not null;index" json:"action"`
	Resource   string `gorm:"size:255" json:"resource"`
	ResourceID string `gorm:"size:63" json:"resource_id"`
	Result     Result `gorm:"size:16" json:"result"`
	Error      string `json:"error,omitempty"`
	RequestID  string `gorm:"size:63" json:"request_id,omitempty"`
	IP         string `gorm:"size:45" json:"ip,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`

	Metadata map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
}

func (Event) TableName() string { return "audit_events" }

// Validate checks required fields before the event is persisted.
func (e *Event) Validate() error {
	if e.Action == "" {
		return errors.Join(ErrEventValidation, errors.New("action is required"))
	}
	return nil
}

// EventOption enriches an event at log time.
type EventOption func(*Event)

// WithResource attaches the affected resource type and id.
func WithResource(resource, id string) EventOption {
	return func(e *Event) {
		e.Resource = resource
		e.ResourceID = id
	}
}

// WithMetadata adds one metadata key. Later options win on key collision.
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}
