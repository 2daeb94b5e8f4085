package audit

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/adminkit/adminkit/pkg/tenantdb"
)

// Storage persists audit events.
type Storage interface {
	Store(ctx context.Context, event *Event) error
}

// Logger builds events from the request context and hands them to storage.
// The actor comes from tenantdb.ActorFromContext, the request id from chi;
// the tenant discriminator is stamped by the data plane on insert.
type Logger struct {
	storage Storage
}

func NewLogger(storage Storage) *Logger {
	if storage == nil {
		panic("audit: storage is nil")
	}
	return &Logger{storage: storage}
}

// Log records a successful action.
func (l *Logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	return l.log(ctx, action, ResultSuccess, "", opts)
}

// LogError records a failed action together with its error message.
func (l *Logger) LogError(ctx context.Context, action string, cause error, opts ...EventOption) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return l.log(ctx, action, ResultError, msg, opts)
}

func (l *Logger) log(ctx context.Context, action string, result Result, errMsg string, opts []EventOption) error {
	event := &Event{
		Action: action,
		Result: result,
		Error:  errMsg,
	}
	if actor, ok := tenantdb.ActorFromContext(ctx); ok {
		event.UserID = actor
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		event.RequestID = reqID
	}

	for _, opt := range opts {
		opt(event)
	}

	if err := event.Validate(); err != nil {
		return err
	}
	if err := l.storage.Store(ctx, event); err != nil {
		return fmt.Errorf("store audit event: %w", err)
	}
	return nil
}
