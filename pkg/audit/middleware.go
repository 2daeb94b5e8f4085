package audit

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adminkit/adminkit/pkg/clientip"
)

// Middleware records every mutating HTTP request as an audit event after
// the handler runs. Reads are not audited. A failed write to the audit
// trail is logged and does not fail the request.
func Middleware(auditor *Logger, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			action := r.Method + " " + routePattern(r)
			opts := []EventOption{
				WithMetadata("status", ww.Status()),
				withRequestOrigin(r),
			}

			var err error
			if ww.Status() >= http.StatusBadRequest {
				err = auditor.LogError(r.Context(), action,
					fmt.Errorf("request failed with status %d", ww.Status()), opts...)
			} else {
				err = auditor.Log(r.Context(), action, opts...)
			}
			if err != nil {
				log.ErrorContext(r.Context(), "audit trail write failed",
					slog.String("action", action),
					slog.Any("error", err),
				)
			}
		})
	}
}

func withRequestOrigin(r *http.Request) EventOption {
	return func(e *Event) {
		e.IP = clientip.FromRequest(r)
		e.UserAgent = r.UserAgent()
	}
}

// routePattern prefers the chi route pattern over the raw path so audit
// actions aggregate per endpoint, not per resource id.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
