// Package tenantadmin exposes the cross-tenant administrative API: tenant
// onboarding and lifecycle management. It must only be mounted behind the
// root tenant guard; tenant management is the one deliberately un-scoped
// surface of the kit.
package tenantadmin

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adminkit/adminkit/binder"
	"github.com/adminkit/adminkit/core"
	"github.com/adminkit/adminkit/pkg/tenant"
)

type Handler struct {
	svc *tenant.Service
}

func NewHandler(svc *tenant.Service) *Handler {
	return &Handler{svc: svc}
}

// RequireRoot rejects requests whose resolved tenant is not the root
// tenant. Mounted in front of the admin router.
func RequireRoot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, ok := tenant.FromContext(r.Context())
		if !ok || !t.IsRoot() {
			core.Error(w, core.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(RequireRoot)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{tenantID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Post("/activate", h.activate)
		r.Post("/deactivate", h.deactivate)
		r.Post("/subscription", h.upgradeSubscription)
	})
	return r
}

type createRequest struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	ConnectionString string     `json:"connection_string"`
	AdminEmail       string     `json:"admin_email"`
	ValidUpto        *time.Time `json:"valid_upto"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := binder.JSON(r, &req); err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	t := &tenant.Tenant{
		ID:               req.ID,
		Name:             req.Name,
		ConnectionString: req.ConnectionString,
		AdminEmail:       req.AdminEmail,
	}
	if req.ValidUpto != nil {
		t.ValidUpto = *req.ValidUpto
	}

	created, err := h.svc.Create(r.Context(), t)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusCreated, created)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.svc.GetAll(r.Context())
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, tenants)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, t)
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Activate(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, t)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Deactivate(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, t)
}

func (h *Handler) upgradeSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ValidUpto time.Time `json:"valid_upto"`
	}
	if err := binder.JSON(r, &req); err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	t, err := h.svc.UpgradeSubscription(r.Context(), chi.URLParam(r, "tenantID"), req.ValidUpto)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, t)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, tenant.ErrTenantNotFound):
		return core.ErrNotFound
	case errors.Is(err, tenant.ErrInvalidIdentifier):
		return core.ErrUnprocessableEntity
	default:
		return err
	}
}
