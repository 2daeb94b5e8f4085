package identity

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adminkit/adminkit/binder"
	"github.com/adminkit/adminkit/core"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/role", h.assignRole)
		r.Put("/active", h.setActive)
		r.Delete("/", h.delete)
	})
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, users)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params CreateParams
	if err := binder.JSON(r, &params); err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	u, err := h.svc.Create(r.Context(), params)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusCreated, u)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, u)
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	var body struct {
		RoleName string `json:"role_name"`
	}
	if err := binder.JSON(r, &body); err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	u, err := h.svc.AssignRole(r.Context(), id, body.RoleName)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, u)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	var body struct {
		Active bool `json:"active"`
	}
	if err := binder.JSON(r, &body); err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	u, err := h.svc.SetActive(r.Context(), id, body.Active)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, u)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.NoContent(w)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return core.ErrNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownRole):
		return core.ErrUnprocessableEntity
	default:
		return err
	}
}
