package entitycode

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
	r.Route("/{codeID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Patch("/", h.update)
		r.Delete("/", h.delete)
	})
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	codes, err := h.svc.List(r.Context(), r.URL.Query().Get("kind"))
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, codes)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params CreateParams
	if err := binder.JSON(r, &params); err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	ec, err := h.svc.Create(r.Context(), params)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusCreated, ec)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "codeID"))
	if err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	ec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, ec)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "codeID"))
	if err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	var params UpdateParams
	if err := binder.JSON(r, &params); err != nil {
		core.Error(w, core.ErrBadRequest)
		return
	}

	ec, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, ec)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "codeID"))
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
	case errors.Is(err, ErrInvalidInput):
		return core.ErrUnprocessableEntity
	default:
		return err
	}
}
