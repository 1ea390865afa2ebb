package activities

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/platform/httpx"
	"github.com/capria-app/capria/internal/rbac"
)

// Handler exposes activity endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW, validator: validator.New()}
}

// MountRoutes registers activity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated())
		r.Get("/activities", h.list)
		r.Post("/activities", h.create)
		r.Delete("/activities/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	acts, err := h.service.ListFor(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, h.logger, "list activities", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"activities": acts})
}

type createRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Kind        string `json:"kind" validate:"required"`
	Description string `json:"description" validate:"max=2000"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "title and kind are required")
		return
	}

	act, err := h.service.Create(r.Context(), actor, req.Title, req.Kind, req.Description)
	if err != nil {
		httpx.RespondError(w, h.logger, "create activity", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, act)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid activity id")
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		httpx.RespondError(w, h.logger, "delete activity", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
