package albums

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

// Handler exposes album endpoints.
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

// MountRoutes registers album routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated())
		r.Get("/albums", h.list)
		r.Post("/albums", h.create)
		r.Delete("/albums/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	list, err := h.service.ListFor(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, h.logger, "list albums", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"albums": list})
}

type createRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
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
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "title is required")
		return
	}

	album, err := h.service.Create(r.Context(), actor, req.Title, req.Description)
	if err != nil {
		httpx.RespondError(w, h.logger, "create album", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, album)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid album id")
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		httpx.RespondError(w, h.logger, "delete album", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
