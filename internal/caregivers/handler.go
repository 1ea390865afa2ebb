package caregivers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/permissions"
	"github.com/capria-app/capria/internal/platform/httpx"
	"github.com/capria-app/capria/internal/rbac"
)

// Handler exposes caregiver relationship endpoints. Access is gated by the
// permission evaluator, not by a role check alone: a caregiver with no role
// at all still reads the links registered against their email.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	evaluator *permissions.Evaluator
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, evaluator *permissions.Evaluator, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, evaluator: evaluator, rbac: rbacMW, validator: validator.New()}
}

// MountRoutes registers caregiver routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated())
		r.Get("/caregivers", h.list)
		r.Post("/caregivers", h.create)
		r.Put("/caregivers/{id}", h.update)
		r.Delete("/caregivers/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	if !h.evaluator.HasCaregiversAccess(r.Context(), actor).Allowed() {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "caregiver access required")
		return
	}
	rels, err := h.service.ListFor(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, h.logger, "list caregivers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"relationships": rels})
}

type relationshipRequest struct {
	ClientName     string `json:"client_name" validate:"required,max=200"`
	CaregiverEmail string `json:"caregiver_email" validate:"required,email"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())

	var req relationshipRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "client_name and caregiver_email are required")
		return
	}

	rel, err := h.service.Create(r.Context(), actor, req.ClientName, req.CaregiverEmail)
	if err != nil {
		httpx.RespondError(w, h.logger, "create caregiver relationship", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rel)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid relationship id")
		return
	}

	var req relationshipRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "client_name and caregiver_email are required")
		return
	}

	rel, err := h.service.Update(r.Context(), actor, id, req.ClientName, req.CaregiverEmail)
	if err != nil {
		httpx.RespondError(w, h.logger, "update caregiver relationship", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rel)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid relationship id")
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		httpx.RespondError(w, h.logger, "delete caregiver relationship", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
