package impersonation

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/platform/httpx"
	"github.com/capria-app/capria/internal/shared"
)

// Handler exposes the impersonation endpoints. The routes are deliberately
// NOT behind the admin middleware: Start enforces adminship of the original
// principal itself, and Stop must stay reachable for the acting admin even
// when the impersonated identity holds no roles at all.
type Handler struct {
	logger    *slog.Logger
	overlay   *Overlay
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, overlay *Overlay) *Handler {
	return &Handler{logger: logger, overlay: overlay, validator: validator.New()}
}

// MountRoutes registers impersonation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/impersonation", h.show)
	r.Post("/impersonation", h.start)
	r.Delete("/impersonation", h.stop)
}

type startRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// stateResponse is what clients render the always-visible banner from.
type stateResponse struct {
	Active             bool   `json:"active"`
	OriginalUserID     int64  `json:"original_user_id,omitempty"`
	ImpersonatedUserID int64  `json:"impersonated_user_id,omitempty"`
	ImpersonatedEmail  string `json:"impersonated_email,omitempty"`
	Epoch              int64  `json:"epoch"`
}

func toResponse(state identity.State) stateResponse {
	return stateResponse{
		Active:             state.Active,
		OriginalUserID:     state.OriginalUserID,
		ImpersonatedUserID: state.ImpersonatedUserID,
		ImpersonatedEmail:  state.ImpersonatedEmail,
		Epoch:              state.Epoch,
	}
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	if !actor.Authenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(actor.Impersonation))
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	if !actor.Authenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}

	var req startRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "user_id is required")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	state, err := h.overlay.Start(r.Context(), sess, actor, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotAllowed):
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "impersonation requires the admin role")
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "target user not found")
		default:
			h.logger.Error("start impersonation", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(state))
}

func (h *Handler) stop(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	if !actor.Authenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	state := h.overlay.Stop(r.Context(), sess, actor)
	httpx.JSON(w, http.StatusOK, toResponse(state))
}
