package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/capria-app/capria/internal/shared"
)

// RespondError maps domain errors to RFC 7807 responses. Unexpected
// errors are logged under action and reported as an opaque 500.
func RespondError(w http.ResponseWriter, logger *slog.Logger, action string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, shared.ErrNotAllowed):
		Problem(w, http.StatusForbidden, "Forbidden", "not allowed")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, shared.ErrSessionDesync):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "session no longer valid")
	default:
		logger.Error(action, slog.Any("error", err))
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
