package impersonation_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/impersonation"
	"github.com/capria-app/capria/internal/shared"
	_ "github.com/capria-app/capria/testing"
)

func newImpersonationRouter(t *testing.T) (chi.Router, *shared.SessionManager) {
	t.Helper()
	overlay, _, sessions := newOverlay(t)
	handler := impersonation.NewHandler(nil, overlay)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, sessions
}

func doRequest(t *testing.T, router chi.Router, sessions *shared.SessionManager, actor *identity.Actor, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/impersonation", strings.NewReader(body))
	sess := loadSession(t, sessions)
	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = identity.ContextWithActor(ctx, actor)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestStartEndpointRequiresAdmin(t *testing.T) {
	router, sessions := newImpersonationRouter(t)
	actor := actorWithRoles(42, "reader@capria.local", identity.RoleReader)

	res := doRequest(t, router, sessions, actor, http.MethodPost, `{"user_id":43}`)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.False(t, actor.IsImpersonating())
}

func TestStartEndpointRequiresAuth(t *testing.T) {
	router, sessions := newImpersonationRouter(t)

	res := doRequest(t, router, sessions, nil, http.MethodPost, `{"user_id":43}`)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestStartEndpointValidation(t *testing.T) {
	router, sessions := newImpersonationRouter(t)
	actor := actorWithRoles(1, "admin@capria.local", identity.RoleAdmin)

	res := doRequest(t, router, sessions, actor, http.MethodPost, `{"user_id":0}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = doRequest(t, router, sessions, actor, http.MethodPost, `{`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestStartAndShowEndpoint(t *testing.T) {
	router, sessions := newImpersonationRouter(t)
	actor := actorWithRoles(1, "admin@capria.local", identity.RoleAdmin)

	res := doRequest(t, router, sessions, actor, http.MethodPost, `{"user_id":42}`)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Active             bool   `json:"active"`
		ImpersonatedUserID int64  `json:"impersonated_user_id"`
		ImpersonatedEmail  string `json:"impersonated_email"`
		Epoch              int64  `json:"epoch"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.True(t, payload.Active)
	assert.Equal(t, int64(42), payload.ImpersonatedUserID)
	assert.Equal(t, "reader@capria.local", payload.ImpersonatedEmail)
	assert.Equal(t, int64(1), payload.Epoch)

	// The banner endpoint reflects the actor's state.
	show := doRequest(t, router, sessions, actor, http.MethodGet, "")
	require.Equal(t, http.StatusOK, show.Code)
	require.NoError(t, json.Unmarshal(show.Body.Bytes(), &payload))
	assert.True(t, payload.Active)
}

func TestStopEndpointAlwaysSucceeds(t *testing.T) {
	router, sessions := newImpersonationRouter(t)
	actor := actorWithRoles(1, "admin@capria.local", identity.RoleAdmin)

	// Stop without an active overlay is fine.
	res := doRequest(t, router, sessions, actor, http.MethodDelete, "")
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Active bool  `json:"active"`
		Epoch  int64 `json:"epoch"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.False(t, payload.Active)
}
