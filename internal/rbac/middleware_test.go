package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/rbac"
	_ "github.com/capria-app/capria/testing"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, actor *identity.Actor) *httptest.ResponseRecorder {
	t.Helper()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req = req.WithContext(identity.ContextWithActor(req.Context(), actor))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func actorWith(roles ...identity.Role) *identity.Actor {
	return &identity.Actor{
		Snapshot: &identity.Snapshot{
			Principal: identity.Principal{ID: 10, Email: "user@capria.local"},
			Roles:     roles,
		},
	}
}

func TestRequireAuthenticated(t *testing.T) {
	mw := rbac.Middleware{}

	assert.Equal(t, http.StatusUnauthorized, serve(t, mw.RequireAuthenticated(), nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, mw.RequireAuthenticated(), &identity.Actor{}).Code)
	assert.Equal(t, http.StatusOK, serve(t, mw.RequireAuthenticated(), actorWith()).Code)
}

func TestRequireAdmin(t *testing.T) {
	mw := rbac.Middleware{}

	assert.Equal(t, http.StatusUnauthorized, serve(t, mw.RequireAdmin(), nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, mw.RequireAdmin(), actorWith(identity.RoleReader)).Code)
	assert.Equal(t, http.StatusOK, serve(t, mw.RequireAdmin(), actorWith(identity.RoleAdmin)).Code)
}

func TestRequireAnyMatchesAnyRole(t *testing.T) {
	mw := rbac.Middleware{}
	guard := mw.RequireAny(identity.RoleEditor, identity.RoleProfessional)

	assert.Equal(t, http.StatusOK, serve(t, guard, actorWith(identity.RoleProfessional)).Code)
	assert.Equal(t, http.StatusOK, serve(t, guard, actorWith(identity.RoleReader, identity.RoleEditor)).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, guard, actorWith(identity.RoleReader)).Code)
}

func TestRequireAdminChecksEffectiveRoles(t *testing.T) {
	mw := rbac.Middleware{}

	// A real admin impersonating a reader loses admin on feature routes.
	actor := actorWith(identity.RoleAdmin)
	actor.Impersonation = identity.State{
		Active:             true,
		OriginalUserID:     10,
		ImpersonatedUserID: 42,
		ImpersonatedRoles:  []identity.Role{identity.RoleReader},
		Epoch:              1,
	}
	assert.Equal(t, http.StatusForbidden, serve(t, mw.RequireAdmin(), actor).Code)
	assert.Equal(t, http.StatusOK, serve(t, mw.RequireAny(identity.RoleReader), actor).Code)
}
