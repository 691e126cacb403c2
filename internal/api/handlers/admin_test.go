package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/taskflow/internal/domain"
	"github.com/dom/taskflow/internal/service"
	"github.com/dom/taskflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminHandler_RequiresAdminRole(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	resp := testutil.Do(t, http.MethodGet, ts.APIURL("/admin/users"), nil, token)
	testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "Role 'user' is not authorized to access this resource.")

	resp = testutil.Do(t, http.MethodGet, ts.APIURL("/admin/users"), nil, "")
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Access denied. No authentication token provided.")
}

func TestAdminHandler_ListUsers(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).BuildAndAuthenticate(t, ts)
	for i := 0; i < 4; i++ {
		testutil.NewUserBuilder().Build(t, ts.Repos.User)
	}

	resp := testutil.Do(t, http.MethodGet, ts.APIURL("/admin/users?page=2&limit=2"), nil, token)
	env := testutil.DecodeSuccess[service.UserPage](t, resp, http.StatusOK)

	assert.Len(t, env.Data.Users, 2)
	assert.EqualValues(t, 5, env.Data.Pagination.Total)
	assert.Equal(t, 3, env.Data.Pagination.TotalPages)
	assert.True(t, env.Data.Pagination.HasNextPage)
	assert.True(t, env.Data.Pagination.HasPrevPage)
}

func TestAdminHandler_SetStatus(t *testing.T) {
	ts := testutil.NewTestServer(t)
	admin, adminToken := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).BuildAndAuthenticate(t, ts)
	target, targetToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	url := ts.APIURL("/admin/users/" + target.ID.String() + "/status")

	t.Run("deactivate", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPut, url, map[string]any{"isActive": false}, adminToken)
		env := testutil.DecodeSuccess[userData](t, resp, http.StatusOK)
		assert.Equal(t, "User deactivated successfully.", env.Message)
		assert.False(t, env.Data.User.IsActive)

		me := testutil.Do(t, http.MethodGet, ts.APIURL("/auth/me"), nil, targetToken)
		testutil.AssertErrorResponse(t, me, http.StatusUnauthorized,
			"Your account has been deactivated. Please contact support.")
	})

	t.Run("reactivate", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPut, url, map[string]any{"isActive": true}, adminToken)
		env := testutil.DecodeSuccess[userData](t, resp, http.StatusOK)
		assert.Equal(t, "User activated successfully.", env.Message)

		me := testutil.Do(t, http.MethodGet, ts.APIURL("/auth/me"), nil, targetToken)
		assert.Equal(t, http.StatusOK, me.StatusCode)
	})

	t.Run("missing flag", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPut, url, map[string]any{}, adminToken)
		fields := testutil.AssertErrorResponse(t, resp, http.StatusUnprocessableEntity, "Validation failed")
		require.Len(t, fields, 1)
		assert.Equal(t, "isActive", fields[0].Field)
	})

	t.Run("self deactivation", func(t *testing.T) {
		self := ts.APIURL("/admin/users/" + admin.ID.String() + "/status")
		resp := testutil.Do(t, http.MethodPut, self, map[string]any{"isActive": false}, adminToken)
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "You cannot deactivate your own account.")
	})

	t.Run("unknown user", func(t *testing.T) {
		missing := ts.APIURL("/admin/users/00000000-0000-0000-0000-000000000001/status")
		resp := testutil.Do(t, http.MethodPut, missing, map[string]any{"isActive": false}, adminToken)
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "User not found.")
	})
}
