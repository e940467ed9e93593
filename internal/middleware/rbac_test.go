package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/agape-academy/academy-api/internal/models"
)

func runRoleGate(t *testing.T, gate gin.HandlerFunc, identity *models.Identity) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	c.Request = req
	if identity != nil {
		c.Set(ContextUserKey, identity)
	}

	gate(c)
	return w
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		role models.UserRole
		want int
	}{
		{models.RoleStudent, http.StatusForbidden},
		{models.RoleTeacher, http.StatusForbidden},
		{models.RoleAdmin, http.StatusOK},
		{models.RoleSuperAdmin, http.StatusOK},
	}
	for _, tc := range cases {
		w := runRoleGate(t, RequireAdmin(), &models.Identity{UserID: "u1", Role: tc.role})
		assert.Equal(t, tc.want, w.Code, "role %s", tc.role)
	}
}

func TestRequireTeacherOrAdmin(t *testing.T) {
	w := runRoleGate(t, RequireTeacherOrAdmin(), &models.Identity{UserID: "u1", Role: models.RoleStudent})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = runRoleGate(t, RequireTeacherOrAdmin(), &models.Identity{UserID: "u1", Role: models.RoleTeacher})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesWithoutIdentity(t *testing.T) {
	w := runRoleGate(t, RequireAdmin(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
