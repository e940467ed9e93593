package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agape-academy/academy-api/internal/models"
)

func TestCanMutate(t *testing.T) {
	cases := []struct {
		name      string
		role      models.UserRole
		requester string
		owner     string
		want      bool
	}{
		{"owner may mutate", models.RoleTeacher, "u1", "u1", true},
		{"non-owner student denied", models.RoleStudent, "u2", "u1", false},
		{"non-owner teacher denied", models.RoleTeacher, "u2", "u1", false},
		{"admin may mutate anything", models.RoleAdmin, "u2", "u1", true},
		{"super admin may mutate anything", models.RoleSuperAdmin, "u2", "u1", true},
		{"empty requester denied", models.RoleStudent, "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanMutate(tc.role, tc.requester, tc.owner))
		})
	}
}

func TestCanDeactivateNeverSelf(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleStudent, models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin} {
		allowed, self := CanDeactivate(role, "u1", "u1")
		assert.False(t, allowed, "role %s must not deactivate itself", role)
		assert.True(t, self)
	}
}

func TestCanDeactivateOthers(t *testing.T) {
	allowed, self := CanDeactivate(models.RoleAdmin, "admin", "u1")
	assert.True(t, allowed)
	assert.False(t, self)

	allowed, _ = CanDeactivate(models.RoleTeacher, "t1", "u1")
	assert.False(t, allowed)
}
