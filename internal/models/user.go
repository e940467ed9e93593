package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent    UserRole = "STUDENT"
	RoleTeacher    UserRole = "TEACHER"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// IsAdmin reports whether the role carries administrative privileges.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User mirrors the upstream user entity. `id` is the backend key; `uid` is
// the identity provider's subject id.
type User struct {
	ID              string    `json:"id"`
	UID             string    `json:"uid"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"displayName"`
	Role            UserRole  `json:"role"`
	IsActive        bool      `json:"isActive"`
	PasswordChanged bool      `json:"passwordChanged"`
	DateCreated     time.Time `json:"dateCreated"`
	DateUpdated     time.Time `json:"dateUpdated"`
}

// UserRef is the lightweight owner reference embedded in other entities.
type UserRef struct {
	ID          string `json:"id"`
	UID         string `json:"uid,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	IsActive *bool
	Search   string
	PageQuery
}

// Identity is the authenticated caller, resolved once at the auth boundary.
// UserID is the upstream backend id and is the only key passed downstream.
type Identity struct {
	UserID      string   `json:"id"`
	UID         string   `json:"uid"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Role        UserRole `json:"role"`
}
