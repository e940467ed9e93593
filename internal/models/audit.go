package models

import "time"

// AuditAction constants represent mutating operations recorded in the trail.
const (
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionPublish    = "PUBLISH"
	AuditActionArchive    = "ARCHIVE"
	AuditActionDeactivate = "DEACTIVATE"
	AuditActionRoleChange = "ROLE_CHANGE"
	AuditActionAssign     = "ASSIGN"
	AuditActionResolve    = "RESOLVE"
	AuditActionClose      = "CLOSE"
	AuditActionEnroll     = "ENROLL"
	AuditActionUnenroll   = "UNENROLL"
)

// AuditLog is the gateway-owned record of a mutating request. The upstream
// backend does not keep this trail.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    *string   `db:"actor_id" json:"actorId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// AuditFilter narrows audit trail listings.
type AuditFilter struct {
	ActorID  string
	Resource string
	Action   string
	PageQuery
}
