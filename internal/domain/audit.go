package domain

import "time"

// AuditAction enumerates audit log action kinds.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
	AuditActionFlag   AuditAction = "FLAG"
	AuditActionLogin  AuditAction = "LOGIN"
)

// AuditLog is an immutable record of a state-changing action.
type AuditLog struct {
	ID            string
	Timestamp     time.Time
	ActorID       *string
	TargetUserID  *string
	Action        AuditAction
	Entity        string
	Field         string
	OldValue      any
	NewValue      any
	Justification string
	IPAddress     string
}
