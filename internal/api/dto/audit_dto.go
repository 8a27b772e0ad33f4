package dto

import (
	"time"

	"github.com/staffsync/staffsync-api/internal/domain"
)

// AuditLogResponse is one audit entry.
type AuditLogResponse struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	ActorID       *string            `json:"actor_id"`
	TargetUserID  *string            `json:"target_user_id"`
	Action        domain.AuditAction `json:"action"`
	Entity        string             `json:"entity"`
	Field         string             `json:"field,omitempty"`
	OldValue      any                `json:"old_value,omitempty"`
	NewValue      any                `json:"new_value,omitempty"`
	Justification string             `json:"justification,omitempty"`
	IPAddress     string             `json:"ip_address,omitempty"`
}
