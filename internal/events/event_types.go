package events

import (
	"time"

	"github.com/staffsync/staffsync-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProfileChangeSubmitted   EventType = "profile_change_submitted"
	EventProfileChangeRecommended EventType = "profile_change_recommended"
	EventProfileChangeFinalized   EventType = "profile_change_finalized"
	EventProfileUpdated           EventType = "profile_updated"
	EventUserRegistered           EventType = "user_registered"
	EventTierChanged              EventType = "tier_changed"
	EventPasswordResetRequested   EventType = "password_reset_requested"
	EventPasswordResetCompleted   EventType = "password_reset_completed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Tier   domain.Tier `json:"tier"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	MemberID  string      `json:"member_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ProfileChangeSubmittedPayload payload.
type ProfileChangeSubmittedPayload struct {
	Fields []string `json:"fields"`
}

// ProfileChangeRecommendedPayload payload.
type ProfileChangeRecommendedPayload struct {
	Approved bool                `json:"approved"`
	Status   domain.ChangeStatus `json:"status"`
}

// ProfileChangeFinalizedPayload payload.
type ProfileChangeFinalizedPayload struct {
	Approved bool                 `json:"approved"`
	Applied  []domain.FieldChange `json:"applied,omitempty"`
}

// ProfileUpdatedPayload payload.
type ProfileUpdatedPayload struct {
	Changes []domain.FieldChange `json:"changes"`
}

// TierChangedPayload payload.
type TierChangedPayload struct {
	OldTier domain.Tier `json:"old_tier"`
	NewTier domain.Tier `json:"new_tier"`
}

// PasswordResetRequestedPayload carries the one-time code to the notifier.
// Code is never serialized.
type PasswordResetRequestedPayload struct {
	Channel     domain.ResetChannel `json:"channel"`
	Destination string              `json:"destination"`
	Code        string              `json:"-"`
}
