package dto

import (
	"time"

	"github.com/staffsync/staffsync-api/internal/domain"
)

// SubmitChangeRequest payload.
type SubmitChangeRequest struct {
	Updates       map[string]string `json:"updates"`
	Justification string            `json:"justification"`
}

// ReviewRequest is the body of recommend and finalize calls.
type ReviewRequest struct {
	Approve       *bool  `json:"approve"`
	Justification string `json:"justification"`
}

// UpdateProfileRequest payload for direct edits.
type UpdateProfileRequest struct {
	Updates       map[string]string `json:"updates"`
	Justification string            `json:"justification"`
}

// ProfileChangeResponse is a pending request.
type ProfileChangeResponse struct {
	MemberID      string              `json:"member_id"`
	Updates       map[string]string   `json:"updates"`
	SubmittedBy   string              `json:"submitted_by"`
	SubmittedAt   time.Time           `json:"submitted_at"`
	Status        domain.ChangeStatus `json:"status"`
	RecommendedBy *string             `json:"recommended_by"`
	RecommendedAt *time.Time          `json:"recommended_at"`
	Justification string              `json:"justification,omitempty"`
}

// FinalizeResponse reports a finalized request.
type FinalizeResponse struct {
	Request ProfileChangeResponse `json:"request"`
	Applied []domain.FieldChange  `json:"applied"`
	Member  UserResponse          `json:"member"`
}

// UpdateProfileResponse reports a direct edit.
type UpdateProfileResponse struct {
	Member  UserResponse         `json:"member"`
	Changes []domain.FieldChange `json:"changes"`
}
