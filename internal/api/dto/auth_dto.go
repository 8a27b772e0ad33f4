package dto

import (
	"time"

	"github.com/staffsync/staffsync-api/internal/domain"
)

// RegisterRequest payload for new members.
type RegisterRequest struct {
	ForceNumber   string `json:"force_number"`
	Password      string `json:"password"`
	Rank          string `json:"rank"`
	FirstName     string `json:"first_name"`
	Surname       string `json:"surname"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	MusteringCode string `json:"mustering_code"`
}

// LoginRequest payload for login. Identifier is a force number or email; the
// email and force_number fields are accepted as aliases.
type LoginRequest struct {
	Identifier  string `json:"identifier"`
	Email       string `json:"email"`
	ForceNumber string `json:"force_number"`
	Password    string `json:"password"`
}

// LoginIdentifier returns the first identifier supplied.
func (r LoginRequest) LoginIdentifier() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.ForceNumber != "":
		return r.ForceNumber
	default:
		return r.Email
	}
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// SetTierRequest payload.
type SetTierRequest struct {
	Tier *int `json:"tier"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of a member.
type UserResponse struct {
	ID                 string          `json:"id"`
	ForceNumber        string          `json:"force_number"`
	DisplayName        string          `json:"display_name"`
	Rank               string          `json:"rank"`
	FirstName          string          `json:"first_name"`
	Surname            string          `json:"surname"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	MusteringCode      string          `json:"mustering_code"`
	UnitID             *int64          `json:"unit_id"`
	PostDescription    string          `json:"post_description"`
	ServiceType        string          `json:"service_type"`
	Deployable         bool            `json:"deployable"`
	CurrentWhereabouts string          `json:"current_whereabouts"`
	Tier               domain.Tier     `json:"tier"`
	TierName           string          `json:"tier_name"`
	Actions            []domain.Action `json:"actions"`
}

// MeResponse reports the current session.
type MeResponse struct {
	User            *UserResponse `json:"user"`
	IsAuthenticated bool          `json:"is_authenticated"`
	ExpiresAt       time.Time     `json:"expires_at"`
}

// PasswordResetRequest starts a reset. Channel is "email" or "cellphone".
type PasswordResetRequest struct {
	Email       string `json:"email"`
	ForceNumber string `json:"force_number"`
	Channel     string `json:"channel"`
}

// PasswordResetConfirmRequest redeems a reset code.
type PasswordResetConfirmRequest struct {
	ForceNumber string `json:"force_number"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// PasswordResetResponse acknowledges a reset request.
type PasswordResetResponse struct {
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	ExpiresAt   time.Time `json:"expires_at"`
	Code        string    `json:"code,omitempty"`
}
