package domain

import "time"

// ResetChannel is where a one-time password reset code is delivered.
type ResetChannel string

const (
	ResetChannelEmail     ResetChannel = "email"
	ResetChannelCellphone ResetChannel = "cellphone"
)

// MaxResetAttempts is the number of wrong codes tolerated before a reset is burned.
const MaxResetAttempts = 5

// PasswordReset is an outstanding one-time code issued to a member.
type PasswordReset struct {
	ID        string
	MemberID  string
	CodeHash  string
	Channel   ResetChannel
	Attempts  int
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the code can still be redeemed at now.
func (p *PasswordReset) Usable(now time.Time) bool {
	return p.UsedAt == nil && now.Before(p.ExpiresAt) && p.Attempts < MaxResetAttempts
}
