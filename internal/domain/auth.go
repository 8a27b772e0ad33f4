package domain

import "time"

// Session is the server-side record of an issued access token. It is created at
// login or registration and removed at logout.
type Session struct {
	TokenID   string    `json:"token_id"`
	UserID    string    `json:"user_id"`
	Tier      Tier      `json:"tier"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
