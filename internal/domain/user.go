package domain

import (
	"strings"
	"time"
)

// User is a service member's personnel record. Members created by seeding have
// no credentials until they register with their force number.
type User struct {
	ID                 string
	ForceNumber        string
	Rank               string
	FirstName          string
	Surname            string
	Email              string
	Phone              string
	MusteringCode      string
	UnitID             *int64
	PostDescription    string
	ServiceType        string
	Deployable         bool
	CurrentWhereabouts string
	Tier               Tier
	PasswordHash       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DisplayName joins rank and surname the way the dashboard shows members.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.Rank + " " + u.Surname)
}

// HasCredentials reports whether the member can log in.
func (u *User) HasCredentials() bool {
	return u.PasswordHash != ""
}

// FieldChange records one field overwritten by a profile update.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// ProfileValue returns the current value of an editable profile field.
func (u *User) ProfileValue(field string) (string, bool) {
	ptr := u.profileField(field)
	if ptr == nil {
		return "", false
	}
	return *ptr, true
}

// ApplyUpdates overwrites profile fields one by one and returns the fields whose
// value actually changed, in field-name order. Unknown fields are skipped; call
// ProfileUpdates.Validate first.
func (u *User) ApplyUpdates(updates ProfileUpdates) []FieldChange {
	changes := make([]FieldChange, 0, len(updates))
	for _, field := range updates.Fields() {
		ptr := u.profileField(field)
		if ptr == nil {
			continue
		}
		next := updates[field]
		if *ptr == next {
			continue
		}
		changes = append(changes, FieldChange{Field: field, OldValue: *ptr, NewValue: next})
		*ptr = next
	}
	return changes
}

func (u *User) profileField(field string) *string {
	switch field {
	case FieldRank:
		return &u.Rank
	case FieldFirstName:
		return &u.FirstName
	case FieldSurname:
		return &u.Surname
	case FieldEmail:
		return &u.Email
	case FieldPhone:
		return &u.Phone
	case FieldMusteringCode:
		return &u.MusteringCode
	case FieldPostDescription:
		return &u.PostDescription
	case FieldCurrentWhereabouts:
		return &u.CurrentWhereabouts
	default:
		return nil
	}
}
