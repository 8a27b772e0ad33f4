package domain

import (
	"fmt"
	"sort"
	"time"
)

// Editable profile fields.
const (
	FieldRank               = "rank"
	FieldFirstName          = "first_name"
	FieldSurname            = "surname"
	FieldEmail              = "email"
	FieldPhone              = "phone"
	FieldMusteringCode      = "mustering_code"
	FieldPostDescription    = "post_description"
	FieldCurrentWhereabouts = "current_whereabouts"
)

var editableFields = map[string]struct{}{
	FieldRank:               {},
	FieldFirstName:          {},
	FieldSurname:            {},
	FieldEmail:              {},
	FieldPhone:              {},
	FieldMusteringCode:      {},
	FieldPostDescription:    {},
	FieldCurrentWhereabouts: {},
}

// IsEditableField reports whether a profile change may target field.
func IsEditableField(field string) bool {
	_, ok := editableFields[field]
	return ok
}

// ProfileUpdates maps profile field names to proposed values.
type ProfileUpdates map[string]string

// Validate checks field names only; values are stored as given.
func (p ProfileUpdates) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("no fields to update")
	}
	for _, field := range p.Fields() {
		if !IsEditableField(field) {
			return fmt.Errorf("field %q is not editable", field)
		}
	}
	return nil
}

// Fields returns the field names in sorted order.
func (p ProfileUpdates) Fields() []string {
	fields := make([]string, 0, len(p))
	for field := range p {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Clone returns an independent copy.
func (p ProfileUpdates) Clone() ProfileUpdates {
	if p == nil {
		return nil
	}
	out := make(ProfileUpdates, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ChangeStatus enumerates review states of a profile change request.
type ChangeStatus string

const (
	ChangeStatusPending     ChangeStatus = "pending"
	ChangeStatusRecommended ChangeStatus = "recommended"
	ChangeStatusRejected    ChangeStatus = "rejected"
	ChangeStatusApproved    ChangeStatus = "approved"
)

// ProfileChangeRequest is the single outstanding edit request for a member.
type ProfileChangeRequest struct {
	MemberID      string
	Updates       ProfileUpdates
	SubmittedBy   string
	SubmittedAt   time.Time
	Status        ChangeStatus
	RecommendedBy *string
	RecommendedAt *time.Time
	Justification string
}

// Clone returns a deep copy so callers cannot mutate workflow state.
func (r ProfileChangeRequest) Clone() ProfileChangeRequest {
	out := r
	out.Updates = r.Updates.Clone()
	if r.RecommendedBy != nil {
		by := *r.RecommendedBy
		out.RecommendedBy = &by
	}
	if r.RecommendedAt != nil {
		at := *r.RecommendedAt
		out.RecommendedAt = &at
	}
	return out
}
