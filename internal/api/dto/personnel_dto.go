package dto

import "github.com/staffsync/staffsync-api/internal/domain"

// PersonnelRowResponse is one directory row.
type PersonnelRowResponse struct {
	MemberID        string                 `json:"member_id"`
	ForceNumber     string                 `json:"force_number"`
	Rank            string                 `json:"rank"`
	FirstName       string                 `json:"first_name"`
	Surname         string                 `json:"surname"`
	Email           string                 `json:"email"`
	MusteringCode   string                 `json:"mustering_code"`
	MusteringName   string                 `json:"mustering_name"`
	UnitName        string                 `json:"unit_name"`
	BaseName        string                 `json:"base_name"`
	ReadinessStatus domain.ReadinessStatus `json:"readiness_status"`
}

// PageMeta describes pagination.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
