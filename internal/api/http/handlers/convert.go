package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/staffsync/staffsync-api/internal/api/dto"
	"github.com/staffsync/staffsync-api/internal/domain"
)

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 u.ID,
		ForceNumber:        u.ForceNumber,
		DisplayName:        u.DisplayName(),
		Rank:               u.Rank,
		FirstName:          u.FirstName,
		Surname:            u.Surname,
		Email:              u.Email,
		Phone:              u.Phone,
		MusteringCode:      u.MusteringCode,
		UnitID:             u.UnitID,
		PostDescription:    u.PostDescription,
		ServiceType:        u.ServiceType,
		Deployable:         u.Deployable,
		CurrentWhereabouts: u.CurrentWhereabouts,
		Tier:               u.Tier,
		TierName:           u.Tier.Name(),
		Actions:            u.Tier.Actions(),
	}
}

func profileChangeResponse(req *domain.ProfileChangeRequest) dto.ProfileChangeResponse {
	updates := map[string]string(req.Updates.Clone())
	if updates == nil {
		updates = map[string]string{}
	}
	return dto.ProfileChangeResponse{
		MemberID:      req.MemberID,
		Updates:       updates,
		SubmittedBy:   req.SubmittedBy,
		SubmittedAt:   req.SubmittedAt,
		Status:        req.Status,
		RecommendedBy: req.RecommendedBy,
		RecommendedAt: req.RecommendedAt,
		Justification: req.Justification,
	}
}

func personnelRowResponse(row *domain.PersonnelRow) dto.PersonnelRowResponse {
	return dto.PersonnelRowResponse{
		MemberID:        row.MemberID,
		ForceNumber:     row.ForceNumber,
		Rank:            row.Rank,
		FirstName:       row.FirstName,
		Surname:         row.Surname,
		Email:           row.Email,
		MusteringCode:   row.MusteringCode,
		MusteringName:   row.MusteringName,
		UnitName:        row.UnitName,
		BaseName:        row.BaseName,
		ReadinessStatus: row.ReadinessStatus,
	}
}

func auditLogResponse(entry *domain.AuditLog) dto.AuditLogResponse {
	return dto.AuditLogResponse{
		ID:            entry.ID,
		Timestamp:     entry.Timestamp,
		ActorID:       entry.ActorID,
		TargetUserID:  entry.TargetUserID,
		Action:        entry.Action,
		Entity:        entry.Entity,
		Field:         entry.Field,
		OldValue:      entry.OldValue,
		NewValue:      entry.NewValue,
		Justification: entry.Justification,
		IPAddress:     entry.IPAddress,
	}
}

// queryList splits a comma separated query parameter, dropping blanks.
func queryList(c *fiber.Ctx, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func optionalString(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}
