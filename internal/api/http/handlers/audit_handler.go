package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/staffsync/staffsync-api/internal/api/dto"
	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/repository"
	"github.com/staffsync/staffsync-api/internal/service"
)

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{service: auditService}
}

// List GET /api/audit-logs.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	filter := repository.AuditLogFilter{
		ActorID:      optionalString(c.Query("actor_id")),
		TargetUserID: optionalString(c.Query("target_user_id")),
		Limit:        parseInt(c.Query("limit"), 100),
		Offset:       parseInt(c.Query("offset"), 0),
	}
	if action := c.Query("action"); action != "" {
		a := domain.AuditAction(action)
		filter.Action = &a
	}

	entries, err := h.service.List(c.UserContext(), principal.User, filter)
	if err != nil {
		return err
	}
	items := make([]dto.AuditLogResponse, 0, len(entries))
	for i := range entries {
		items = append(items, auditLogResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
