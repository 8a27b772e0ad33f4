package http

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/staffsync/staffsync-api/internal/api/http/handlers"
	"github.com/staffsync/staffsync-api/internal/auth"
	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/service"
)

// auditMiddleware records successful mutating requests by authenticated
// callers. Handlers whose services write their own entries opt out through
// handlers.MarkAudited.
func auditMiddleware(audit *service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := c.Method()
		if !isMutating(method) {
			return c.Next()
		}
		// The tier gate and handlers may fail; failed requests are not audited.
		if err := c.Next(); err != nil {
			return err
		}
		if c.Response().StatusCode() >= http.StatusBadRequest || handlers.IsAudited(c) {
			return nil
		}
		principal, ok := auth.PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return nil
		}

		// Params and Path alias the request buffer, which fiber reuses.
		actorID := principal.User.ID
		target := utils.CopyString(c.Params("id"))
		if target == "" {
			target = actorID
		}
		entry := &domain.AuditLog{
			ActorID:       &actorID,
			TargetUserID:  &target,
			Action:        auditAction(method),
			Entity:        utils.CopyString(entityFromPath(c.Path())),
			Justification: bodyJustification(c),
			IPAddress:     service.ClientIP(c.UserContext()),
		}
		audit.RecordBestEffort(c.UserContext(), entry)
		return nil
	}
}

func isMutating(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	default:
		return false
	}
}

func auditAction(method string) domain.AuditAction {
	switch method {
	case fiber.MethodPost:
		return domain.AuditActionCreate
	case fiber.MethodDelete:
		return domain.AuditActionDelete
	default:
		return domain.AuditActionUpdate
	}
}

// entityFromPath returns the first path segment after the route prefix, so
// /api/profile/changes becomes "profile" and /auth/logout becomes "logout".
func entityFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) >= 2 && (segments[0] == "api" || segments[0] == "auth") {
		return segments[1]
	}
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}

func bodyJustification(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Justification string `json:"justification"`
	}
	if err := c.App().Config().JSONDecoder(body, &payload); err != nil {
		return ""
	}
	return payload.Justification
}
