package handlers

import "github.com/gofiber/fiber/v2"

const auditedKey = "audited"

// MarkAudited records that the service layer already wrote audit entries for
// this request.
func MarkAudited(c *fiber.Ctx) {
	c.Locals(auditedKey, true)
}

// IsAudited reports whether MarkAudited was called for the request.
func IsAudited(c *fiber.Ctx) bool {
	audited, _ := c.Locals(auditedKey).(bool)
	return audited
}
