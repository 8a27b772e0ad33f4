package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/staffsync/staffsync-api/internal/api/dto"
	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/service"
)

// PersonnelHandler exposes the personnel directory.
type PersonnelHandler struct {
	service *service.PersonnelService
}

// NewPersonnelHandler constructs handler.
func NewPersonnelHandler(personnelService *service.PersonnelService) *PersonnelHandler {
	return &PersonnelHandler{service: personnelService}
}

// List GET /api/personnel.
func (h *PersonnelHandler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), parsePersonnelFilter(c))
	if err != nil {
		return err
	}
	rows := make([]dto.PersonnelRowResponse, 0, len(page.Rows))
	for i := range page.Rows {
		rows = append(rows, personnelRowResponse(&page.Rows[i]))
	}
	return c.JSON(fiber.Map{
		"data": rows,
		"meta": dto.PageMeta{Page: page.Page, PageSize: page.PageSize, Total: page.Total, TotalPages: page.TotalPages},
	})
}

// Export GET /api/personnel/export.
func (h *PersonnelHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if _, err := h.service.ExportCSV(c.UserContext(), &buf, parsePersonnelFilter(c)); err != nil {
		return err
	}
	filename := fmt.Sprintf("personnel-%s.csv", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

// Musterings GET /api/musterings/breakdown.
func (h *PersonnelHandler) Musterings(c *fiber.Ctx) error {
	breakdown, err := h.service.MusteringBreakdown(c.UserContext(), c.Query("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": breakdown})
}

// Bases GET /api/bases/breakdown.
func (h *PersonnelHandler) Bases(c *fiber.Ctx) error {
	bases, err := h.service.BaseBreakdown(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bases})
}

// Units GET /api/units/breakdown.
func (h *PersonnelHandler) Units(c *fiber.Ctx) error {
	units, err := h.service.UnitBreakdown(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": units})
}

func parsePersonnelFilter(c *fiber.Ctx) service.PersonnelFilter {
	filter := service.PersonnelFilter{
		Search:     c.Query("search"),
		Musterings: queryList(c, "mustering"),
		Ranks:      queryList(c, "rank"),
		Page:       parseInt(c.Query("page"), 1),
		PageSize:   parseInt(c.Query("page_size"), 0),
	}
	for _, status := range queryList(c, "readiness") {
		filter.Readiness = append(filter.Readiness, domain.ReadinessStatus(status))
	}
	return filter
}
