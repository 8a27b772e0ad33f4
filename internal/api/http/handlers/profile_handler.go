package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/staffsync/staffsync-api/internal/api/dto"
	"github.com/staffsync/staffsync-api/internal/auth"
	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/service"
	apperrors "github.com/staffsync/staffsync-api/pkg/util"
)

// ProfileHandler exposes the profile-change workflow.
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: profileService}
}

// SubmitChange POST /api/profile/changes.
func (h *ProfileHandler) SubmitChange(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SubmitChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	change, err := h.service.SubmitChange(c.UserContext(), principal.User, domain.ProfileUpdates(req.Updates), req.Justification)
	if err != nil {
		return err
	}
	MarkAudited(c)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": profileChangeResponse(change)})
}

// GetChange GET /api/profile/changes/:id. The id "me" resolves to the caller.
func (h *ProfileHandler) GetChange(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	change, err := h.service.GetPending(c.UserContext(), principal.User, memberParam(c, principal))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileChangeResponse(change)})
}

// ListChanges GET /api/profile/changes.
func (h *ProfileHandler) ListChanges(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var statuses []domain.ChangeStatus
	for _, status := range queryList(c, "status") {
		statuses = append(statuses, domain.ChangeStatus(status))
	}

	changes, err := h.service.ListPending(c.UserContext(), principal.User, statuses, parseInt(c.Query("limit"), 50), parseInt(c.Query("offset"), 0))
	if err != nil {
		return err
	}
	items := make([]dto.ProfileChangeResponse, 0, len(changes))
	for i := range changes {
		items = append(items, profileChangeResponse(&changes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Recommend POST /api/profile/changes/:id/recommend.
func (h *ProfileHandler) Recommend(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	req, err := parseReview(c)
	if err != nil {
		return err
	}

	change, err := h.service.RecommendChange(c.UserContext(), principal.User, memberParam(c, principal), *req.Approve, req.Justification)
	if err != nil {
		return err
	}
	MarkAudited(c)
	return c.JSON(fiber.Map{"data": profileChangeResponse(change)})
}

// Finalize POST /api/profile/changes/:id/finalize.
func (h *ProfileHandler) Finalize(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	req, err := parseReview(c)
	if err != nil {
		return err
	}

	result, err := h.service.FinalizeChange(c.UserContext(), principal.User, memberParam(c, principal), *req.Approve, req.Justification)
	if err != nil {
		return err
	}
	MarkAudited(c)
	applied := result.Outcome.Applied
	if applied == nil {
		applied = []domain.FieldChange{}
	}
	return c.JSON(fiber.Map{"data": dto.FinalizeResponse{
		Request: profileChangeResponse(&result.Outcome.Request),
		Applied: applied,
		Member:  userResponse(&result.Member),
	}})
}

// UpdateProfile PATCH /api/users/:id/profile.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	member, changes, err := h.service.UpdateProfile(c.UserContext(), principal.User, memberParam(c, principal), domain.ProfileUpdates(req.Updates), req.Justification)
	if err != nil {
		return err
	}
	MarkAudited(c)
	if changes == nil {
		changes = []domain.FieldChange{}
	}
	return c.JSON(fiber.Map{"data": dto.UpdateProfileResponse{Member: userResponse(member), Changes: changes}})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func memberParam(c *fiber.Ctx, principal *auth.Principal) string {
	id := utils.CopyString(c.Params("id"))
	if id == "me" {
		return principal.User.ID
	}
	return id
}

func parseReview(c *fiber.Ctx) (*dto.ReviewRequest, error) {
	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Approve == nil {
		return nil, apperrors.NewValidationError("approve required", map[string]any{"approve": "must be true or false"})
	}
	return &req, nil
}
