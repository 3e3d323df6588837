package handlers

import (
	"errors"
	"strconv"

	"plp-rushdesk/internal/core/services"
	"plp-rushdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReferralHandler handles referral endpoints
type ReferralHandler struct {
	referralService *services.ReferralService
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(referralService *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// CommentRequest represents a comment submission body
type CommentRequest struct {
	Text string `json:"text"`
}

// Create submits a new referral
// @Summary Create referral
// @Description Submit a new PNM referral
// @Tags Referrals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateReferralInput true "Referral data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /referrals [post]
func (h *ReferralHandler) Create(c *fiber.Ctx) error {
	var input services.CreateReferralInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	referral, err := h.referralService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFullNameRequired):
			return response.BadRequest(c, "Full name is required")
		default:
			return response.InternalServerError(c, "Failed to create referral")
		}
	}

	return response.Created(c, "Referral submitted successfully", fiber.Map{
		"referral": referral,
	})
}

// List returns all referrals
// @Summary List referrals
// @Description List all referral records
// @Tags Referrals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /referrals [get]
func (h *ReferralHandler) List(c *fiber.Ctx) error {
	referrals, err := h.referralService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list referrals")
	}

	return response.Success(c, "Referrals retrieved successfully", fiber.Map{
		"referrals": referrals,
		"total":     len(referrals),
	})
}

// GetByID returns a single referral
// @Summary Get referral by ID
// @Description Get a single referral record by ID
// @Tags Referrals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Referral ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /referrals/{id} [get]
func (h *ReferralHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid referral ID")
	}

	referral, err := h.referralService.GetByID(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReferralNotFound):
			return response.NotFound(c, "Referral not found")
		default:
			return response.InternalServerError(c, "Failed to get referral")
		}
	}

	return response.Success(c, "Referral retrieved successfully", fiber.Map{
		"referral": referral,
	})
}

// Update applies a partial update to a referral
// @Summary Update referral
// @Description Update fields of a referral record (last write wins)
// @Tags Referrals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Referral ID"
// @Param body body services.UpdateReferralInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /referrals/{id} [put]
func (h *ReferralHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid referral ID")
	}

	var input services.UpdateReferralInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	referral, err := h.referralService.Update(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReferralNotFound):
			return response.NotFound(c, "Referral not found")
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, "Invalid status value")
		default:
			return response.InternalServerError(c, "Failed to update referral")
		}
	}

	return response.Success(c, "Referral updated successfully", fiber.Map{
		"referral": referral,
	})
}

// ListComments returns the comment thread of a referral
// @Summary List referral comments
// @Description List the comment thread of a referral, oldest first
// @Tags Referrals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Referral ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /referrals/{id}/comments [get]
func (h *ReferralHandler) ListComments(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid referral ID")
	}

	referral, err := h.referralService.GetByID(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReferralNotFound):
			return response.NotFound(c, "Referral not found")
		default:
			return response.InternalServerError(c, "Failed to get referral")
		}
	}

	return response.Success(c, "Comments retrieved successfully", fiber.Map{
		"comments": referral.Comments,
		"total":    len(referral.Comments),
	})
}

// AddComment appends a comment to a referral's thread
// @Summary Add referral comment
// @Description Append a comment to the referral's thread
// @Tags Referrals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Referral ID"
// @Param body body CommentRequest true "Comment text"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /referrals/{id}/comments [post]
func (h *ReferralHandler) AddComment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid referral ID")
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Author comes from the authenticated user, never the request body
	author, _ := c.Locals("displayName").(string)

	comment, err := h.referralService.AddComment(c.Context(), uint(id), req.Text, author)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyComment):
			return response.BadRequest(c, "Comment text is required")
		case errors.Is(err, services.ErrReferralNotFound):
			return response.NotFound(c, "Referral not found")
		default:
			return response.InternalServerError(c, "Failed to add comment")
		}
	}

	return response.Created(c, "Comment added successfully", fiber.Map{
		"comment": comment,
	})
}
