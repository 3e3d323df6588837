package handlers

import (
	"errors"
	"strconv"

	"plp-rushdesk/internal/core/services"
	"plp-rushdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PNMHandler handles PNM dashboard endpoints
type PNMHandler struct {
	pnmService *services.PNMService
}

// NewPNMHandler creates a new PNM handler
func NewPNMHandler(pnmService *services.PNMService) *PNMHandler {
	return &PNMHandler{pnmService: pnmService}
}

// List returns PNM records filtered by status and search term
// @Summary List PNMs
// @Description List PNM records, optionally filtered by status and search term
// @Tags PNMs
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter (Pending, In Progress, Accepted, Rejected, all)"
// @Param search query string false "Case-insensitive substring match on name, email and phone"
// @Success 200 {object} response.Response
// @Router /pnms [get]
func (h *PNMHandler) List(c *fiber.Ctx) error {
	input := &services.ListInput{
		Status: c.Query("status", "all"),
		Search: c.Query("search"),
	}

	// An unknown status filter simply matches nothing; it is not an error
	pnms, err := h.pnmService.List(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list PNMs")
	}

	return response.Success(c, "PNMs retrieved successfully", fiber.Map{
		"pnms":  pnms,
		"total": len(pnms),
	})
}

// GetByID returns a single PNM record
// @Summary Get PNM by ID
// @Description Get a single PNM record by ID
// @Tags PNMs
// @Produce json
// @Security BearerAuth
// @Param id path int true "PNM ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pnms/{id} [get]
func (h *PNMHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid PNM ID")
	}

	pnm, err := h.pnmService.GetByID(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPNMNotFound):
			return response.NotFound(c, "PNM not found")
		default:
			return response.InternalServerError(c, "Failed to get PNM")
		}
	}

	return response.Success(c, "PNM retrieved successfully", fiber.Map{
		"pnm": pnm,
	})
}

// Update applies a partial update to a PNM record
// @Summary Update PNM
// @Description Update fields of a PNM record (last write wins)
// @Tags PNMs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "PNM ID"
// @Param body body services.UpdatePNMInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pnms/{id} [put]
func (h *PNMHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid PNM ID")
	}

	var input services.UpdatePNMInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	pnm, err := h.pnmService.Update(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPNMNotFound):
			return response.NotFound(c, "PNM not found")
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, "Invalid status value")
		default:
			return response.InternalServerError(c, "Failed to update PNM")
		}
	}

	return response.Success(c, "PNM updated successfully", fiber.Map{
		"pnm": pnm,
	})
}
