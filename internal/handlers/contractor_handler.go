package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/civicworks/civic-backend/internal/dto"
	"github.com/civicworks/civic-backend/internal/identity"
	"github.com/civicworks/civic-backend/internal/models"
	"github.com/civicworks/civic-backend/internal/services"
)

type ContractorHandler struct {
	assignmentService *services.AssignmentService
	reportService     *services.ReportService
}

func NewContractorHandler(assignmentService *services.AssignmentService, reportService *services.ReportService) *ContractorHandler {
	return &ContractorHandler{assignmentService: assignmentService, reportService: reportService}
}

// AvailableReports lists reports open for bidding.
func (h *ContractorHandler) AvailableReports(c *fiber.Ctx) error {
	filter := dto.ReportFilter{
		Status:   models.StatusInBidding,
		Category: c.Query("category", ""),
		Page:     atoiDefault(c.Query("page"), 1),
		Limit:    atoiDefault(c.Query("limit"), 20),
	}
	if wardParam := c.Query("ward_id"); wardParam != "" {
		wardID, err := uuid.Parse(wardParam)
		if err != nil {
			return badRequest(c, "Invalid ward_id")
		}
		filter.WardID = &wardID
	}

	resp, err := h.reportService.List(&filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ContractorHandler) SubmitBid(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var req dto.SubmitBidRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	bid, err := h.assignmentService.SubmitBid(reportID, actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bid)
}

func (h *ContractorHandler) MyAssignments(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	assignments, err := h.assignmentService.MyAssignments(actor)
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	out := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, dto.NewAssignmentResponse(a, now))
	}
	return c.JSON(fiber.Map{"assignments": out})
}

func (h *ContractorHandler) SubmitProof(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SubmitProofRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	proof, err := h.assignmentService.SubmitProof(actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(proof)
}
