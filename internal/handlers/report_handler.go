package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/civicworks/civic-backend/internal/dto"
	"github.com/civicworks/civic-backend/internal/identity"
	"github.com/civicworks/civic-backend/internal/models"
	"github.com/civicworks/civic-backend/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.reportService.Create(actor, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	filter := dto.ReportFilter{
		Status:   models.ReportStatus(c.Query("status", "")),
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

func (h *ReportHandler) ListByWard(c *fiber.Ctx) error {
	wardID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid ward ID")
	}

	resp, err := h.reportService.ListByWard(wardID,
		atoiDefault(c.Query("page"), 1),
		atoiDefault(c.Query("limit"), 20))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	resp, err := h.reportService.Get(reportID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ReportHandler) Timeline(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	entries, err := h.reportService.Timeline(reportID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TimelineResponse{Entries: entries})
}

func (h *ReportHandler) Update(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.reportService.Update(reportID, actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	if err := h.reportService.Delete(reportID, actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Report deleted"})
}

func (h *ReportHandler) MyReports(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	reports, err := h.reportService.MyReports(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

func (h *ReportHandler) Upvote(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	if err := h.reportService.Upvote(reportID, actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Upvoted"})
}

func (h *ReportHandler) Subscribe(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	if err := h.reportService.Subscribe(reportID, actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Subscribed"})
}

func (h *ReportHandler) Unsubscribe(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	if err := h.reportService.Unsubscribe(reportID, actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Unsubscribed"})
}

func atoiDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
