package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/civicworks/civic-backend/internal/dto"
	"github.com/civicworks/civic-backend/internal/identity"
	"github.com/civicworks/civic-backend/internal/middleware"
	"github.com/civicworks/civic-backend/internal/services"
)

type AdminHandler struct {
	lifecycleService  *services.LifecycleService
	assignmentService *services.AssignmentService
	moderationService *services.ModerationService
	reportService     *services.ReportService
}

func NewAdminHandler(
	lifecycleService *services.LifecycleService,
	assignmentService *services.AssignmentService,
	moderationService *services.ModerationService,
	reportService *services.ReportService,
) *AdminHandler {
	return &AdminHandler{
		lifecycleService:  lifecycleService,
		assignmentService: assignmentService,
		moderationService: moderationService,
		reportService:     reportService,
	}
}

func requestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

func (h *AdminHandler) ChangeStatus(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.lifecycleService.Transition(reportID, req.Status, req.Justification, actor, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	middleware.RecordStatusTransition(string(req.Status))
	return c.JSON(report)
}

func (h *AdminHandler) AssignDirect(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var req dto.AssignDirectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	assignment, err := h.assignmentService.AssignDirect(reportID, &req, actor, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAssignmentResponse(*assignment, time.Now()))
}

func (h *AdminHandler) ListBids(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	bids, err := h.assignmentService.ListBids(reportID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"bids": bids})
}

func (h *AdminHandler) AcceptBid(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}
	bidID, err := uuid.Parse(c.Params("bidId"))
	if err != nil {
		return badRequest(c, "Invalid bid ID")
	}

	var req dto.AcceptBidRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	assignment, err := h.assignmentService.AcceptBid(reportID, bidID, &req, actor, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	middleware.RecordBidAccepted()
	return c.Status(fiber.StatusCreated).JSON(dto.NewAssignmentResponse(*assignment, time.Now()))
}

func (h *AdminHandler) Moderate(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var req dto.ModerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.moderationService.Moderate(reportID, &req, actor, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	middleware.RecordModerationAction(req.Action)
	return c.JSON(report)
}

func (h *AdminHandler) ReviewProof(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	proofID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid proof ID")
	}

	var req dto.ReviewProofRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	proof, err := h.assignmentService.ReviewProof(proofID, &req, actor, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(proof)
}

func (h *AdminHandler) BlockContractor(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}
	contractorID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid contractor ID")
	}

	var req dto.BlockContractorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	contractor, err := h.assignmentService.SetContractorBlocked(contractorID, &req, actor, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(contractor)
}

func (h *AdminHandler) AuditLog(c *fiber.Ctx) error {
	filter := dto.AuditLogFilter{
		EntityType: c.Query("entity_type", ""),
		Page:       atoiDefault(c.Query("page"), 1),
		Limit:      atoiDefault(c.Query("limit"), 50),
	}
	if entityParam := c.Query("entity_id"); entityParam != "" {
		entityID, err := uuid.Parse(entityParam)
		if err != nil {
			return badRequest(c, "Invalid entity_id")
		}
		filter.EntityID = &entityID
	}
	if actorParam := c.Query("actor_id"); actorParam != "" {
		actorID, err := uuid.Parse(actorParam)
		if err != nil {
			return badRequest(c, "Invalid actor_id")
		}
		filter.ActorID = &actorID
	}

	resp, err := h.reportService.AuditLog(&filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
