package handler

import (
	"go-carwash-pullout/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PulloutHandler struct {
	pullouts  service.PulloutService
	inventory service.InventoryService
}

func NewPulloutHandler(p service.PulloutService, inv service.InventoryService) *PulloutHandler {
	return &PulloutHandler{pullouts: p, inventory: inv}
}

type approveRequest struct {
	ApprovedBy string `json:"approved_by"`
}

type returnRequest struct {
	ReturnedBy string `json:"returned_by"`
}

// GetPulloutRequests returns the request list plus the two pickers the
// request form needs.
// GET /api/v1/pullout-requests
func (h *PulloutHandler) GetPulloutRequests(c *fiber.Ctx) error {
	requests, err := h.pullouts.ListRequests()
	if err != nil {
		return respondError(c, err)
	}
	orders, err := h.pullouts.ListActiveServiceOrders()
	if err != nil {
		return respondError(c, err)
	}
	supplies, err := h.inventory.GetAllSupplies()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"pulloutRequests":     requests,
		"activeServiceOrders": orders,
		"supplies":            supplies,
	})
}

func (h *PulloutHandler) GetPulloutRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid pullout request ID")
	}

	req, err := h.pullouts.GetRequest(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": req})
}

// POST /api/v1/pullout-requests
func (h *PulloutHandler) CreatePulloutRequest(c *fiber.Ctx) error {
	var input service.CreatePulloutInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	req, err := h.pullouts.CreateRequest(&input, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Pullout request created", "data": req})
}

// POST /api/v1/pullout-requests/:id/approve
func (h *PulloutHandler) ApprovePulloutRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid pullout request ID")
	}

	var body approveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}

	req, err := h.pullouts.Approve(id, body.ApprovedBy, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Pullout request approved", "data": req})
}

// RejectPulloutRequest ignores the request body.
// POST /api/v1/pullout-requests/:id/reject
func (h *PulloutHandler) RejectPulloutRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid pullout request ID")
	}

	req, err := h.pullouts.Reject(id, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Pullout request rejected", "data": req})
}

// DELETE /api/v1/pullout-requests/:id
func (h *PulloutHandler) DeletePulloutRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid pullout request ID")
	}

	if err := h.pullouts.Delete(id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Pullout request deleted"})
}

// GET /api/v1/pullout-requests/returnable/list
func (h *PulloutHandler) GetReturnable(c *fiber.Ctx) error {
	lines, err := h.pullouts.ListReturnable()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": lines})
}

// ReturnSupply answers 400 when the line is not eligible, with the reason.
// POST /api/v1/pullout-requests/return/:detailId
func (h *PulloutHandler) ReturnSupply(c *fiber.Ctx) error {
	detailID, err := parseID(c, "detailId")
	if err != nil {
		return badRequest(c, "Invalid pullout detail ID")
	}

	var body returnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}

	outcome, err := h.pullouts.ReturnLine(detailID, body.ReturnedBy, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	if !outcome.Returned {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":  outcome.Message(),
			"error":    outcome.Message(),
			"returned": false,
			"reason":   outcome.Reason,
		})
	}

	return c.JSON(fiber.Map{"message": outcome.Message(), "returned": true, "data": outcome.Detail})
}
