package handler

import (
	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SupplyHandler struct {
	service service.InventoryService
}

func NewSupplyHandler(s service.InventoryService) *SupplyHandler {
	return &SupplyHandler{service: s}
}

func (h *SupplyHandler) GetSupplies(c *fiber.Ctx) error {
	supplies, err := h.service.GetAllSupplies()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(supplies)
}

func (h *SupplyHandler) GetLowStock(c *fiber.Ctx) error {
	supplies, err := h.service.GetLowStock()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(supplies)
}

func (h *SupplyHandler) CreateSupply(c *fiber.Ctx) error {
	var supply model.Supply
	if err := c.BodyParser(&supply); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.service.CreateSupply(&supply, actorFrom(c)); err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Supply created", "data": supply})
}

func (h *SupplyHandler) UpdateSupply(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid supply ID")
	}

	var supply model.Supply
	if err := c.BodyParser(&supply); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.service.UpdateSupply(id, &supply, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Supply updated", "data": updated})
}

func (h *SupplyHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid supply ID")
	}

	var input service.AdjustStockInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	movement, err := h.service.AdjustStock(id, &input, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": movement})
}

func (h *SupplyHandler) GetMovements(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid supply ID")
	}

	movements, err := h.service.GetMovements(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}
