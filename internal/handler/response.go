package handler

import (
	"errors"
	"strconv"

	"go-carwash-pullout/internal/service"

	"github.com/gofiber/fiber/v2"
)

// actorFrom reads the user set by middleware.RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	var a service.Actor
	if id, ok := c.Locals("user_id").(uint); ok {
		a.ID = id
	}
	if name, ok := c.Locals("user_name").(string); ok {
		a.Name = name
	}
	if email, ok := c.Locals("user_email").(string); ok {
		a.Email = email
	}
	return a
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg, "error": msg})
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		fields := make([]fiber.Map, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, fiber.Map{"field": f.FailedField, "tag": f.Tag, "message": f.Message()})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   verr.Error(),
			"errors":  fields,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrPulloutNotFound),
		errors.Is(err, service.ErrPulloutDetailNotFound),
		errors.Is(err, service.ErrSupplyNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrRequestAlreadyDecided),
		errors.Is(err, service.ErrApproverRequired),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrSupplyUnavailable),
		errors.Is(err, service.ErrSupplyExists):
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(fiber.Map{"message": err.Error(), "error": err.Error()})
}
