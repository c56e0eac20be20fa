package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/slotwise/session-booking/models"
	"github.com/slotwise/session-booking/services"
	"github.com/slotwise/session-booking/utils"
)

type setScheduleRequest struct {
	Rules []models.ScheduleRule `json:"rules"`
}

type blockDateRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// GetSchedule returns the provider's active recurring rules
func GetSchedule(c *fiber.Ctx) error {
	providerID, ok := providerIDParam(c)
	if !ok {
		return nil
	}
	rules, err := services.GetSchedule(providerID)
	if err != nil {
		return serviceError(c, "Failed to get schedule", err)
	}
	return c.JSON(rules)
}

// SetSchedule replaces the provider's recurring rules wholesale
func SetSchedule(c *fiber.Ctx) error {
	providerID, ok := providerIDParam(c)
	if !ok {
		return nil
	}
	var req setScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	rules, err := services.SetSchedule(providerID, req.Rules)
	if err != nil {
		return serviceError(c, "Failed to set schedule", err)
	}
	return c.JSON(rules)
}

// AddBlockedDate blocks a calendar day for the provider
func AddBlockedDate(c *fiber.Ctx) error {
	providerID, ok := providerIDParam(c)
	if !ok {
		return nil
	}
	var req blockDateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	blocked, err := services.AddBlockedDate(providerID, req.Date, req.Reason)
	if err != nil {
		return serviceError(c, "Failed to block date", err)
	}
	return c.Status(fiber.StatusCreated).JSON(blocked)
}

// RemoveBlockedDate unblocks a calendar day
func RemoveBlockedDate(c *fiber.Ctx) error {
	providerID, ok := providerIDParam(c)
	if !ok {
		return nil
	}
	date := c.Params("date")
	if err := services.RemoveBlockedDate(providerID, date); err != nil {
		return serviceError(c, "Failed to unblock date", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// serviceError maps the engine's error taxonomy onto HTTP status codes.
func serviceError(c *fiber.Ctx, message string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidDuration):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrProviderNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrSlotUnavailable):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrHoldExpiredOrStolen):
		status = fiber.StatusGone
	}
	return c.Status(status).JSON(utils.ErrorResponse{
		Message: message,
		Error:   err.Error(),
	})
}

// providerIDParam parses the :id route param, writing a 400 itself when the
// value is missing or non-numeric.
func providerIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid provider id",
		})
		return 0, false
	}
	return uint(id), true
}
