package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/slotwise/session-booking/services"
	"github.com/slotwise/session-booking/utils"
)

type holdRequest struct {
	ProviderID uint      `json:"provider_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	UserID     uint      `json:"user_id"`
}

type releaseRequest struct {
	ProviderID uint      `json:"provider_id"`
	Start      time.Time `json:"start"`
	UserID     uint      `json:"user_id"`
}

type confirmRequest struct {
	ProviderID uint      `json:"provider_id"`
	Start      time.Time `json:"start"`
	UserID     uint      `json:"user_id"`
	PaymentRef string    `json:"payment_ref"`
}

type manualSlotRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// GetAvailableSlots lists open windows for ?date=YYYY-MM-DD&duration=60
func GetAvailableSlots(c *fiber.Ctx) error {
	providerID, ok := providerIDParam(c)
	if !ok {
		return nil
	}
	date, err := utils.ParseDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date",
			Error:   err.Error(),
		})
	}
	duration := c.QueryInt("duration", 60)

	windows, err := services.GetAvailableSlots(providerID, date, duration)
	if err != nil {
		return serviceError(c, "Failed to get available slots", err)
	}
	return c.JSON(fiber.Map{
		"provider_id": providerID,
		"date":        date.Format(utils.DateLayout),
		"duration":    duration,
		"slots":       windows,
		"count":       len(windows),
	})
}

// HoldSlot reserves a window while the user completes payment
func HoldSlot(c *fiber.Ctx) error {
	var req holdRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	slot, err := services.HoldSlot(req.ProviderID, req.Start, req.End, req.UserID)
	if err != nil {
		return serviceError(c, "Failed to hold slot", err)
	}
	return c.Status(fiber.StatusCreated).JSON(slot)
}

// ReleaseHold lets a user back out of payment early
func ReleaseHold(c *fiber.Ctx) error {
	var req releaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	released, err := services.ReleaseHold(req.ProviderID, req.Start, req.UserID)
	if err != nil {
		return serviceError(c, "Failed to release hold", err)
	}
	return c.JSON(fiber.Map{"released": released})
}

// ConfirmSlotBooking is called by the payment layer after a successful
// payment tied to a hold
func ConfirmSlotBooking(c *fiber.Ctx) error {
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	slot, booking, err := services.ConfirmSlotBooking(req.ProviderID, req.Start, req.UserID, req.PaymentRef)
	if err != nil {
		return serviceError(c, "Failed to confirm booking", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"slot":    slot,
		"booking": booking,
	})
}

// AddManualSlot lets a provider offer a one-off window
func AddManualSlot(c *fiber.Ctx) error {
	providerID, ok := providerIDParam(c)
	if !ok {
		return nil
	}
	var req manualSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	slot, err := services.AddManualSlot(providerID, req.Start, req.End)
	if err != nil {
		return serviceError(c, "Failed to add slot", err)
	}
	return c.Status(fiber.StatusCreated).JSON(slot)
}

// GetProviderBookings lists a provider's bookings for ?date=YYYY-MM-DD
func GetProviderBookings(c *fiber.Ctx) error {
	providerID, ok := providerIDParam(c)
	if !ok {
		return nil
	}
	date, err := utils.ParseDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date",
			Error:   err.Error(),
		})
	}
	bookings, err := services.GetProviderBookings(providerID, date)
	if err != nil {
		return serviceError(c, "Failed to get bookings", err)
	}
	return c.JSON(fiber.Map{
		"bookings": bookings,
		"count":    len(bookings),
	})
}
