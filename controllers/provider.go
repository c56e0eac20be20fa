package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/slotwise/session-booking/db"
	"github.com/slotwise/session-booking/models"
	"github.com/slotwise/session-booking/services"
	"github.com/slotwise/session-booking/utils"
)

type statusRequest struct {
	IsOnline  bool   `json:"is_online"`
	ChangedBy string `json:"changed_by"`
}

// CreateProvider registers a provider row. Full onboarding (identity,
// payouts) lives in the surrounding application; this only satisfies
// referential integrity for the engine.
func CreateProvider(c *fiber.Ctx) error {
	provider := new(models.Provider)
	if err := c.BodyParser(provider); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if provider.AutoOfflineMinutes <= 0 {
		provider.AutoOfflineMinutes = 30
	}
	if err := db.DB.Create(provider).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create provider",
			Error:   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(provider)
}

// GetProvider returns a provider row
func GetProvider(c *fiber.Ctx) error {
	id := c.Params("id")
	var provider models.Provider
	if err := db.DB.First(&provider, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Provider not found",
			Error:   err.Error(),
		})
	}
	return c.JSON(provider)
}

// GetOnlineStatus returns the cached presence flag
func GetOnlineStatus(c *fiber.Ctx) error {
	providerID, ok := providerIDParam(c)
	if !ok {
		return nil
	}
	online, err := services.GetOnlineStatus(providerID)
	if err != nil {
		return serviceError(c, "Failed to get status", err)
	}
	return c.JSON(fiber.Map{
		"provider_id": providerID,
		"is_online":   online,
	})
}

// SetOnlineStatus flips presence and logs the transition
func SetOnlineStatus(c *fiber.Ctx) error {
	providerID, ok := providerIDParam(c)
	if !ok {
		return nil
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if req.ChangedBy == "" {
		req.ChangedBy = "provider"
	}
	provider, err := services.SetOnlineStatus(providerID, req.IsOnline, req.ChangedBy, models.StatusSourceManual)
	if err != nil {
		return serviceError(c, "Failed to set status", err)
	}
	return c.JSON(provider)
}

// UpdateActivity is the provider heartbeat endpoint
func UpdateActivity(c *fiber.Ctx) error {
	providerID, ok := providerIDParam(c)
	if !ok {
		return nil
	}
	updated, err := services.UpdateActivity(providerID)
	if err != nil {
		return serviceError(c, "Failed to update activity", err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}
