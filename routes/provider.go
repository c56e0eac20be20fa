package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/slotwise/session-booking/controllers"
	"github.com/slotwise/session-booking/middleware"
)

// SetupProviderRoutes configures provider, schedule and presence routes
func SetupProviderRoutes(app *fiber.App) {
	provider := app.Group("/providers")
	provider.Post("/", middleware.Protected(), controllers.CreateProvider)
	provider.Get("/:id", controllers.GetProvider)

	provider.Get("/:id/schedule", controllers.GetSchedule)
	provider.Put("/:id/schedule", middleware.Protected(), controllers.SetSchedule)

	provider.Post("/:id/blocked-dates", middleware.Protected(), controllers.AddBlockedDate)
	provider.Delete("/:id/blocked-dates/:date", middleware.Protected(), controllers.RemoveBlockedDate)

	provider.Get("/:id/status", controllers.GetOnlineStatus)
	provider.Put("/:id/status", middleware.Protected(), controllers.SetOnlineStatus)
	provider.Post("/:id/heartbeat", middleware.Protected(), controllers.UpdateActivity)
}
