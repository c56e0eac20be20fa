package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/slotwise/session-booking/controllers"
	"github.com/slotwise/session-booking/middleware"
)

// SetupBookingRoutes configures slot listing, holds and confirmation
func SetupBookingRoutes(app *fiber.App) {
	provider := app.Group("/providers")
	provider.Get("/:id/slots", controllers.GetAvailableSlots)
	provider.Post("/:id/slots", middleware.Protected(), controllers.AddManualSlot)
	provider.Get("/:id/bookings", middleware.Protected(), controllers.GetProviderBookings)

	holds := app.Group("/holds", middleware.Protected())
	holds.Post("/", controllers.HoldSlot)
	holds.Delete("/", controllers.ReleaseHold)

	bookings := app.Group("/bookings", middleware.Protected())
	bookings.Post("/confirm", controllers.ConfirmSlotBooking)
}
