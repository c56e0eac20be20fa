package main

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/slotwise/session-booking/cron"

	"github.com/slotwise/session-booking/db"

	"github.com/slotwise/session-booking/redis"

	"github.com/slotwise/session-booking/routes"
)

func main() {
	app := fiber.New()
	db.Init()
	redis.InitRedis()
	jobs := cron.StartCronJobs()
	defer jobs.Stop()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello, World!")
	})
	routes.SetupProviderRoutes(app)
	routes.SetupBookingRoutes(app)

	app.Listen(":8000")
	fmt.Println("Server started on port 8000")
}
