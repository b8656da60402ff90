package routes

import (
	"github.com/brinebarrel/ramen_bookings/handlers"
	"github.com/brinebarrel/ramen_bookings/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func FeedRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws/slots", middleware.Protected(), middleware.AdminRequired(), websocket.New(handlers.ServeSlotFeed))
}
