package routes

import (
	"github.com/brinebarrel/ramen_bookings/handlers"
	"github.com/brinebarrel/ramen_bookings/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Customer-facing surface.
	api.Post("/bookings", handlers.CreateBooking)
	api.Get("/slots/:date", handlers.GetDateSlot)

	// Admin surface lives under its own prefix so the JWT guard never
	// shadows the public submission route.
	booking := api.Group("/admin/bookings", middleware.Protected(), middleware.AdminRequired())
	booking.Get("", handlers.ListBookings)
	booking.Post("/confirm", handlers.ConfirmSlot)
	booking.Patch("/:bookingId/status", handlers.UpdateBookingStatus)
	booking.Post("/:bookingId/notify", handlers.ResendNotification)
	booking.Delete("/:bookingId", handlers.DeleteBooking)
}
