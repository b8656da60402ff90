package handlers

import (
	"errors"
	"sort"

	"github.com/brinebarrel/ramen_bookings/models"
	"github.com/brinebarrel/ramen_bookings/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type DateSlotView struct {
	Date           string           `json:"date"`
	Occupancy      int              `json:"occupancy"`
	SpotsRemaining int              `json:"spotsRemaining"`
	SlotStatus     string           `json:"slotStatus"`
	Bookings       []models.Booking `json:"bookings"`
}

// ListBookings returns every booking grouped by date slot, or a single slot
// when ?date= is given.
func ListBookings(c *fiber.Ctx) error {
	policy := Store.Policy()

	if date := c.Query("date"); date != "" {
		bookings, err := Store.ListByDate(date)
		if err != nil {
			var validationErr *services.ValidationError
			if errors.As(err, &validationErr) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		return c.JSON(DateSlotView{
			Date:           date,
			Occupancy:      policy.Occupancy(bookings),
			SpotsRemaining: policy.SpotsRemaining(bookings),
			SlotStatus:     policy.SlotStatus(bookings),
			Bookings:       bookings,
		})
	}

	all, err := Store.ListAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	byDate := make(map[string][]models.Booking)
	for _, booking := range all {
		byDate[booking.TargetDate] = append(byDate[booking.TargetDate], booking)
	}

	slots := make([]DateSlotView, 0, len(byDate))
	for date, bookings := range byDate {
		slots = append(slots, DateSlotView{
			Date:           date,
			Occupancy:      policy.Occupancy(bookings),
			SpotsRemaining: policy.SpotsRemaining(bookings),
			SlotStatus:     policy.SlotStatus(bookings),
			Bookings:       bookings,
		})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Date < slots[j].Date })

	return c.JSON(fiber.Map{"slots": slots})
}

// ConfirmSlot is the admin override: confirm a whole date regardless of
// occupancy.
func ConfirmSlot(c *fiber.Ctx) error {
	type ConfirmRequest struct {
		Date string `json:"date" validate:"required"`
	}

	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := Workflow.ManualConfirm(req.Date)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to confirm bookings"})
	}

	if len(result.Confirmed) > 0 {
		publishSlotUpdate("slot.confirmed", result.Confirmed[0].TargetDate)
	}

	return c.JSON(fiber.Map{
		"confirmed":  result.Confirmed,
		"emailsSent": result.EmailsSent,
	})
}

func UpdateBookingStatus(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	type StatusRequest struct {
		Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := Store.UpdateStatus(bookingID, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update booking"})
	}

	publishSlotUpdate("booking.updated", booking.TargetDate)
	return c.JSON(fiber.Map{"booking": booking})
}

func DeleteBooking(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := Store.Get(bookingID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	deleted, err := Store.Delete(bookingID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete booking"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	publishSlotUpdate("booking.deleted", booking.TargetDate)
	return c.JSON(fiber.Map{"deleted": true})
}

// ResendNotification re-emails a single booking's customer on demand.
func ResendNotification(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	sent, err := Workflow.ResendNotification(bookingID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resend notification"})
	}

	return c.JSON(fiber.Map{"sent": sent})
}
