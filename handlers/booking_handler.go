package handlers

import (
	"errors"
	"log"

	"github.com/brinebarrel/ramen_bookings/models"
	"github.com/brinebarrel/ramen_bookings/services"
	ws "github.com/brinebarrel/ramen_bookings/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	Store    *services.BookingStore
	Workflow *services.ConfirmationService
)

// InitBookingServices wires the store and workflow the handler functions
// run against. Called once from main; tests swap in their own.
func InitBookingServices(db *gorm.DB, notifier services.Notifier) {
	Store = services.NewBookingStore(db, services.CapacityPolicyFromEnv())
	Workflow = services.NewConfirmationService(Store, notifier)
}

type CreateBookingRequest struct {
	CustomerName  string `json:"customerName" validate:"required,min=2"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	TargetDate    string `json:"targetDate" validate:"required"`
	PartySize     int    `json:"partySize,omitempty" validate:"omitempty,min=1"`
	Notes         string `json:"notes,omitempty"`
}

// CreateBooking is the customer-facing submission. Every successful create
// is immediately followed by an auto-confirm pass for its date, because any
// new booking may be the one that completes the group.
func CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := Store.Create(services.BookingInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		TargetDate:    req.TargetDate,
		PartySize:     req.PartySize,
		Notes:         req.Notes,
	})
	if err != nil {
		var validationErr *services.ValidationError
		var capacityErr *services.CapacityExceededError
		if errors.As(err, &validationErr) || errors.As(err, &capacityErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save booking"})
	}

	result, err := Workflow.AutoConfirmIfEligible(booking.TargetDate)
	if err != nil {
		// The booking itself is in; confirmation will be retried by the
		// next mutation on this date.
		log.Printf("🔥 Auto-confirm failed for %s: %v", booking.TargetDate, err)
	}
	confirmationTriggered := len(result.Confirmed) > 0
	if confirmationTriggered {
		booking.Status = models.BookingConfirmed
	}

	bookings, listErr := Store.ListByDate(booking.TargetDate)
	if listErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read date slot"})
	}
	policy := Store.Policy()

	eventType := "booking.created"
	if confirmationTriggered {
		eventType = "slot.confirmed"
	}
	publishSlotUpdate(eventType, booking.TargetDate)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"booking":               booking,
		"occupancy":             policy.Occupancy(bookings),
		"slotStatus":            policy.SlotStatus(bookings),
		"spotsRemaining":        policy.SpotsRemaining(bookings),
		"confirmationTriggered": confirmationTriggered,
	})
}

// GetDateSlot is the storefront availability view: aggregates only, no
// customer data.
func GetDateSlot(c *fiber.Ctx) error {
	date := c.Params("date")

	bookings, err := Store.ListByDate(date)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read date slot"})
	}

	policy := Store.Policy()
	return c.JSON(fiber.Map{
		"date":           date,
		"occupancy":      policy.Occupancy(bookings),
		"slotStatus":     policy.SlotStatus(bookings),
		"spotsRemaining": policy.SpotsRemaining(bookings),
	})
}

func publishSlotUpdate(eventType, date string) {
	bookings, err := Store.ListByDate(date)
	if err != nil {
		log.Printf("Error recomputing slot %s for feed: %v", date, err)
		return
	}
	policy := Store.Policy()
	ws.SlotFeed.Publish(ws.SlotEvent{
		Type:           eventType,
		Date:           date,
		Occupancy:      policy.Occupancy(bookings),
		SlotStatus:     policy.SlotStatus(bookings),
		SpotsRemaining: policy.SpotsRemaining(bookings),
	})
}
