package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/brinebarrel/ramen_bookings/database"
	"github.com/brinebarrel/ramen_bookings/models"
	"github.com/brinebarrel/ramen_bookings/notifications"
	"github.com/brinebarrel/ramen_bookings/utils"
)

// SendPickupReminders emails everyone on a confirmed slot the day before
// their ramen night. Read-only over bookings; status changes stay with the
// store and the confirmation workflow.
func SendPickupReminders() {
	log.Println("Running job: SendPickupReminders...")

	tomorrow := utils.Day(time.Now().AddDate(0, 0, 1))

	var confirmed []models.Booking
	err := database.DB.
		Where("target_date = ? AND status = ?", tomorrow, models.BookingConfirmed).
		Find(&confirmed).Error
	if err != nil {
		log.Printf("Error checking for upcoming slots: %v", err)
		return
	}

	if len(confirmed) == 0 {
		return
	}

	for _, booking := range confirmed {
		log.Printf("Sending reminder for booking ID: %s", booking.ID)

		emailSubject := "Reminder: Ramen Night is Tomorrow!"
		emailBody := fmt.Sprintf(
			"<h1>See You Tomorrow</h1><p>Hi %s,</p><p>This is a friendly reminder that your ramen night on %s is tomorrow. Your table seats %d.</p>",
			booking.CustomerName,
			booking.TargetDate,
			booking.PartySize,
		)

		go notifications.SendEmail(booking.CustomerEmail, emailSubject, emailBody)
	}
}
