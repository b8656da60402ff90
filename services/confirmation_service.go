package services

import (
	"fmt"
	"log"

	"github.com/brinebarrel/ramen_bookings/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier is the contract the notification gateway has to meet. Transport,
// retries and templating stay behind it.
type Notifier interface {
	Send(recipients []string, subject, textBody, htmlBody string) error
}

// ConfirmResult reports one confirmation pass over a date slot.
type ConfirmResult struct {
	Confirmed  []models.Booking `json:"confirmed"`
	EmailsSent int              `json:"emailsSent"`
}

// ConfirmationService is the only component allowed to bulk-transition
// bookings and to dispatch notifications. Both entry points re-read the full
// slot state, so repeated calls for an already-confirmed date are no-ops —
// that idempotence is what recovers the accepted create/confirm race between
// concurrent submissions.
type ConfirmationService struct {
	store    *BookingStore
	notifier Notifier
}

func NewConfirmationService(store *BookingStore, notifier Notifier) *ConfirmationService {
	return &ConfirmationService{store: store, notifier: notifier}
}

// AutoConfirmIfEligible confirms every pending booking on the date once
// occupancy has reached the confirmation threshold. Called after every
// successful create, since any new booking may complete a group.
func (s *ConfirmationService) AutoConfirmIfEligible(date string) (ConfirmResult, error) {
	return s.confirm(date, false)
}

// ManualConfirm is the admin override: same transition and notification as
// the automatic path, but without the threshold check.
func (s *ConfirmationService) ManualConfirm(date string) (ConfirmResult, error) {
	return s.confirm(date, true)
}

func (s *ConfirmationService) confirm(date string, bypassThreshold bool) (ConfirmResult, error) {
	bookings, err := s.store.ListByDate(date)
	if err != nil {
		return ConfirmResult{}, err
	}

	if !bypassThreshold && !s.store.Policy().MeetsConfirmationThreshold(bookings) {
		return ConfirmResult{}, nil
	}

	var pendingIDs []uuid.UUID
	for i := range bookings {
		if bookings[i].Status == models.BookingPending {
			pendingIDs = append(pendingIDs, bookings[i].ID)
		}
	}
	if len(pendingIDs) == 0 {
		return ConfirmResult{}, nil
	}

	// One batch update: the whole slot flips or none of it does.
	err = s.store.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Booking{}).
			Where("id IN ? AND status = ?", pendingIDs, models.BookingPending).
			Update("status", models.BookingConfirmed).Error
	})
	if err != nil {
		return ConfirmResult{}, err
	}

	var confirmed []models.Booking
	if err := s.store.db.Where("id IN ?", pendingIDs).Order("created_at").Find(&confirmed).Error; err != nil {
		return ConfirmResult{}, err
	}

	result := ConfirmResult{Confirmed: confirmed}

	recipients := make([]string, 0, len(confirmed))
	for i := range confirmed {
		recipients = append(recipients, confirmed[i].CustomerEmail)
	}
	subject, textBody, htmlBody := confirmationMessage(confirmed[0].TargetDate)
	if err := s.notifier.Send(recipients, subject, textBody, htmlBody); err != nil {
		// A confirmed slot with a failed email is a degraded success; the
		// transition stays.
		log.Printf("🔥 %v", &NotificationDispatchError{Err: err})
		return result, nil
	}
	result.EmailsSent = len(recipients)
	return result, nil
}

// ResendNotification re-emails one booking's customer, independent of any
// status transition.
func (s *ConfirmationService) ResendNotification(id uuid.UUID) (bool, error) {
	booking, err := s.store.Get(id)
	if err != nil {
		return false, err
	}

	subject, textBody, htmlBody := confirmationMessage(booking.TargetDate)
	if err := s.notifier.Send([]string{booking.CustomerEmail}, subject, textBody, htmlBody); err != nil {
		log.Printf("🔥 %v", &NotificationDispatchError{Err: err})
		return false, nil
	}
	return true, nil
}

func confirmationMessage(date string) (subject, textBody, htmlBody string) {
	subject = fmt.Sprintf("Ramen night on %s is confirmed!", date)
	textBody = fmt.Sprintf(
		"Good news — enough seats filled up and your ramen night on %s is confirmed. See you at the brewery!",
		date,
	)
	htmlBody = fmt.Sprintf(
		"<h1>You're in!</h1><p>Enough seats filled up and your ramen night on <b>%s</b> is confirmed.</p><p>See you at the brewery!</p>",
		date,
	)
	return subject, textBody, htmlBody
}
