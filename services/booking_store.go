package services

import (
	"errors"
	"log"

	"github.com/brinebarrel/ramen_bookings/models"
	"github.com/brinebarrel/ramen_bookings/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

// BookingInput is everything a customer submission carries. PartySize of 0
// means the caller did not send one and gets the per-person default of 1.
type BookingInput struct {
	CustomerName  string `validate:"required,min=2"`
	CustomerEmail string `validate:"required,email"`
	CustomerPhone string
	TargetDate    string `validate:"required"`
	PartySize     int    `validate:"omitempty,min=1"`
	Notes         string
}

// BookingStore is the sole source of truth for bookings and therefore for
// occupancy. It never sends notifications; that belongs to the
// ConfirmationService.
type BookingStore struct {
	db     *gorm.DB
	policy CapacityPolicy
}

func NewBookingStore(db *gorm.DB, policy CapacityPolicy) *BookingStore {
	return &BookingStore{db: db, policy: policy}
}

func (s *BookingStore) Policy() CapacityPolicy {
	return s.policy
}

// Create validates, capacity-checks and persists a new pending booking.
//
// The occupancy read and the insert are not atomic across two concurrent
// submissions for the same date: both may observe a below-cap slot. That
// window is accepted; ConfirmationService re-reads full state on every pass,
// so the slot converges on the next mutation for that date.
func (s *BookingStore) Create(input BookingInput) (models.Booking, error) {
	if input.PartySize == 0 {
		input.PartySize = 1
	}
	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return models.Booking{}, &ValidationError{
				Field:  fieldErrs[0].Field(),
				Reason: "failed on " + fieldErrs[0].Tag(),
			}
		}
		return models.Booking{}, &ValidationError{Field: "booking", Reason: err.Error()}
	}

	day, err := utils.NormalizeDate(input.TargetDate)
	if err != nil {
		return models.Booking{}, &ValidationError{Field: "TargetDate", Reason: err.Error()}
	}

	existing, err := s.ListByDate(day)
	if err != nil {
		return models.Booking{}, err
	}
	occupancy := s.policy.Occupancy(existing)
	if occupancy+input.PartySize > s.policy.MaxCapacity {
		return models.Booking{}, &CapacityExceededError{
			Date:        day,
			PartySize:   input.PartySize,
			Occupancy:   occupancy,
			MaxCapacity: s.policy.MaxCapacity,
		}
	}

	booking := models.Booking{
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		TargetDate:    day,
		PartySize:     input.PartySize,
		Status:        models.BookingPending,
		Notes:         input.Notes,
	}
	if err := s.db.Create(&booking).Error; err != nil {
		return models.Booking{}, err
	}
	return booking, nil
}

func (s *BookingStore) ListAll() ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.db.Order("target_date, created_at").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *BookingStore) ListByDate(date string) ([]models.Booking, error) {
	day, err := utils.NormalizeDate(date)
	if err != nil {
		return nil, &ValidationError{Field: "TargetDate", Reason: err.Error()}
	}
	var bookings []models.Booking
	if err := s.db.Where("target_date = ?", day).Order("created_at").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *BookingStore) Get(id uuid.UUID) (models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, ErrNotFound
		}
		return models.Booking{}, err
	}
	return booking, nil
}

// UpdateStatus moves a booking between pending, confirmed and cancelled.
// Any of the three targets is allowed here (admin discretion), but walking a
// confirmed booking back to pending under-reports a commitment the customer
// was already emailed about, so reversals get their own audit line.
func (s *BookingStore) UpdateStatus(id uuid.UUID, newStatus string) (models.Booking, error) {
	switch newStatus {
	case models.BookingPending, models.BookingConfirmed, models.BookingCancelled:
	default:
		return models.Booking{}, &ValidationError{Field: "Status", Reason: "must be pending, confirmed or cancelled"}
	}

	booking, err := s.Get(id)
	if err != nil {
		return models.Booking{}, err
	}

	if booking.Status == models.BookingConfirmed && newStatus == models.BookingPending {
		log.Printf("⚠️ Reversal: booking %s (%s, %s) moved confirmed -> pending", booking.ID, booking.CustomerEmail, booking.TargetDate)
	}

	booking.Status = newStatus
	if err := s.db.Save(&booking).Error; err != nil {
		return models.Booking{}, err
	}
	return booking, nil
}

// Delete removes a booking outright. Unknown ids report false rather than
// an error.
func (s *BookingStore) Delete(id uuid.UUID) (bool, error) {
	result := s.db.Delete(&models.Booking{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
