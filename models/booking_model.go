package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking is one customer's reservation against a ramen-night date slot.
// TargetDate is always the canonical calendar day ("2006-01-02"); the date
// slot itself is never stored, it is recomputed from the bookings sharing
// that day.
type Booking struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CustomerName  string    `gorm:"size:255;not null" json:"customerName"`
	CustomerEmail string    `gorm:"size:255;not null" json:"customerEmail"`
	CustomerPhone string    `gorm:"size:40" json:"customerPhone,omitempty"`
	TargetDate    string    `gorm:"size:10;not null;index" json:"targetDate"`
	PartySize     int       `gorm:"not null;default:1" json:"partySize"`
	Status        string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Active reports whether the booking counts toward occupancy.
func (b *Booking) Active() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}
