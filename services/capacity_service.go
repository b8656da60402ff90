package services

import (
	config "github.com/brinebarrel/ramen_bookings/configs"
	"github.com/brinebarrel/ramen_bookings/models"
)

const (
	DefaultMinCapacity = 6
	DefaultMaxCapacity = 12
)

const (
	SlotOpen      = "open"
	SlotConfirmed = "confirmed"
	SlotFull      = "full"
)

// CapacityPolicy is the pure occupancy arithmetic for one date slot. It
// holds only the two thresholds; every answer is recomputed from the
// bookings passed in.
type CapacityPolicy struct {
	MinCapacity int
	MaxCapacity int
}

func DefaultCapacityPolicy() CapacityPolicy {
	return CapacityPolicy{MinCapacity: DefaultMinCapacity, MaxCapacity: DefaultMaxCapacity}
}

// CapacityPolicyFromEnv honours MIN_CAPACITY / MAX_CAPACITY overrides.
func CapacityPolicyFromEnv() CapacityPolicy {
	return CapacityPolicy{
		MinCapacity: config.ConfigInt("MIN_CAPACITY", DefaultMinCapacity),
		MaxCapacity: config.ConfigInt("MAX_CAPACITY", DefaultMaxCapacity),
	}
}

// Occupancy sums party sizes of pending and confirmed bookings. Cancelled
// bookings free their seats.
func (p CapacityPolicy) Occupancy(bookings []models.Booking) int {
	total := 0
	for i := range bookings {
		if bookings[i].Active() {
			total += bookings[i].PartySize
		}
	}
	return total
}

func (p CapacityPolicy) SlotStatus(bookings []models.Booking) string {
	occupancy := p.Occupancy(bookings)
	switch {
	case occupancy >= p.MaxCapacity:
		return SlotFull
	case occupancy >= p.MinCapacity:
		return SlotConfirmed
	default:
		return SlotOpen
	}
}

func (p CapacityPolicy) SpotsRemaining(bookings []models.Booking) int {
	remaining := p.MaxCapacity - p.Occupancy(bookings)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (p CapacityPolicy) MeetsConfirmationThreshold(bookings []models.Booking) bool {
	return p.Occupancy(bookings) >= p.MinCapacity
}
