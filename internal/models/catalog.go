package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Walker is a dog walker listed in the public catalog.
type Walker struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	City         string          `json:"city"`
	Bio          string          `json:"bio,omitempty"`
	Rating       float64         `json:"rating"`
	ReviewCount  int             `json:"review_count"`
	PricePerWalk decimal.Decimal `json:"price_per_walk"`
	Services     []string        `json:"services"`
	Availability []string        `json:"availability,omitempty"`
}

// WalkService is an entry in the service catalog.
type WalkService struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	DurationMin int             `json:"duration_minutes"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a walk booking placed through the public API.
type Booking struct {
	ID           uuid.UUID     `json:"id"`
	WalkerID     string        `json:"walker_id"`
	ServiceID    string        `json:"service_id"`
	Date         string        `json:"date"`
	TimeSlot     string        `json:"time_slot"`
	Status       BookingStatus `json:"status"`
	Notes        string        `json:"notes,omitempty"`
	ContactName  string        `json:"contact_name,omitempty"`
	ContactEmail string        `json:"contact_email,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Review is a published walker review.
type Review struct {
	ID        uuid.UUID `json:"id"`
	WalkerID  string    `json:"walker_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
