package model

import (
	"suitespot/pkg/daterange"
	"time"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ListingID  string    `json:"listing_id" bson:"listing_id" validate:"required,mongodb"`
	GuestID    string    `json:"guest_id" bson:"guest_id" validate:"required"`
	StartDate  time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	TotalPrice float64   `json:"total_price" bson:"total_price" validate:"min=0"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (b *Booking) Range() daterange.DateRange {
	return daterange.DateRange{Start: b.StartDate, End: b.EndDate}
}

// AdmissionRequest is what a guest submits to book a listing.
// GuestID comes from the caller's identity, never from the request body.
type AdmissionRequest struct {
	ListingID string    `json:"listing_id" validate:"required,mongodb"`
	GuestID   string    `json:"-" validate:"required"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type Admission struct {
	Booking *Booking `json:"booking"`
	Bill    *Bill    `json:"bill"`
}

type BookingStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled"`
}
