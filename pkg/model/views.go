package model

// BookingView is a booking composed with the listing it belongs to and its bill.
// Listing or Bill stay nil when the referenced document no longer exists.
type BookingView struct {
	Booking *Booking `json:"booking"`
	Listing *Listing `json:"listing,omitempty"`
	Bill    *Bill    `json:"bill,omitempty"`
}
