package model

import "time"

const (
	ListingPending  = "pending"
	ListingApproved = "approved"
	ListingRejected = "rejected"
)

type Listing struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title       string    `json:"title" bson:"title" validate:"required,min=2,max=120"`
	Description string    `json:"description" bson:"description" validate:"required,max=2000"`
	Location    string    `json:"location" bson:"location" validate:"required,min=2,max=200"`
	Country     string    `json:"country" bson:"country" validate:"required,min=2,max=100"`
	Price       float64   `json:"price" bson:"price" validate:"min=0"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=100"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=pending approved rejected"`
	OwnerID     string    `json:"owner_id" bson:"owner_id" validate:"required"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ListingStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}
