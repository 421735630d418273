package model

import "time"

// BookingLock is an advisory lock document. Its ID names the locked resource
// (a listing or a guest) and Owner identifies the request holding it.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
