package errors

import (
	"errors"
	"suitespot/pkg/daterange"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrListingNotFound = errors.New("listing not found")

	ErrInvalidRange = daterange.ErrInvalidRange

	ErrGuestConflict = errors.New("guest already holds an overlapping booking")

	ErrListingConflict = errors.New("listing already booked for an overlapping range")

	ErrLockHeld = errors.New("booking lock is held by another request")

	ErrLockTimeout = errors.New("timed out waiting for booking lock")

	ErrInvalidTransition = errors.New("booking status transition not allowed")

	ErrStatusChanged = errors.New("booking status changed concurrently")
)
