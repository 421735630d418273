package errors

import "errors"

var (
	ErrNotFound = errors.New("bill not found")

	ErrInvalidID = errors.New("invalid bill ID format")

	ErrDuplicateBill = errors.New("bill already exists for booking")
)
