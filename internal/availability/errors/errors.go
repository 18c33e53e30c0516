package errors

import "errors"

var (
	ErrNotFound = errors.New("availability slot not found")

	ErrInvalidID = errors.New("invalid availability slot ID format")

	ErrStaffNotFound = errors.New("salon staff not found")
)
