package gravity

import "errors"

// Domain errors for solver operations.
var (
	// ErrInvalidBody indicates a non-positive or non-finite mass, or a
	// non-finite position or velocity.
	ErrInvalidBody = errors.New("gravity: invalid body")

	// ErrInvalidDuration indicates a NaN or infinite preview duration.
	ErrInvalidDuration = errors.New("gravity: invalid duration")
)
