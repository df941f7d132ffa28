package sim

import "errors"

// Engine error kinds. Every mutating operation either fully commits or
// returns one of these and leaves the city untouched.
var (
	ErrOutOfBounds       = errors.New("out of bounds")
	ErrOccupied          = errors.New("occupied")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidType       = errors.New("invalid type")
	ErrInvalidState      = errors.New("invalid state")
)
