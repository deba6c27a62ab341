package model

import "errors"

var (
	// ErrInvalidConfig is returned when a configuration violates its bounds.
	// The previous configuration stays in effect.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidFloor is returned when a floor lies outside [0, floorCount-1].
	ErrInvalidFloor = errors.New("invalid floor")
	// ErrInvalidDirection is returned when a floor call carries a direction other than UP or DOWN.
	ErrInvalidDirection = errors.New("invalid direction")
)
