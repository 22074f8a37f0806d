package tsp

import "errors"

var (
	// ErrNoCities is returned when the solver is built with an empty city list.
	ErrNoCities = errors.New("tsp: city list must not be empty")

	// ErrDimensionMismatch is returned when the distance matrix dimensions do
	// not match the number of city names.
	ErrDimensionMismatch = errors.New("tsp: distance matrix dimensions inconsistent with city count")

	// ErrStartOutOfRange is returned when the start index does not address a city.
	ErrStartOutOfRange = errors.New("tsp: start city index out of range")
)
