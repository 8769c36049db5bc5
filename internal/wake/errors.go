package wake

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch indicates a field array whose shape differs from the
	// axis lengths.
	ErrShapeMismatch = errors.New("wake: field shape does not match axes")

	// ErrAxis indicates an empty or non-increasing axis.
	ErrAxis = errors.New("wake: axis must be non-empty and strictly increasing")
)

// ShapeError reports which field disagreed with the axes.
type ShapeError struct {
	Field    string
	Rows     int
	Cols     int
	WantRows int
	WantCols int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("wake: %s has shape (%d,%d), axes require (%d,%d)",
		e.Field, e.Rows, e.Cols, e.WantRows, e.WantCols)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}
