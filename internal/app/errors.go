package app

import (
	"errors"

	"github.com/hylla/cardflow/internal/domain"
)

// ErrNotFound and related errors describe persistence gateway failures.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("card was modified concurrently")
)

// IsFatal reports whether err signals a board setup or data defect rather than
// a rule violation the user can fix by choosing differently.
func IsFatal(err error) bool {
	return errors.Is(err, domain.ErrMalformedLayout) || errors.Is(err, domain.ErrMalformedHistory)
}
