package domain

import "errors"

// ErrInvalidID and related errors describe validation failures for domain values.
var (
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidTitle       = errors.New("invalid title")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidOrder       = errors.New("invalid column order")
	ErrInvalidColumnKind  = errors.New("invalid column kind")
	ErrInvalidColumnID    = errors.New("invalid column id")
)

// ErrCardBlocked and related errors describe workflow rule violations a user can recover from.
var (
	ErrCardBlocked      = errors.New("card is blocked")
	ErrAlreadyBlocked   = errors.New("card is already blocked")
	ErrNotBlocked       = errors.New("card is not blocked")
	ErrAlreadyFinished  = errors.New("card is already finished")
	ErrAlreadyCancelled = errors.New("card is already cancelled")
	ErrTerminalColumn   = errors.New("card is in a terminal column")
	ErrColumnNotFound   = errors.New("column not found in board layout")
)

// ErrMalformedLayout and ErrMalformedHistory mark board setup or history defects.
// They are not recoverable by re-prompting the user.
var (
	ErrMalformedLayout  = errors.New("malformed column layout")
	ErrMalformedHistory = errors.New("malformed block history")
)
