package domain

import (
	"fmt"
	"strings"
)

// ColumnKind tags one board column with its role in the card lifecycle.
type ColumnKind string

// ColumnKind values.
const (
	ColumnKindInitial ColumnKind = "INITIAL"
	ColumnKindPending ColumnKind = "PENDING"
	ColumnKindFinal   ColumnKind = "FINAL"
	ColumnKindCancel  ColumnKind = "CANCEL"
)

// ColumnKinds lists every supported kind in lifecycle order.
var ColumnKinds = []ColumnKind{
	ColumnKindInitial,
	ColumnKindPending,
	ColumnKindFinal,
	ColumnKindCancel,
}

// ParseColumnKind parses a case-insensitive kind name.
func ParseColumnKind(raw string) (ColumnKind, error) {
	kind := ColumnKind(strings.ToUpper(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidColumnKind, raw)
	}
	return kind, nil
}

// Valid reports whether the kind is one of the supported values.
func (k ColumnKind) Valid() bool {
	switch k {
	case ColumnKindInitial, ColumnKindPending, ColumnKindFinal, ColumnKindCancel:
		return true
	default:
		return false
	}
}

// Terminal reports whether no workflow operation can leave a column of this kind.
func (k ColumnKind) Terminal() bool {
	switch k {
	case ColumnKindFinal, ColumnKindCancel:
		return true
	case ColumnKindInitial, ColumnKindPending:
		return false
	default:
		return false
	}
}

// String returns the stored kind name.
func (k ColumnKind) String() string {
	return string(k)
}
