package domain

import (
	"strings"
	"time"
)

// Column represents one stage of a board.
type Column struct {
	ID        int64
	BoardID   int64
	Name      string
	Order     int
	Kind      ColumnKind
	CreatedAt time.Time
}

// NewColumn constructs a column that has not been persisted yet.
func NewColumn(boardID int64, name string, order int, kind ColumnKind, now time.Time) (Column, error) {
	name = strings.TrimSpace(name)
	if boardID < 0 {
		return Column{}, ErrInvalidID
	}
	if name == "" {
		return Column{}, ErrInvalidName
	}
	if order < 0 {
		return Column{}, ErrInvalidOrder
	}
	if !kind.Valid() {
		return Column{}, ErrInvalidColumnKind
	}

	return Column{
		BoardID:   boardID,
		Name:      name,
		Order:     order,
		Kind:      kind,
		CreatedAt: now.UTC(),
	}, nil
}

// Board represents a named collection of ordered columns.
type Board struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// NewBoard constructs a board that has not been persisted yet.
func NewBoard(name string, now time.Time) (Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Board{}, ErrInvalidName
	}
	return Board{
		Name:      name,
		CreatedAt: now.UTC(),
	}, nil
}

// StandardColumns builds the column set used for new boards: one initial column,
// the pending columns in the given order, one final column and one cancel column.
func StandardColumns(boardID int64, initial string, pending []string, final, cancel string, now time.Time) ([]Column, error) {
	out := make([]Column, 0, len(pending)+3)
	add := func(name string, kind ColumnKind) error {
		column, err := NewColumn(boardID, name, len(out), kind, now)
		if err != nil {
			return err
		}
		out = append(out, column)
		return nil
	}

	if err := add(initial, ColumnKindInitial); err != nil {
		return nil, err
	}
	for _, name := range pending {
		if err := add(name, ColumnKindPending); err != nil {
			return nil, err
		}
	}
	if err := add(final, ColumnKindFinal); err != nil {
		return nil, err
	}
	if err := add(cancel, ColumnKindCancel); err != nil {
		return nil, err
	}
	return out, nil
}
