package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// Layout is the validated, order-sorted column set of one board.
// A Layout is read-only; callers load a fresh one before each mutating call.
type Layout struct {
	boardID int64
	columns []Column
	initial int
	final   int
	cancel  int
}

// NewLayout validates columns and returns them as a layout sorted by order.
//
// A well-formed layout has exactly one INITIAL, one FINAL and one CANCEL column,
// unique non-negative orders, and a non-CANCEL chain INITIAL, PENDING*, FINAL
// whose orders are contiguous apart from the slot CANCEL may occupy inside it.
// The CANCEL column may sit anywhere in the order.
func NewLayout(boardID int64, columns []Column) (Layout, error) {
	sorted := slices.Clone(columns)
	slices.SortFunc(sorted, func(a, b Column) int {
		return cmp.Compare(a.Order, b.Order)
	})

	l := Layout{boardID: boardID, columns: sorted, initial: -1, final: -1, cancel: -1}
	seenOrder := map[int]struct{}{}
	seenID := map[int64]struct{}{}
	for idx, column := range sorted {
		if column.BoardID != boardID {
			return Layout{}, fmt.Errorf("%w: column %d belongs to board %d, not %d", ErrMalformedLayout, column.ID, column.BoardID, boardID)
		}
		if column.Order < 0 {
			return Layout{}, fmt.Errorf("%w: column %d has negative order %d", ErrMalformedLayout, column.ID, column.Order)
		}
		if _, ok := seenOrder[column.Order]; ok {
			return Layout{}, fmt.Errorf("%w: duplicate order %d", ErrMalformedLayout, column.Order)
		}
		seenOrder[column.Order] = struct{}{}
		if _, ok := seenID[column.ID]; ok {
			return Layout{}, fmt.Errorf("%w: duplicate column id %d", ErrMalformedLayout, column.ID)
		}
		seenID[column.ID] = struct{}{}

		switch column.Kind {
		case ColumnKindInitial:
			if l.initial >= 0 {
				return Layout{}, fmt.Errorf("%w: more than one INITIAL column", ErrMalformedLayout)
			}
			l.initial = idx
		case ColumnKindFinal:
			if l.final >= 0 {
				return Layout{}, fmt.Errorf("%w: more than one FINAL column", ErrMalformedLayout)
			}
			l.final = idx
		case ColumnKindCancel:
			if l.cancel >= 0 {
				return Layout{}, fmt.Errorf("%w: more than one CANCEL column", ErrMalformedLayout)
			}
			l.cancel = idx
		case ColumnKindPending:
		default:
			return Layout{}, fmt.Errorf("%w: column %d has kind %q", ErrMalformedLayout, column.ID, column.Kind)
		}
	}
	if l.initial < 0 || l.final < 0 || l.cancel < 0 {
		return Layout{}, fmt.Errorf("%w: INITIAL, FINAL and CANCEL columns are required", ErrMalformedLayout)
	}

	chain := l.chain()
	if chain[0].Kind != ColumnKindInitial {
		return Layout{}, fmt.Errorf("%w: INITIAL column must come first", ErrMalformedLayout)
	}
	if chain[len(chain)-1].Kind != ColumnKindFinal {
		return Layout{}, fmt.Errorf("%w: FINAL column must come last", ErrMalformedLayout)
	}
	cancelOrder := l.Cancel().Order
	for i := 1; i < len(chain); i++ {
		prev, cur := chain[i-1].Order, chain[i].Order
		// CANCEL may fill the single slot between two chain columns.
		if cur == prev+1 || (cur == prev+2 && cancelOrder == prev+1) {
			continue
		}
		return Layout{}, fmt.Errorf("%w: gap between orders %d and %d", ErrMalformedLayout, prev, cur)
	}
	return l, nil
}

// chain returns the non-CANCEL columns in order.
func (l Layout) chain() []Column {
	out := make([]Column, 0, len(l.columns))
	for _, column := range l.columns {
		if column.Kind != ColumnKindCancel {
			out = append(out, column)
		}
	}
	return out
}

// BoardID returns the board the layout belongs to.
func (l Layout) BoardID() int64 {
	return l.boardID
}

// Columns returns a copy of the columns sorted by order.
func (l Layout) Columns() []Column {
	return slices.Clone(l.columns)
}

// Len returns the number of columns.
func (l Layout) Len() int {
	return len(l.columns)
}

// Column finds a column by id.
func (l Layout) Column(id int64) (Column, bool) {
	for _, column := range l.columns {
		if column.ID == id {
			return column, true
		}
	}
	return Column{}, false
}

// Initial returns the only valid starting column for new cards.
func (l Layout) Initial() Column {
	return l.columns[l.initial]
}

// Final returns the terminal FINAL column.
func (l Layout) Final() Column {
	return l.columns[l.final]
}

// Cancel returns the CANCEL column.
func (l Layout) Cancel() Column {
	return l.columns[l.cancel]
}

// Next returns the column with the smallest order strictly greater than the
// order of the given column, ignoring the CANCEL column.
func (l Layout) Next(currentID int64) (Column, bool) {
	current, ok := l.Column(currentID)
	if !ok {
		return Column{}, false
	}
	var (
		next  Column
		found bool
	)
	for _, column := range l.columns {
		if column.Kind == ColumnKindCancel || column.Order <= current.Order {
			continue
		}
		if !found || column.Order < next.Order {
			next = column
			found = true
		}
	}
	return next, found
}
