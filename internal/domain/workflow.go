package domain

import (
	"fmt"
	"strings"
	"time"
)

// Advance moves a card to the next column of its board.
//
// The card is returned unchanged with an error when it is blocked, when its
// column is missing from the layout, or when it already sits in a terminal column.
func Advance(card Card, layout Layout, now time.Time) (Card, error) {
	if card.Blocked {
		return card, blockedErr(card)
	}
	current, err := currentColumn(card, layout)
	if err != nil {
		return card, err
	}
	switch current.Kind {
	case ColumnKindFinal:
		return card, ErrAlreadyFinished
	case ColumnKindCancel:
		return card, ErrAlreadyCancelled
	case ColumnKindInitial, ColumnKindPending:
	default:
		return card, fmt.Errorf("%w: column %d has kind %q", ErrMalformedLayout, current.ID, current.Kind)
	}

	next, ok := layout.Next(current.ID)
	if !ok {
		return card, fmt.Errorf("%w: no column after %q (order %d)", ErrMalformedLayout, current.Name, current.Order)
	}
	card.moveTo(next.ID, now)
	return card, nil
}

// Block marks a live card blocked and opens the block event that records it.
// newID is called only once the card is allowed to block.
func Block(card Card, newID func() string, reason string, layout Layout, now time.Time) (Card, BlockEvent, error) {
	if card.Blocked {
		return card, BlockEvent{}, ErrAlreadyBlocked
	}
	current, err := currentColumn(card, layout)
	if err != nil {
		return card, BlockEvent{}, err
	}
	switch current.Kind {
	case ColumnKindFinal, ColumnKindCancel:
		return card, BlockEvent{}, fmt.Errorf("%w: %s column %q", ErrTerminalColumn, current.Kind, current.Name)
	case ColumnKindInitial, ColumnKindPending:
	default:
		return card, BlockEvent{}, fmt.Errorf("%w: column %d has kind %q", ErrMalformedLayout, current.ID, current.Kind)
	}

	event, err := newBlockEvent(newID(), card.ID, reason, now)
	if err != nil {
		return card, BlockEvent{}, err
	}
	card.block(reason, now)
	return card, event, nil
}

// Unblock clears the block on a card and closes its open block event.
// open must be the card's currently open event.
func Unblock(card Card, open BlockEvent, reason string, now time.Time) (Card, BlockEvent, error) {
	if !card.Blocked {
		return card, BlockEvent{}, ErrNotBlocked
	}
	if open.CardID != card.ID || !open.Open() {
		return card, BlockEvent{}, fmt.Errorf("%w: card %d is blocked without an open block event", ErrMalformedHistory, card.ID)
	}
	open.close(reason, now)
	card.unblock(now)
	return card, open, nil
}

// Cancel moves a live card straight to the cancel column, skipping column order.
func Cancel(card Card, cancelColumnID int64, layout Layout, now time.Time) (Card, error) {
	if card.Blocked {
		return card, blockedErr(card)
	}
	current, err := currentColumn(card, layout)
	if err != nil {
		return card, err
	}
	switch current.Kind {
	case ColumnKindFinal:
		return card, ErrAlreadyFinished
	case ColumnKindCancel:
		return card, ErrAlreadyCancelled
	case ColumnKindInitial, ColumnKindPending:
	default:
		return card, fmt.Errorf("%w: column %d has kind %q", ErrMalformedLayout, current.ID, current.Kind)
	}

	target, ok := layout.Column(cancelColumnID)
	if !ok || target.Kind != ColumnKindCancel {
		return card, fmt.Errorf("%w: column %d is not the cancel column of board %d", ErrColumnNotFound, cancelColumnID, layout.BoardID())
	}
	card.moveTo(target.ID, now)
	return card, nil
}

// currentColumn resolves the card's column within the layout.
func currentColumn(card Card, layout Layout) (Column, error) {
	if card.BoardID != layout.BoardID() {
		return Column{}, fmt.Errorf("%w: card %d belongs to board %d, layout is for board %d", ErrColumnNotFound, card.ID, card.BoardID, layout.BoardID())
	}
	column, ok := layout.Column(card.ColumnID)
	if !ok {
		return Column{}, fmt.Errorf("%w: column %d of card %d", ErrColumnNotFound, card.ColumnID, card.ID)
	}
	return column, nil
}

// blockedErr wraps ErrCardBlocked with the block reason.
func blockedErr(card Card) error {
	reason := strings.TrimSpace(card.BlockReason)
	if reason == "" {
		return fmt.Errorf("%w: card %d", ErrCardBlocked, card.ID)
	}
	return fmt.Errorf("%w: %s", ErrCardBlocked, reason)
}
