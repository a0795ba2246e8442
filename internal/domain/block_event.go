package domain

import (
	"strings"
	"time"
)

// BlockEvent records one block/unblock cycle of a card.
type BlockEvent struct {
	ID            string
	CardID        int64
	BlockReason   string
	BlockedAt     time.Time
	UnblockReason string
	UnblockedAt   *time.Time
}

// Open reports whether the card has not been unblocked since this event.
func (e BlockEvent) Open() bool {
	return e.UnblockedAt == nil
}

// newBlockEvent opens a block event for a card.
func newBlockEvent(id string, cardID int64, reason string, now time.Time) (BlockEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" || cardID <= 0 {
		return BlockEvent{}, ErrInvalidID
	}
	return BlockEvent{
		ID:          id,
		CardID:      cardID,
		BlockReason: reason,
		BlockedAt:   now.UTC(),
	}, nil
}

// close fills the unblock side of an open event.
func (e *BlockEvent) close(reason string, now time.Time) {
	ts := now.UTC()
	e.UnblockReason = reason
	e.UnblockedAt = &ts
}
