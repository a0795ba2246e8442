package domain

import (
	"strings"
	"time"
)

// Card represents one unit of work moving through a board.
type Card struct {
	ID           int64
	BoardID      int64
	ColumnID     int64
	Title        string
	Description  string
	Blocked      bool
	BlockReason  string
	BlocksAmount int
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CardInput holds the values needed to construct a new card.
type CardInput struct {
	BoardID     int64
	ColumnID    int64
	Title       string
	Description string
}

// NewCard constructs an unblocked card that has not been persisted yet.
func NewCard(in CardInput, now time.Time) (Card, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.BoardID <= 0 {
		return Card{}, ErrInvalidID
	}
	if in.ColumnID <= 0 {
		return Card{}, ErrInvalidColumnID
	}
	if in.Title == "" {
		return Card{}, ErrInvalidTitle
	}
	if in.Description == "" {
		return Card{}, ErrInvalidDescription
	}

	return Card{
		BoardID:     in.BoardID,
		ColumnID:    in.ColumnID,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// moveTo sets the current column.
func (c *Card) moveTo(columnID int64, now time.Time) {
	c.ColumnID = columnID
	c.UpdatedAt = now.UTC()
}

// block marks the card blocked and counts the block.
func (c *Card) block(reason string, now time.Time) {
	c.Blocked = true
	c.BlockReason = reason
	c.BlocksAmount++
	c.UpdatedAt = now.UTC()
}

// unblock clears the block flag and reason.
func (c *Card) unblock(now time.Time) {
	c.Blocked = false
	c.BlockReason = ""
	c.UpdatedAt = now.UTC()
}
