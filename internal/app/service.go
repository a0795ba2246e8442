package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/cardflow/internal/domain"
)

// IDGenerator returns unique identifiers for new block events.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// BoardTemplate describes a board to provision with the standard column chain.
type BoardTemplate struct {
	Name    string
	Initial string
	Pending []string
	Final   string
	Cancel  string
}

// Service is the card workflow engine.
type Service struct {
	repo  Repository
	idGen IDGenerator
	clock Clock
	locks *cardLocks
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock) *Service {
	if idGen == nil {
		idGen = uuid.NewString
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:  repo,
		idGen: idGen,
		clock: clock,
		locks: newCardLocks(),
	}
}

// EnsureBoards creates every templated board that does not exist yet, matched by name.
// Existing boards are returned as stored and never modified.
func (s *Service) EnsureBoards(ctx context.Context, templates []BoardTemplate) ([]domain.Board, error) {
	out := make([]domain.Board, 0, len(templates))
	for _, tpl := range templates {
		name := strings.TrimSpace(tpl.Name)
		existing, err := s.repo.GetBoardByName(ctx, name)
		if err == nil {
			out = append(out, existing)
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		now := s.clock()
		board, err := domain.NewBoard(name, now)
		if err != nil {
			return nil, fmt.Errorf("board template %q: %w", tpl.Name, err)
		}
		columns, err := domain.StandardColumns(0, tpl.Initial, tpl.Pending, tpl.Final, tpl.Cancel, now)
		if err != nil {
			return nil, fmt.Errorf("board template %q columns: %w", tpl.Name, err)
		}
		board, _, err = s.repo.CreateBoard(ctx, board, columns)
		if err != nil {
			return nil, fmt.Errorf("persist board %q: %w", name, err)
		}
		out = append(out, board)
	}
	return out, nil
}

// LoadLayout loads and validates the column layout of a board.
func (s *Service) LoadLayout(ctx context.Context, boardID int64) (domain.Layout, error) {
	if _, err := s.repo.GetBoard(ctx, boardID); err != nil {
		return domain.Layout{}, notFound("board", boardID, err)
	}
	columns, err := s.repo.ListColumns(ctx, boardID)
	if err != nil {
		return domain.Layout{}, err
	}
	return domain.NewLayout(boardID, columns)
}

// LayoutForCard loads the current layout of the board a card belongs to.
func (s *Service) LayoutForCard(ctx context.Context, cardID int64) (domain.Layout, error) {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return domain.Layout{}, notFound("card", cardID, err)
	}
	return s.LoadLayout(ctx, card.BoardID)
}

// CreateCard creates a card in the initial column of a board.
func (s *Service) CreateCard(ctx context.Context, boardID int64, title, description string) (domain.Card, error) {
	layout, err := s.LoadLayout(ctx, boardID)
	if err != nil {
		return domain.Card{}, err
	}
	card, err := domain.NewCard(domain.CardInput{
		BoardID:     boardID,
		ColumnID:    layout.Initial().ID,
		Title:       title,
		Description: description,
	}, s.clock())
	if err != nil {
		return domain.Card{}, err
	}
	return s.repo.CreateCard(ctx, card)
}

// MoveCardToNextColumn advances a card one column along its board.
func (s *Service) MoveCardToNextColumn(ctx context.Context, cardID int64, layout domain.Layout) (domain.Card, error) {
	return s.mutateCard(ctx, cardID, func(tx Repository, card domain.Card) (domain.Card, error) {
		next, err := domain.Advance(card, layout, s.clock())
		if err != nil {
			return domain.Card{}, err
		}
		return tx.UpdateCard(ctx, next)
	})
}

// BlockCard blocks a live card and opens a block event for it.
func (s *Service) BlockCard(ctx context.Context, cardID int64, reason string, layout domain.Layout) (domain.Card, error) {
	return s.mutateCard(ctx, cardID, func(tx Repository, card domain.Card) (domain.Card, error) {
		blocked, event, err := domain.Block(card, s.idGen, reason, layout, s.clock())
		if err != nil {
			return domain.Card{}, err
		}
		stored, err := tx.UpdateCard(ctx, blocked)
		if err != nil {
			return domain.Card{}, err
		}
		if err := tx.AppendBlockEvent(ctx, event); err != nil {
			return domain.Card{}, err
		}
		return stored, nil
	})
}

// UnblockCard unblocks a card and closes its open block event.
func (s *Service) UnblockCard(ctx context.Context, cardID int64, reason string) (domain.Card, error) {
	return s.mutateCard(ctx, cardID, func(tx Repository, card domain.Card) (domain.Card, error) {
		var open domain.BlockEvent
		if card.Blocked {
			var err error
			open, err = tx.GetOpenBlockEvent(ctx, card.ID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return domain.Card{}, err
			}
		}
		unblocked, closed, err := domain.Unblock(card, open, reason, s.clock())
		if err != nil {
			return domain.Card{}, err
		}
		stored, err := tx.UpdateCard(ctx, unblocked)
		if err != nil {
			return domain.Card{}, err
		}
		if err := tx.CloseOpenBlockEvent(ctx, card.ID, closed.UnblockReason, *closed.UnblockedAt); err != nil {
			return domain.Card{}, err
		}
		return stored, nil
	})
}

// CancelCard moves a live card directly to the board's cancel column.
func (s *Service) CancelCard(ctx context.Context, cardID, cancelColumnID int64, layout domain.Layout) (domain.Card, error) {
	return s.mutateCard(ctx, cardID, func(tx Repository, card domain.Card) (domain.Card, error) {
		cancelled, err := domain.Cancel(card, cancelColumnID, layout, s.clock())
		if err != nil {
			return domain.Card{}, err
		}
		return tx.UpdateCard(ctx, cancelled)
	})
}

// mutateCard runs one workflow step under the card's lock inside a single transaction.
func (s *Service) mutateCard(ctx context.Context, cardID int64, step func(Repository, domain.Card) (domain.Card, error)) (domain.Card, error) {
	if cardID <= 0 {
		return domain.Card{}, domain.ErrInvalidID
	}
	release := s.locks.lock(cardID)
	defer release()

	var out domain.Card
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		card, err := tx.GetCard(ctx, cardID)
		if err != nil {
			return notFound("card", cardID, err)
		}
		out, err = step(tx, card)
		return err
	})
	if err != nil {
		return domain.Card{}, err
	}
	return out, nil
}

// notFound names the missing record when err is ErrNotFound and returns other errors unchanged.
func notFound(what string, id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, err)
	}
	return err
}
