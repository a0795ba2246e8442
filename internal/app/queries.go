package app

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/hylla/cardflow/internal/domain"
)

// BoardSummary is the board overview read model.
type BoardSummary struct {
	ID      int64
	Name    string
	Columns []ColumnSummary
}

// ColumnSummary counts the cards in one column.
type ColumnSummary struct {
	ID          int64
	Name        string
	Kind        domain.ColumnKind
	Order       int
	CardsAmount int
}

// ColumnDetail lists the cards of one column.
type ColumnDetail struct {
	ID      int64
	BoardID int64
	Name    string
	Kind    domain.ColumnKind
	Cards   []CardSummary
}

// CardSummary is the card line shown inside a column.
type CardSummary struct {
	ID          int64
	Title       string
	Description string
	Blocked     bool
}

// CardDetail is the full card read model.
type CardDetail struct {
	ID           int64
	BoardID      int64
	Title        string
	Description  string
	Blocked      bool
	BlockReason  string
	BlocksAmount int
	ColumnID     int64
	ColumnName   string
	ColumnKind   domain.ColumnKind
}

// ListBoards lists boards in creation order.
func (s *Service) ListBoards(ctx context.Context) ([]domain.Board, error) {
	return s.repo.ListBoards(ctx)
}

// BoardSummary returns per-column card counts for a board.
// A missing board yields found == false and no error.
func (s *Service) BoardSummary(ctx context.Context, boardID int64) (BoardSummary, bool, error) {
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return absent[BoardSummary](err)
	}
	columns, err := s.repo.ListColumns(ctx, boardID)
	if err != nil {
		return BoardSummary{}, false, err
	}
	counts, err := s.repo.CountCardsByColumn(ctx, boardID)
	if err != nil {
		return BoardSummary{}, false, err
	}
	sortColumns(columns)

	out := BoardSummary{
		ID:      board.ID,
		Name:    board.Name,
		Columns: make([]ColumnSummary, 0, len(columns)),
	}
	for _, column := range columns {
		out.Columns = append(out.Columns, ColumnSummary{
			ID:          column.ID,
			Name:        column.Name,
			Kind:        column.Kind,
			Order:       column.Order,
			CardsAmount: counts[column.ID],
		})
	}
	return out, true, nil
}

// ColumnDetail returns a column with its cards ordered by id.
// A missing column yields found == false and no error.
func (s *Service) ColumnDetail(ctx context.Context, columnID int64) (ColumnDetail, bool, error) {
	column, err := s.repo.GetColumn(ctx, columnID)
	if err != nil {
		return absent[ColumnDetail](err)
	}
	cards, err := s.repo.ListCardsByColumn(ctx, columnID)
	if err != nil {
		return ColumnDetail{}, false, err
	}
	slices.SortFunc(cards, func(a, b domain.Card) int {
		return cmp.Compare(a.ID, b.ID)
	})

	out := ColumnDetail{
		ID:      column.ID,
		BoardID: column.BoardID,
		Name:    column.Name,
		Kind:    column.Kind,
		Cards:   make([]CardSummary, 0, len(cards)),
	}
	for _, card := range cards {
		out.Cards = append(out.Cards, CardSummary{
			ID:          card.ID,
			Title:       card.Title,
			Description: card.Description,
			Blocked:     card.Blocked,
		})
	}
	return out, true, nil
}

// CardDetail returns a card with its current column.
// A missing card yields found == false and no error.
func (s *Service) CardDetail(ctx context.Context, cardID int64) (CardDetail, bool, error) {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return absent[CardDetail](err)
	}
	column, err := s.repo.GetColumn(ctx, card.ColumnID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return CardDetail{}, false, err
	}
	return CardDetail{
		ID:           card.ID,
		BoardID:      card.BoardID,
		Title:        card.Title,
		Description:  card.Description,
		Blocked:      card.Blocked,
		BlockReason:  card.BlockReason,
		BlocksAmount: card.BlocksAmount,
		ColumnID:     card.ColumnID,
		ColumnName:   column.Name,
		ColumnKind:   column.Kind,
	}, true, nil
}

// CardBlockHistory lists a card's block events, oldest first.
// A missing card yields found == false and no error.
func (s *Service) CardBlockHistory(ctx context.Context, cardID int64) ([]domain.BlockEvent, bool, error) {
	if _, err := s.repo.GetCard(ctx, cardID); err != nil {
		return absent[[]domain.BlockEvent](err)
	}
	events, err := s.repo.ListBlockEvents(ctx, cardID)
	if err != nil {
		return nil, false, err
	}
	slices.SortStableFunc(events, func(a, b domain.BlockEvent) int {
		return a.BlockedAt.Compare(b.BlockedAt)
	})
	return events, true, nil
}

// absent maps ErrNotFound to an empty, not-found result.
func absent[T any](err error) (T, bool, error) {
	var zero T
	if errors.Is(err, ErrNotFound) {
		return zero, false, nil
	}
	return zero, false, err
}

// sortColumns orders columns by their board order.
func sortColumns(columns []domain.Column) {
	slices.SortFunc(columns, func(a, b domain.Column) int {
		return cmp.Compare(a.Order, b.Order)
	})
}
