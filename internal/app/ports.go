package app

import (
	"context"
	"time"

	"github.com/hylla/cardflow/internal/domain"
)

// Repository is the persistence gateway the workflow engine depends on.
// Lookups of missing records return ErrNotFound.
type Repository interface {
	CreateBoard(context.Context, domain.Board, []domain.Column) (domain.Board, []domain.Column, error)
	GetBoard(context.Context, int64) (domain.Board, error)
	GetBoardByName(context.Context, string) (domain.Board, error)
	ListBoards(context.Context) ([]domain.Board, error)
	ListColumns(context.Context, int64) ([]domain.Column, error)
	GetColumn(context.Context, int64) (domain.Column, error)

	CreateCard(context.Context, domain.Card) (domain.Card, error)
	GetCard(context.Context, int64) (domain.Card, error)
	// UpdateCard stores the card only if its Version still matches the stored
	// version, returning ErrConflict otherwise, and returns it with the next version.
	UpdateCard(context.Context, domain.Card) (domain.Card, error)
	ListCardsByColumn(context.Context, int64) ([]domain.Card, error)
	CountCardsByColumn(context.Context, int64) (map[int64]int, error)

	AppendBlockEvent(context.Context, domain.BlockEvent) error
	GetOpenBlockEvent(context.Context, int64) (domain.BlockEvent, error)
	CloseOpenBlockEvent(context.Context, int64, string, time.Time) error
	ListBlockEvents(context.Context, int64) ([]domain.BlockEvent, error)

	// WithinTx runs fn against a repository whose writes commit together or not at all.
	WithinTx(context.Context, func(Repository) error) error
}
