package app

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/hylla/cardflow/internal/domain"
)

// fakeRepo is an in-memory Repository whose transactions restore a snapshot on error.
type fakeRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex

	boards  map[int64]domain.Board
	columns map[int64]domain.Column
	cards   map[int64]domain.Card
	events  map[int64][]domain.BlockEvent
	nextID  int64

	// failOn makes the named method return the mapped error.
	failOn map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		boards:  map[int64]domain.Board{},
		columns: map[int64]domain.Column{},
		cards:   map[int64]domain.Card{},
		events:  map[int64][]domain.BlockEvent{},
		failOn:  map[string]error{},
	}
}

func (f *fakeRepo) fail(method string) error {
	return f.failOn[method]
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) CreateBoard(_ context.Context, b domain.Board, columns []domain.Column) (domain.Board, []domain.Column, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateBoard"); err != nil {
		return domain.Board{}, nil, err
	}
	b.ID = f.id()
	f.boards[b.ID] = b
	out := make([]domain.Column, 0, len(columns))
	for _, c := range columns {
		c.ID = f.id()
		c.BoardID = b.ID
		f.columns[c.ID] = c
		out = append(out, c)
	}
	return b, out, nil
}

func (f *fakeRepo) GetBoard(_ context.Context, id int64) (domain.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return domain.Board{}, ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) GetBoardByName(_ context.Context, name string) (domain.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetBoardByName"); err != nil {
		return domain.Board{}, err
	}
	for _, b := range f.boards {
		if b.Name == name {
			return b, nil
		}
	}
	return domain.Board{}, ErrNotFound
}

func (f *fakeRepo) ListBoards(_ context.Context) ([]domain.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Collect(maps.Values(f.boards))
	slices.SortFunc(out, func(a, b domain.Board) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeRepo) ListColumns(_ context.Context, boardID int64) ([]domain.Column, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Column{}
	for _, c := range f.columns {
		if c.BoardID == boardID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetColumn(_ context.Context, id int64) (domain.Column, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.columns[id]
	if !ok {
		return domain.Column{}, ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) CreateCard(_ context.Context, c domain.Card) (domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateCard"); err != nil {
		return domain.Card{}, err
	}
	c.ID = f.id()
	c.Version = 1
	f.cards[c.ID] = c
	return c, nil
}

func (f *fakeRepo) GetCard(_ context.Context, id int64) (domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cards[id]
	if !ok {
		return domain.Card{}, ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) UpdateCard(_ context.Context, c domain.Card) (domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateCard"); err != nil {
		return domain.Card{}, err
	}
	stored, ok := f.cards[c.ID]
	if !ok {
		return domain.Card{}, ErrNotFound
	}
	if stored.Version != c.Version {
		return domain.Card{}, ErrConflict
	}
	c.Version++
	f.cards[c.ID] = c
	return c, nil
}

func (f *fakeRepo) ListCardsByColumn(_ context.Context, columnID int64) ([]domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Card{}
	for _, c := range f.cards {
		if c.ColumnID == columnID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountCardsByColumn(_ context.Context, boardID int64) (map[int64]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]int{}
	for _, c := range f.cards {
		if c.BoardID == boardID {
			out[c.ColumnID]++
		}
	}
	return out, nil
}

func (f *fakeRepo) AppendBlockEvent(_ context.Context, e domain.BlockEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("AppendBlockEvent"); err != nil {
		return err
	}
	f.events[e.CardID] = append(f.events[e.CardID], e)
	return nil
}

func (f *fakeRepo) GetOpenBlockEvent(_ context.Context, cardID int64) (domain.BlockEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events[cardID] {
		if e.Open() {
			return e, nil
		}
	}
	return domain.BlockEvent{}, ErrNotFound
}

func (f *fakeRepo) CloseOpenBlockEvent(_ context.Context, cardID int64, reason string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CloseOpenBlockEvent"); err != nil {
		return err
	}
	events := f.events[cardID]
	for idx := range events {
		if events[idx].Open() {
			events[idx].UnblockReason = reason
			events[idx].UnblockedAt = &at
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) ListBlockEvents(_ context.Context, cardID int64) ([]domain.BlockEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.events[cardID]), nil
}

func (f *fakeRepo) WithinTx(_ context.Context, fn func(Repository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	cards := maps.Clone(f.cards)
	events := make(map[int64][]domain.BlockEvent, len(f.events))
	for id, list := range f.events {
		events[id] = slices.Clone(list)
	}
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.cards = cards
		f.events = events
		f.mu.Unlock()
		return err
	}
	return nil
}

// openEvents counts open block events of a card.
func (f *fakeRepo) openEvents(cardID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events[cardID] {
		if e.Open() {
			n++
		}
	}
	return n
}
