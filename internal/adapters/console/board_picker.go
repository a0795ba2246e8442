package console

import (
	"context"
	"fmt"
	"io"

	"github.com/hylla/cardflow/internal/domain"
)

// BoardLister lists the boards offered by the picker.
type BoardLister interface {
	ListBoards(context.Context) ([]domain.Board, error)
}

// BoardPicker lets the user select a board and runs its menu until exit.
type BoardPicker struct {
	boards BoardLister
	svc    Workflow
	menu   *BoardMenu
	render *Renderer
	log    Logger
}

// NewBoardPicker constructs a picker sharing one input stream with the board menus it opens.
func NewBoardPicker(boards BoardLister, svc Workflow, in io.Reader, out io.Writer, render *Renderer, logger Logger) *BoardPicker {
	menu := NewBoardMenu(svc, 0, in, out, render, logger)
	return &BoardPicker{
		boards: boards,
		svc:    svc,
		menu:   menu,
		render: menu.render,
		log:    menu.log,
	}
}

// Run alternates between the board list and the selected board's menu.
func (p *BoardPicker) Run(ctx context.Context) error {
	p.render.Heading("Welcome to cardflow!")
	for {
		boards, err := p.boards.ListBoards(ctx)
		if err != nil {
			return err
		}
		p.render.Boards(boards)
		p.render.Notice("Enter 0 to exit.")

		boardID, err := p.menu.readInt("Board id: ")
		if err != nil {
			_, err = endOfInput(err)
			return err
		}
		if boardID == 0 {
			p.render.Notice("Leaving. Bye!")
			return nil
		}
		if !containsBoard(boards, boardID) {
			p.render.Notice(fmt.Sprintf("board %d does not exist", boardID))
			continue
		}

		p.log.Info("board selected", "board_id", boardID)
		p.menu.boardID = boardID
		outcome, err := p.menu.Run(ctx)
		if err != nil {
			return err
		}
		if outcome == OutcomeExit {
			return nil
		}
	}
}

func containsBoard(boards []domain.Board, id int64) bool {
	for _, board := range boards {
		if board.ID == id {
			return true
		}
	}
	return false
}
