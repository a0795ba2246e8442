package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hylla/cardflow/internal/app"
	"github.com/hylla/cardflow/internal/domain"
)

// Workflow is the engine surface the board menu drives.
type Workflow interface {
	LoadLayout(context.Context, int64) (domain.Layout, error)
	CreateCard(context.Context, int64, string, string) (domain.Card, error)
	MoveCardToNextColumn(context.Context, int64, domain.Layout) (domain.Card, error)
	BlockCard(context.Context, int64, string, domain.Layout) (domain.Card, error)
	UnblockCard(context.Context, int64, string) (domain.Card, error)
	CancelCard(context.Context, int64, int64, domain.Layout) (domain.Card, error)
	BoardSummary(context.Context, int64) (app.BoardSummary, bool, error)
	ColumnDetail(context.Context, int64) (app.ColumnDetail, bool, error)
	CardDetail(context.Context, int64) (app.CardDetail, bool, error)
}

// Logger receives menu action events.
type Logger interface {
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}

// Outcome reports how the menu loop ended.
type Outcome int

const (
	// OutcomeBack returns to the caller's board picker.
	OutcomeBack Outcome = iota
	// OutcomeExit ends the program.
	OutcomeExit
)

// menu option numbers.
const (
	optionCreate = iota + 1
	optionMove
	optionBlock
	optionUnblock
	optionCancel
	optionShowBoard
	optionShowColumn
	optionShowCard
	optionBack
	optionExit
)

var menuLines = []string{
	"1 - Create a card",
	"2 - Move a card to the next column",
	"3 - Block a card",
	"4 - Unblock a card",
	"5 - Cancel a card",
	"6 - Show board",
	"7 - Show column with cards",
	"8 - Show card",
	"9 - Back",
	"10 - Exit",
}

// BoardMenu is the interactive line-based menu for one board.
type BoardMenu struct {
	svc     Workflow
	boardID int64
	in      *bufio.Reader
	out     io.Writer
	render  *Renderer
	log     Logger
}

// NewBoardMenu constructs a menu reading from in and writing to out.
func NewBoardMenu(svc Workflow, boardID int64, in io.Reader, out io.Writer, render *Renderer, logger Logger) *BoardMenu {
	if render == nil {
		render = NewRenderer(out, Options{})
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &BoardMenu{
		svc:     svc,
		boardID: boardID,
		in:      bufio.NewReader(in),
		out:     out,
		render:  render,
		log:     logger,
	}
}

// Run loops over menu choices until back, exit, end of input, or a fatal error.
// Rule violations are printed and the loop continues.
func (m *BoardMenu) Run(ctx context.Context) (Outcome, error) {
	summary, found, err := m.svc.BoardSummary(ctx, m.boardID)
	if err != nil {
		return OutcomeExit, err
	}
	if !found {
		return OutcomeBack, fmt.Errorf("board %d: %w", m.boardID, app.ErrNotFound)
	}
	m.render.Heading(fmt.Sprintf("Welcome to board %s!", summary.Name))

	for {
		m.showMenu()
		option, err := m.readInt("Choose an option: ")
		if err != nil {
			return endOfInput(err)
		}

		var actionErr error
		switch option {
		case optionCreate:
			actionErr = m.createCard(ctx)
		case optionMove:
			actionErr = m.moveCard(ctx)
		case optionBlock:
			actionErr = m.blockCard(ctx)
		case optionUnblock:
			actionErr = m.unblockCard(ctx)
		case optionCancel:
			actionErr = m.cancelCard(ctx)
		case optionShowBoard:
			actionErr = m.showBoard(ctx)
		case optionShowColumn:
			actionErr = m.showColumn(ctx)
		case optionShowCard:
			actionErr = m.showCard(ctx)
		case optionBack:
			m.render.Notice("Returning to the previous menu...")
			return OutcomeBack, nil
		case optionExit:
			m.render.Notice("Leaving. Bye!")
			return OutcomeExit, nil
		default:
			m.render.Notice("Invalid option! Choose one of the listed options.")
			continue
		}

		if actionErr == nil {
			continue
		}
		if errors.Is(actionErr, io.EOF) {
			return OutcomeExit, nil
		}
		if app.IsFatal(actionErr) {
			m.log.Warn("board menu stopped on fatal error", "board_id", m.boardID, "option", option, "err", actionErr)
			return OutcomeExit, actionErr
		}
		m.log.Info("board menu action rejected", "board_id", m.boardID, "option", option, "err", actionErr)
		m.render.Error(actionErr)
	}
}

func (m *BoardMenu) showMenu() {
	_, _ = fmt.Fprintln(m.out)
	m.render.Heading("Board menu")
	for _, line := range menuLines {
		_, _ = fmt.Fprintln(m.out, line)
	}
}

func (m *BoardMenu) createCard(ctx context.Context) error {
	title, err := m.readString("Card title: ")
	if err != nil {
		return err
	}
	description, err := m.readString("Card description: ")
	if err != nil {
		return err
	}
	card, err := m.svc.CreateCard(ctx, m.boardID, title, description)
	if err != nil {
		return err
	}
	m.log.Info("card created", "board_id", m.boardID, "card_id", card.ID)
	m.render.Card("created", card)
	return nil
}

func (m *BoardMenu) moveCard(ctx context.Context) error {
	cardID, err := m.readInt("ID of the card to move: ")
	if err != nil {
		return err
	}
	layout, err := m.svc.LoadLayout(ctx, m.boardID)
	if err != nil {
		return err
	}
	card, err := m.svc.MoveCardToNextColumn(ctx, cardID, layout)
	if err != nil {
		return err
	}
	m.log.Info("card moved", "card_id", card.ID, "column_id", card.ColumnID)
	m.render.Card("moved", card)
	return nil
}

func (m *BoardMenu) blockCard(ctx context.Context) error {
	cardID, err := m.readInt("ID of the card to block: ")
	if err != nil {
		return err
	}
	reason, err := m.readString("Block reason: ")
	if err != nil {
		return err
	}
	layout, err := m.svc.LoadLayout(ctx, m.boardID)
	if err != nil {
		return err
	}
	card, err := m.svc.BlockCard(ctx, cardID, reason, layout)
	if err != nil {
		return err
	}
	m.log.Info("card blocked", "card_id", card.ID, "blocks", card.BlocksAmount)
	m.render.Card("blocked", card)
	return nil
}

func (m *BoardMenu) unblockCard(ctx context.Context) error {
	cardID, err := m.readInt("ID of the card to unblock: ")
	if err != nil {
		return err
	}
	reason, err := m.readString("Unblock reason: ")
	if err != nil {
		return err
	}
	card, err := m.svc.UnblockCard(ctx, cardID, reason)
	if err != nil {
		return err
	}
	m.log.Info("card unblocked", "card_id", card.ID)
	m.render.Card("unblocked", card)
	return nil
}

func (m *BoardMenu) cancelCard(ctx context.Context) error {
	cardID, err := m.readInt("ID of the card to cancel: ")
	if err != nil {
		return err
	}
	layout, err := m.svc.LoadLayout(ctx, m.boardID)
	if err != nil {
		return err
	}
	card, err := m.svc.CancelCard(ctx, cardID, layout.Cancel().ID, layout)
	if err != nil {
		return err
	}
	m.log.Info("card cancelled", "card_id", card.ID)
	m.render.Card("cancelled", card)
	return nil
}

func (m *BoardMenu) showBoard(ctx context.Context) error {
	summary, found, err := m.svc.BoardSummary(ctx, m.boardID)
	if err != nil {
		return err
	}
	if found {
		m.render.BoardSummary(summary)
	}
	return nil
}

// showColumn re-prompts until a column of this board is chosen.
func (m *BoardMenu) showColumn(ctx context.Context) error {
	layout, err := m.svc.LoadLayout(ctx, m.boardID)
	if err != nil {
		return err
	}
	var columnID int64
	for {
		m.render.Notice("Choose a column of this board by id:")
		m.render.Columns(layout)
		columnID, err = m.readInt("Column id: ")
		if err != nil {
			return err
		}
		if _, ok := layout.Column(columnID); ok {
			break
		}
	}
	detail, found, err := m.svc.ColumnDetail(ctx, columnID)
	if err != nil {
		return err
	}
	if found {
		m.render.ColumnDetail(detail)
	}
	return nil
}

func (m *BoardMenu) showCard(ctx context.Context) error {
	cardID, err := m.readInt("ID of the card to show: ")
	if err != nil {
		return err
	}
	detail, found, err := m.svc.CardDetail(ctx, cardID)
	if err != nil {
		return err
	}
	if !found {
		m.render.CardNotFound(cardID)
		return nil
	}
	m.render.CardDetail(detail)
	return nil
}

// readInt prompts until a whole number is entered.
func (m *BoardMenu) readInt(prompt string) (int64, error) {
	_, _ = fmt.Fprint(m.out, prompt)
	for {
		line, err := m.readLine()
		if err != nil {
			return 0, err
		}
		value, parseErr := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if parseErr == nil {
			return value, nil
		}
		_, _ = fmt.Fprint(m.out, "Invalid input! Enter a number: ")
	}
}

// readString prompts for one line of free text.
func (m *BoardMenu) readString(prompt string) (string, error) {
	_, _ = fmt.Fprint(m.out, prompt)
	return m.readLine()
}

// readLine returns the next line without its terminator.
// A final line without a newline is returned before io.EOF.
func (m *BoardMenu) readLine() (string, error) {
	line, err := m.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// endOfInput ends the loop quietly when input is exhausted.
func endOfInput(err error) (Outcome, error) {
	if errors.Is(err, io.EOF) {
		return OutcomeExit, nil
	}
	return OutcomeExit, err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
