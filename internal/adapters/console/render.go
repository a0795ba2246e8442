package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/hylla/cardflow/internal/app"
	"github.com/hylla/cardflow/internal/domain"
)

// Options controls how the renderer decorates output.
// MarkdownStyle names a glamour standard style; empty means dark.
type Options struct {
	Styled        bool
	Markdown      bool
	WrapWidth     int
	MarkdownStyle string
}

// Renderer writes read models and outcomes as terminal text.
type Renderer struct {
	out      io.Writer
	opts     Options
	styles   styles
	markdown *markdownRenderer
}

// styles groups the lipgloss styles used by the renderer.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	blocked lipgloss.Style
	err     lipgloss.Style
}

func newStyles() styles {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Background(accent).Padding(0, 1),
		label:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		muted:   lipgloss.NewStyle().Foreground(muted),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		blocked: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		err:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}

// NewRenderer constructs a renderer writing to out.
func NewRenderer(out io.Writer, opts Options) *Renderer {
	if out == nil {
		out = io.Discard
	}
	return &Renderer{
		out:      out,
		opts:     opts,
		styles:   newStyles(),
		markdown: newMarkdownRenderer(opts),
	}
}

// paint applies style only when styling is enabled.
func (r *Renderer) paint(style lipgloss.Style, text string) string {
	if !r.opts.Styled {
		return text
	}
	return style.Render(text)
}

func (r *Renderer) println(text string) {
	_, _ = fmt.Fprintln(r.out, text)
}

func (r *Renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Heading writes a section title.
func (r *Renderer) Heading(text string) {
	r.println(r.paint(r.styles.title, text))
}

// Success writes a confirmation line.
func (r *Renderer) Success(text string) {
	r.println(r.paint(r.styles.success, text))
}

// Notice writes an informational line.
func (r *Renderer) Notice(text string) {
	r.println(r.paint(r.styles.muted, text))
}

// Error writes an error line.
func (r *Renderer) Error(err error) {
	if err == nil {
		return
	}
	r.println(r.paint(r.styles.err, "error: ") + err.Error())
}

// Boards writes the board list.
func (r *Renderer) Boards(boards []domain.Board) {
	if len(boards) == 0 {
		r.Notice("no boards")
		return
	}
	r.Heading("Boards")
	for _, board := range boards {
		r.printf("%s %s\n", r.paint(r.styles.label, fmt.Sprintf("[%d]", board.ID)), board.Name)
	}
}

// BoardSummary writes per-column card counts.
func (r *Renderer) BoardSummary(summary app.BoardSummary) {
	r.Heading(fmt.Sprintf("Board %d - %s", summary.ID, summary.Name))
	for _, column := range summary.Columns {
		r.printf("%s %s %s\n",
			r.paint(r.styles.label, fmt.Sprintf("[%d]", column.ID)),
			fmt.Sprintf("%s (%s)", column.Name, column.Kind),
			r.paint(r.styles.muted, cardsLabel(column.CardsAmount)),
		)
	}
}

// Columns writes a layout as a numbered column picker.
func (r *Renderer) Columns(layout domain.Layout) {
	for _, column := range layout.Columns() {
		r.printf("%s %s [%s]\n", r.paint(r.styles.label, fmt.Sprintf("%d -", column.ID)), column.Name, column.Kind)
	}
}

// ColumnDetail writes a column and its cards.
func (r *Renderer) ColumnDetail(detail app.ColumnDetail) {
	r.Heading(fmt.Sprintf("Column %s (%s)", detail.Name, detail.Kind))
	if len(detail.Cards) == 0 {
		r.Notice("no cards")
		return
	}
	for _, card := range detail.Cards {
		title := fmt.Sprintf("Card %d - %s", card.ID, card.Title)
		if card.Blocked {
			title += " " + r.paint(r.styles.blocked, "[blocked]")
		}
		r.println(r.paint(r.styles.label, title))
		r.println(r.description(card.Description))
	}
}

// CardDetail writes the full card view.
func (r *Renderer) CardDetail(detail app.CardDetail) {
	r.Heading(fmt.Sprintf("Card %d - %s", detail.ID, detail.Title))
	r.println(r.description(detail.Description))
	if detail.Blocked {
		r.println(r.paint(r.styles.blocked, "blocked: ") + detail.BlockReason)
	} else {
		r.println(r.paint(r.styles.muted, "not blocked"))
	}
	r.printf("%s %d\n", r.paint(r.styles.label, "times blocked:"), detail.BlocksAmount)
	r.printf("%s %d - %s\n", r.paint(r.styles.label, "column:"), detail.ColumnID, detail.ColumnName)
}

// CardNotFound reports a missing card id.
func (r *Renderer) CardNotFound(cardID int64) {
	r.Notice(fmt.Sprintf("card %d does not exist", cardID))
}

// BlockHistory writes a card's block events, oldest first.
func (r *Renderer) BlockHistory(cardID int64, events []domain.BlockEvent) {
	r.Heading(fmt.Sprintf("Block history of card %d", cardID))
	if len(events) == 0 {
		r.Notice("never blocked")
		return
	}
	for idx, event := range events {
		r.printf("%s blocked %s: %s\n", r.paint(r.styles.label, fmt.Sprintf("#%d", idx+1)), stamp(event.BlockedAt), event.BlockReason)
		if event.Open() {
			r.println("   " + r.paint(r.styles.blocked, "still blocked"))
			continue
		}
		r.printf("   unblocked %s: %s\n", stamp(*event.UnblockedAt), event.UnblockReason)
	}
}

// Card writes a one-line card confirmation.
func (r *Renderer) Card(verb string, card domain.Card) {
	r.Success(fmt.Sprintf("card %d %s (column %d)", card.ID, verb, card.ColumnID))
}

// description renders a card description as markdown when enabled.
func (r *Renderer) description(text string) string {
	if r.opts.Markdown {
		return r.markdown.render(text, r.opts.WrapWidth)
	}
	return strings.TrimSpace(text)
}

// cardsLabel pluralizes a card count.
func cardsLabel(n int) string {
	if n == 1 {
		return "1 card"
	}
	return fmt.Sprintf("%d cards", n)
}

// stamp formats an event timestamp.
func stamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
