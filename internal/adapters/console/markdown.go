package console

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// minWrapWidth keeps very narrow settings readable.
const minWrapWidth = 24

// markdownRenderer renders card descriptions with one glamour style.
// The glamour renderer is built lazily and rebuilt when the wrap width changes.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// newMarkdownRenderer picks the glamour style named in opts.
func newMarkdownRenderer(opts Options) *markdownRenderer {
	style := strings.ToLower(strings.TrimSpace(opts.MarkdownStyle))
	return &markdownRenderer{style: cmp.Or(style, glamourstyles.DarkStyle)}
}

// render converts markdown into terminal text, falling back to the raw input on failure.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	renderer, err := r.rendererFor(max(width, minWrapWidth))
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(rendered, "\n")
}

// rendererFor returns the cached glamour renderer for wrapWidth.
func (r *markdownRenderer) rendererFor(wrapWidth int) (*glamour.TermRenderer, error) {
	if r.renderer != nil && r.width == wrapWidth {
		return r.renderer, nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(cmp.Or(r.style, glamourstyles.DarkStyle)),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return nil, err
	}
	r.renderer, r.width = renderer, wrapWidth
	return renderer, nil
}
