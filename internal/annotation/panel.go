package annotation

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// DefaultPanelWidth is the wrap width of the detail panel in cells.
const DefaultPanelWidth = 36

// Panel is the detail popup for the focused indicator. It holds a weak
// reference to that indicator; hiding the panel never touches it.
type Panel struct {
	maxWidth int

	heading string
	body    string
	lines   []string
	width   int

	visible bool
	anchor  Vec2
	focus   *Indicator
}

// NewPanel returns a hidden panel wrapping text at maxWidth cells.
func NewPanel(maxWidth int) *Panel {
	if maxWidth <= 0 {
		maxWidth = DefaultPanelWidth
	}
	return &Panel{maxWidth: maxWidth}
}

// Show sets the text, lays it out and makes the panel visible. Layout runs
// first so the panel has its final size before anyone positions it.
func (p *Panel) Show(heading, body string) {
	p.heading = heading
	p.body = body
	p.layout()
	p.visible = true
}

// Hide hides the panel and drops the focus reference.
func (p *Panel) Hide() {
	p.visible = false
	p.focus = nil
}

// Focus records ind as the indicator the panel describes.
func (p *Panel) Focus(ind *Indicator) { p.focus = ind }

// Focused returns the focused indicator, or nil.
func (p *Panel) Focused() *Indicator { return p.focus }

// FollowFocus anchors the panel at pos plus offset.
func (p *Panel) FollowFocus(pos, offset Vec2) {
	p.anchor = pos.Add(offset)
}

// SetMaxWidth changes the wrap width and re-lays out the current text.
func (p *Panel) SetMaxWidth(w int) {
	if w <= 0 || w == p.maxWidth {
		return
	}
	p.maxWidth = w
	p.layout()
}

func (p *Panel) layout() {
	p.lines = p.lines[:0]
	if p.heading != "" {
		p.lines = append(p.lines, runewidth.Truncate(p.heading, p.maxWidth, "…"))
	}
	if p.body != "" {
		for _, l := range strings.Split(wordwrap.String(p.body, p.maxWidth), "\n") {
			// wordwrap leaves words longer than the limit intact.
			p.lines = append(p.lines, runewidth.Truncate(l, p.maxWidth, "…"))
		}
	}
	p.width = 0
	for _, l := range p.lines {
		if w := runewidth.StringWidth(l); w > p.width {
			p.width = w
		}
	}
}

// Visible reports whether the panel is shown.
func (p *Panel) Visible() bool { return p.visible }

// Anchor returns the panel's surface position.
func (p *Panel) Anchor() Vec2 { return p.anchor }

// Heading returns the heading text.
func (p *Panel) Heading() string { return p.heading }

// Body returns the body text.
func (p *Panel) Body() string { return p.body }

// Lines returns the laid-out text, heading first.
func (p *Panel) Lines() []string { return p.lines }

// Size returns the laid-out size in cells.
func (p *Panel) Size() (width, height int) { return p.width, len(p.lines) }
