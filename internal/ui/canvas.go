package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Kind selects the style a canvas cell is drawn with.
type Kind int

const (
	KindPlain Kind = iota
	KindIndicator
	KindIndicatorShowing
	KindLabel
	KindRingBright
	KindRingFaint
	KindPanelBorder
	KindPanelHeading
	KindPanelBody
	KindSeekFilled
	KindSeekEmpty
	KindSeekHead
	KindMarker
)

func (k Kind) style() (lipgloss.Style, bool) {
	switch k {
	case KindIndicator:
		return IndicatorStyle, true
	case KindIndicatorShowing:
		return IndicatorShowingStyle, true
	case KindLabel:
		return LabelStyle, true
	case KindRingBright:
		return RingBrightStyle, true
	case KindRingFaint:
		return RingFaintStyle, true
	case KindPanelBorder:
		return PanelBorderStyle, true
	case KindPanelHeading:
		return PanelHeadingStyle, true
	case KindPanelBody:
		return PanelBodyStyle, true
	case KindSeekFilled:
		return SeekFilledStyle, true
	case KindSeekEmpty:
		return SeekEmptyStyle, true
	case KindSeekHead:
		return SeekHeadStyle, true
	case KindMarker:
		return MarkerStyle, true
	}
	return lipgloss.Style{}, false
}

type cell struct {
	r    rune
	kind Kind
	wide bool // occupies this cell and the next
	cont bool // right half of a wide rune
}

// Canvas is a fixed grid of styled cells. Writes outside the grid are
// dropped.
type Canvas struct {
	width  int
	height int
	cells  []cell
}

// NewCanvas returns a blank canvas.
func NewCanvas(width, height int) *Canvas {
	width, height = max(0, width), max(0, height)
	c := &Canvas{width: width, height: height, cells: make([]cell, width*height)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (int, int) { return c.width, c.height }

func (c *Canvas) in(col, row int) bool {
	return col >= 0 && row >= 0 && col < c.width && row < c.height
}

func (c *Canvas) at(col, row int) *cell { return &c.cells[row*c.width+col] }

// clear blanks a cell along with whatever half of a wide rune it belonged to.
func (c *Canvas) clear(col, row int) {
	cur := c.at(col, row)
	if cur.cont && col > 0 {
		*c.at(col-1, row) = cell{r: ' '}
	}
	if cur.wide && col+1 < c.width {
		*c.at(col+1, row) = cell{r: ' '}
	}
	*cur = cell{r: ' '}
}

// Set draws r at (col, row) and returns the number of cells it used.
func (c *Canvas) Set(col, row int, r rune, kind Kind) int {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return 0
	}
	if !c.in(col, row) || (w == 2 && !c.in(col+1, row)) {
		return w
	}
	c.clear(col, row)
	if w == 2 {
		c.clear(col+1, row)
		*c.at(col+1, row) = cell{cont: true, kind: kind}
	}
	*c.at(col, row) = cell{r: r, kind: kind, wide: w == 2}
	return w
}

// Text draws s starting at (col, row) and returns the column after it.
func (c *Canvas) Text(col, row int, s string, kind Kind) int {
	for _, r := range s {
		col += c.Set(col, row, r, kind)
	}
	return col
}

// Rune returns the rune at (col, row), or 0 outside the grid or on the right
// half of a wide rune.
func (c *Canvas) Rune(col, row int) rune {
	if !c.in(col, row) {
		return 0
	}
	cl := c.at(col, row)
	if cl.cont {
		return 0
	}
	return cl.r
}

// KindAt returns the style kind at (col, row).
func (c *Canvas) KindAt(col, row int) Kind {
	if !c.in(col, row) {
		return KindPlain
	}
	return c.at(col, row).kind
}

// Row returns one row as plain text.
func (c *Canvas) Row(row int) string {
	if row < 0 || row >= c.height {
		return ""
	}
	var b strings.Builder
	for col := 0; col < c.width; col++ {
		if cl := c.at(col, row); !cl.cont {
			b.WriteRune(cl.r)
		}
	}
	return b.String()
}

// Render returns the styled canvas, one line per row. Runs of cells with the
// same kind are rendered together.
func (c *Canvas) Render() string {
	lines := make([]string, c.height)
	for row := 0; row < c.height; row++ {
		var b, run strings.Builder
		runKind := KindPlain
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if st, ok := runKind.style(); ok {
				b.WriteString(st.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for col := 0; col < c.width; col++ {
			cl := c.at(col, row)
			if cl.cont {
				continue
			}
			if cl.kind != runKind {
				flush()
				runKind = cl.kind
			}
			run.WriteRune(cl.r)
		}
		flush()
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}
