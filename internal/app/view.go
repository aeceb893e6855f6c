package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/lectern/internal/annotation"
	"github.com/jwulff/lectern/internal/ui"
)

// ringRadius is the surface radius of a pulse ring at scale 1.
const ringRadius = 12.0

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	canvas := ui.NewCanvas(m.width, m.videoRows())
	m.drawIndicators(canvas)
	m.drawPanel(canvas)

	sections := []string{
		m.renderHeader(),
		ui.DividerStyle.Render(strings.Repeat("─", m.width)),
		canvas.Render(),
		m.renderSeekBar(),
		m.renderTimeLine(),
		m.renderFooter(),
	}
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("LECTERN")
	if m.title != "" {
		title += ui.DimStyle.Render(" — " + m.title)
	}

	stats := m.ctrl.PoolStats()
	info := ui.DimStyle.Render(fmt.Sprintf("%d notes · %d on screen", m.ctrl.Timeline().Len(), stats.Live))

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(info)
	if gap < 1 {
		return title
	}
	return title + strings.Repeat(" ", gap) + info
}

func (m Model) drawIndicators(c *ui.Canvas) {
	active := m.ctrl.Active()

	// Rings first so indicators draw over them.
	for _, ind := range active {
		p := ind.Pulse()
		for _, r := range p.Rings() {
			m.drawRing(c, ind.Position(), p.RingScale(r)*ringRadius, p.RingAlpha(r))
		}
	}

	for i, ind := range active {
		col, row := m.toCell(ind.Position())
		if ind.State() == annotation.Minimized {
			c.Set(col, row, '●', ui.KindIndicator)
			label := ind.Label()
			if !ind.IsMoving() && i < 9 {
				label = fmt.Sprintf("%d %s", i+1, label)
			}
			c.Text(col+2, row, label, ui.KindLabel)
			continue
		}
		c.Set(col, row, '◉', ui.KindIndicatorShowing)
		c.Text(col+2, row, ind.Label(), ui.KindLabel)
	}
}

func (m Model) drawRing(c *ui.Canvas, centre annotation.Vec2, radius, alpha float64) {
	if alpha <= 0 || radius <= 0 {
		return
	}
	glyph, kind := '·', ui.KindRingFaint
	if alpha > 0.5 {
		glyph, kind = '∘', ui.KindRingBright
	}
	const steps = 24
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / steps
		p := centre.Add(annotation.Vec2{X: math.Cos(a) * radius, Y: math.Sin(a) * radius})
		col, row := m.toCell(p)
		c.Set(col, row, glyph, kind)
	}
}

func (m Model) drawPanel(c *ui.Canvas) {
	p := m.ctrl.Panel()
	if !p.Visible() {
		return
	}
	w, h := p.Size()
	boxW, boxH := w+2, h+2
	cw, ch := c.Size()

	col, row := m.toCell(p.Anchor())
	left := col - boxW/2
	left = max(0, min(left, cw-boxW))
	top := max(0, min(row, ch-boxH))

	c.Text(left, top, "┌"+strings.Repeat("─", w)+"┐", ui.KindPanelBorder)
	for i, line := range p.Lines() {
		y := top + 1 + i
		kind := ui.KindPanelBody
		if i == 0 && p.Heading() != "" {
			kind = ui.KindPanelHeading
		}
		c.Set(left, y, '│', ui.KindPanelBorder)
		end := c.Text(left+1, y, line, kind)
		for x := end; x < left+1+w; x++ {
			c.Set(x, y, ' ', kind)
		}
		c.Set(left+1+w, y, '│', ui.KindPanelBorder)
	}
	c.Text(left, top+boxH-1, "└"+strings.Repeat("─", w)+"┘", ui.KindPanelBorder)
}

func (m Model) renderSeekBar() string {
	left, width := m.seekSpan()
	bar := ui.NewCanvas(m.width, 1)

	dur := m.ctrl.Duration()
	head := -1
	if dur > 0 {
		head = left + int(math.Round(m.ctrl.SliderValue()/dur*float64(width-1)))
	}
	for x := left; x < left+width; x++ {
		if head >= 0 && x <= head {
			bar.Set(x, 0, '━', ui.KindSeekFilled)
		} else {
			bar.Set(x, 0, '─', ui.KindSeekEmpty)
		}
	}
	for _, mk := range m.ctrl.Markers() {
		x := left + int(math.Round(mk.Fraction*float64(width-1)))
		bar.Set(x, 0, '◆', ui.KindMarker)
	}
	if head >= 0 {
		bar.Set(head, 0, '●', ui.KindSeekHead)
	}
	return bar.Render()
}

func (m Model) renderTimeLine() string {
	clock := ui.TimestampStyle.Render(fmt.Sprintf("%s / %s",
		annotation.FormatTime(m.ctrl.SliderValue()), annotation.FormatTime(m.ctrl.Duration())))

	var state string
	switch {
	case m.ctrl.Scrubbing():
		state = ui.ScrubBadgeStyle.Render("SEEK")
	case m.src.IsPlaying():
		state = ui.PlayingStyle.Render("▶ PLAY")
	default:
		state = ui.PausedStyle.Render("❚❚ PAUSE")
	}

	line := state + "  " + clock
	switch {
	case m.errorMessage != "":
		line += "  " + ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
	case m.ctrl.Status() != "":
		line += "  " + ui.StatusStyle.Render(m.ctrl.Status())
	case m.statusText != "":
		line += "  " + ui.StatusStyle.Render(m.statusText)
	}
	return truncate(line, m.width)
}

func (m Model) renderFooter() string {
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

// truncate cuts a styled line to width cells.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
