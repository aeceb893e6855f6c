package app

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/jwulff/lectern/internal/annotation"
	"github.com/jwulff/lectern/internal/playback"
	"github.com/jwulff/lectern/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// Source is a video player the frame loop can drive.
type Source interface {
	annotation.Player
	Ready() bool
	Err() error
	// Advance moves the player's clock by dt seconds of wall time.
	Advance(dt float64)
}

// refresher is implemented by sources that mirror an external player and
// must be polled.
type refresher interface {
	Refresh() error
}

// rateSource is implemented by sources with adjustable speed.
type rateSource interface {
	SetRate(rate float64)
	Rate() float64
}

const (
	// Surface units per terminal cell. Terminal cells are about twice as
	// tall as they are wide.
	cellWidth  = 10.0
	cellHeight = 20.0

	maxFrameDT          = 0.25
	defaultPollInterval = 100 * time.Millisecond
	seekStep            = 5.0

	videoTop   = 2 // header + divider
	chromeRows = 5 // header, divider, seek bar, time line, footer
)

var rates = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// Options configures a Model.
type Options struct {
	Title         string
	Source        Source
	Annotations   []annotation.Annotation
	Settings      annotation.Settings
	FrameInterval time.Duration
	PollInterval  time.Duration
}

// Model is the root bubbletea model for the lectern player.
type Model struct {
	title string
	src   Source
	ctrl  *annotation.Controller
	area  *playback.Area

	keys KeyMap
	help help.Model

	frameInterval time.Duration
	pollInterval  time.Duration
	lastFrame     time.Time

	// UI state
	width  int
	height int

	// Errors
	errorMessage   string
	errorTransient bool
	srcFailed      bool

	// Status
	statusText string
}

// New creates a Model. A nil Source leaves the player idle with a "No video
// selected" status.
func New(opts Options) Model {
	src := opts.Source
	if src == nil {
		src = playback.NewSim(0)
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 30
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	area := playback.NewArea(0, 0)
	ctrl := annotation.NewController(src, area, opts.Settings)
	ctrl.Load(opts.Annotations)
	if opts.Source == nil {
		ctrl.SetStatus("No video selected")
	}

	h := help.New()
	h.Styles.ShortKey = ui.FooterKeyStyle
	h.Styles.ShortDesc = ui.FooterDescStyle
	h.Styles.ShortSeparator = ui.DividerStyle

	return Model{
		title:         opts.Title,
		src:           src,
		ctrl:          ctrl,
		area:          area,
		keys:          DefaultKeyMap(),
		help:          h,
		frameInterval: opts.FrameInterval,
		pollInterval:  opts.PollInterval,
		statusText:    "Loading video...",
	}
}

// Controller exposes the annotation engine.
func (m Model) Controller() *annotation.Controller { return m.ctrl }

// Init starts the frame loop and, for external players, polling.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{frameCmd(m.frameInterval)}
	if _, ok := m.src.(refresher); ok {
		cmds = append(cmds, pollCmd(m.pollInterval))
	}
	return tea.Batch(cmds...)
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return FrameMsg{Time: t}
	})
}

func pollCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return PollMsg{}
	})
}

// refreshCmd polls the player off the frame loop.
func refreshCmd(r refresher) tea.Cmd {
	return func() tea.Msg {
		return RefreshedMsg{Err: r.Refresh()}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case FrameMsg:
		dt := m.frameInterval.Seconds()
		if !m.lastFrame.IsZero() {
			dt = msg.Time.Sub(m.lastFrame).Seconds()
		}
		m.lastFrame = msg.Time
		m.step(math.Max(0, math.Min(dt, maxFrameDT)))
		return m, frameCmd(m.frameInterval)

	case PollMsg:
		if r, ok := m.src.(refresher); ok {
			return m, refreshCmd(r)
		}
		return m, nil

	case RefreshedMsg:
		// Errors surface through Source.Err on the next frame.
		if m.srcFailed {
			return m, nil
		}
		return m, pollCmd(m.pollInterval)

	case LessonReloadedMsg:
		if msg.Err != nil {
			m.errorMessage = "reload: " + msg.Err.Error()
			m.errorTransient = true
			return m, clearTransientErrorCmd()
		}
		m.ctrl.Load(msg.Annotations)
		if m.ctrl.Ready() {
			m.ctrl.Seek(m.src.CurrentTime())
		}
		m.statusText = fmt.Sprintf("Reloaded %d annotations", m.ctrl.Timeline().Len())
		return m, nil

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil
	}

	return m, nil
}

// step runs one frame: the player clock, ready and error signals, then the
// engine.
func (m *Model) step(dt float64) {
	m.src.Advance(dt)

	if !m.srcFailed {
		if err := m.src.Err(); err != nil {
			m.srcFailed = true
			m.ctrl.OnError(err)
			m.errorMessage = err.Error()
			m.errorTransient = false
		}
	}
	if !m.srcFailed && !m.ctrl.Ready() && m.src.Ready() {
		m.ctrl.OnReady()
		m.statusText = ""
	}

	m.ctrl.Tick(dt)
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Play):
		m.ctrl.TogglePlayback()

	case key.Matches(msg, m.keys.Back):
		m.seekBy(-seekStep)

	case key.Matches(msg, m.keys.Forward):
		m.seekBy(seekStep)

	case key.Matches(msg, m.keys.Start):
		if m.ctrl.Ready() {
			m.ctrl.Seek(0)
		}

	case key.Matches(msg, m.keys.Open):
		// Stack slots are numbered from 1.
		slot := int(msg.String()[0] - '1')
		if active := m.ctrl.Active(); slot < len(active) {
			active[slot].Click()
		}

	case key.Matches(msg, m.keys.Slower):
		m.stepRate(-1)

	case key.Matches(msg, m.keys.Faster):
		m.stepRate(1)
	}
	return m, nil
}

func (m *Model) seekBy(delta float64) {
	if !m.ctrl.Ready() {
		return
	}
	m.ctrl.Seek(m.src.CurrentTime() + delta)
}

func (m *Model) stepRate(dir int) {
	rs, ok := m.src.(rateSource)
	if !ok {
		return
	}
	i := nearestRate(rs.Rate()) + dir
	if i < 0 || i >= len(rates) {
		return
	}
	rs.SetRate(rates[i])
	m.statusText = fmt.Sprintf("Speed %.3gx", rates[i])
}

func nearestRate(r float64) int {
	best := 0
	for i, v := range rates {
		if math.Abs(v-r) < math.Abs(rates[best]-r) {
			best = i
		}
	}
	return best
}

// handleMouse maps clicks on the video to the engine and drags on the seek
// bar to a scrub.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if msg.Y == m.seekRow() {
			m.ctrl.BeginScrub()
			m.ctrl.ScrubTo(m.seekTimeAt(msg.X))
			return m, nil
		}
		if row := msg.Y - videoTop; row >= 0 && row < m.videoRows() {
			// Clicking empty video toggles playback.
			if !m.ctrl.ClickAt(m.toSurface(msg.X, row)) {
				m.ctrl.TogglePlayback()
			}
		}

	case tea.MouseActionMotion:
		if m.ctrl.Scrubbing() {
			m.ctrl.ScrubTo(m.seekTimeAt(msg.X))
		}

	case tea.MouseActionRelease:
		if m.ctrl.Scrubbing() {
			m.ctrl.ScrubTo(m.seekTimeAt(msg.X))
			m.ctrl.EndScrub()
		}
	}
	return m, nil
}

func (m Model) videoRows() int {
	return max(1, m.height-chromeRows)
}

func (m Model) seekRow() int { return videoTop + m.videoRows() }

// seek bar geometry: one column of padding each side.
func (m Model) seekSpan() (left, width int) {
	return 1, max(2, m.width-2)
}

func (m Model) seekTimeAt(col int) float64 {
	left, width := m.seekSpan()
	frac := float64(col-left) / float64(width-1)
	frac = math.Max(0, math.Min(frac, 1))
	return frac * m.ctrl.Duration()
}

// resize fits the video surface to the terminal.
func (m *Model) resize() {
	w := float64(m.width) * cellWidth
	h := float64(m.videoRows()) * cellHeight
	if m.area.Resize(w, h) {
		m.ctrl.Resize()
	}
	m.ctrl.Panel().SetMaxWidth(min(annotation.DefaultPanelWidth, max(12, m.width/2)))
	m.help.Width = m.width
}

// toCell converts a surface position to a video-area cell.
func (m Model) toCell(p annotation.Vec2) (col, row int) {
	w, h := m.area.Size()
	col = int(math.Floor((p.X + w/2) / cellWidth))
	row = int(math.Floor((h/2 - p.Y) / cellHeight))
	return col, row
}

// toSurface converts a video-area cell to the surface position of its
// centre.
func (m Model) toSurface(col, row int) annotation.Vec2 {
	w, h := m.area.Size()
	return annotation.Vec2{
		X: (float64(col)+0.5)*cellWidth - w/2,
		Y: h/2 - (float64(row)+0.5)*cellHeight,
	}
}
