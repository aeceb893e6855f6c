package app

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwulff/lectern/internal/annotation"
	"github.com/jwulff/lectern/internal/monitoring"
	"github.com/jwulff/lectern/internal/playback"
)

const frame = time.Second / 30

type rig struct {
	t   *testing.T
	m   Model
	sim *playback.Sim
	now time.Time
}

func note(id string, ts float64, heading string) annotation.Annotation {
	return annotation.Annotation{
		ID:        id,
		Timestamp: ts,
		Position:  annotation.Vec2{X: 0.5, Y: 0.5},
		Content:   annotation.Content{Heading: heading, Body: "body of " + heading},
	}
}

// newRig builds a model over a prepared 10s simulated video, sized to an
// 80x24 terminal, and runs one frame so the controller is ready.
func newRig(t *testing.T, items ...annotation.Annotation) *rig {
	t.Helper()
	monitoring.SetLogger(nil)

	sim := playback.NewSim(10)
	if err := sim.Prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	r := &rig{
		t:   t,
		sim: sim,
		now: time.Unix(1000, 0),
		m: New(Options{
			Title:         "Cells",
			Source:        sim,
			Annotations:   items,
			Settings:      annotation.DefaultSettings(),
			FrameInterval: frame,
		}),
	}
	r.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	r.frames(1)
	if !r.m.ctrl.Ready() {
		t.Fatal("controller not ready after first frame")
	}
	return r
}

func (r *rig) send(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	r.m, cmd = applyUpdate(r.m, msg)
	return cmd
}

func (r *rig) frames(n int) {
	for i := 0; i < n; i++ {
		r.now = r.now.Add(frame)
		r.send(FrameMsg{Time: r.now})
	}
}

func (r *rig) key(s string) {
	switch s {
	case " ":
		r.send(tea.KeyMsg{Type: tea.KeySpace})
	case "right":
		r.send(tea.KeyMsg{Type: tea.KeyRight})
	case "left":
		r.send(tea.KeyMsg{Type: tea.KeyLeft})
	default:
		r.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

func (r *rig) mouse(x, y int, action tea.MouseAction) {
	r.send(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
}

func TestNewModelWithoutSource(t *testing.T) {
	m := New(Options{Settings: annotation.DefaultSettings()})
	if m.View() != "Initializing..." {
		t.Errorf("View() before size = %q", m.View())
	}

	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = applyUpdate(m, FrameMsg{Time: time.Now()})
	if m.ctrl.Ready() {
		t.Error("controller should not be ready without a video")
	}
	if !strings.Contains(m.View(), "No video selected") {
		t.Error("view should say no video is selected")
	}
}

func TestInitStartsFrameLoop(t *testing.T) {
	m := New(Options{Source: playback.NewSim(10), Settings: annotation.DefaultSettings()})
	if m.Init() == nil {
		t.Fatal("Init should return a command")
	}
}

func TestReadyParksAtStart(t *testing.T) {
	r := newRig(t)
	if r.sim.IsPlaying() {
		t.Error("player should be paused after ready")
	}
	if r.sim.CurrentTime() != 0 {
		t.Errorf("time = %v, want 0", r.sim.CurrentTime())
	}
	if r.m.ctrl.Duration() != 10 {
		t.Errorf("duration = %v, want 10", r.m.ctrl.Duration())
	}
}

func TestFrameReturnsNextTick(t *testing.T) {
	r := newRig(t)
	r.now = r.now.Add(frame)
	if cmd := r.send(FrameMsg{Time: r.now}); cmd == nil {
		t.Error("frame should schedule the next frame")
	}
}

func TestPlaybackShowsAnnotation(t *testing.T) {
	r := newRig(t, note("a", 1.0, "Nucleus"))
	r.key(" ")
	if !r.sim.IsPlaying() {
		t.Fatal("space should start playback")
	}

	r.frames(40)

	ind := r.m.ctrl.Showing()
	if ind == nil {
		t.Fatal("no indicator showing after passing its timestamp")
	}
	if ind.Annotation().ID != "a" {
		t.Errorf("showing %q, want %q", ind.Annotation().ID, "a")
	}
	if r.sim.IsPlaying() {
		t.Error("playback should pause when an annotation appears")
	}
	if !r.m.ctrl.Panel().Visible() {
		t.Error("panel should be visible")
	}
	if view := r.m.View(); !strings.Contains(view, "Nucleus") {
		t.Error("view should contain the panel heading")
	}
}

func TestSourceErrorIsReported(t *testing.T) {
	monitoring.SetLogger(nil)
	sim := playback.NewSim(0)
	if err := sim.Prepare(); err == nil {
		t.Fatal("expected prepare error")
	}
	m := New(Options{Source: sim, Settings: annotation.DefaultSettings()})
	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = applyUpdate(m, FrameMsg{Time: time.Now()})

	if m.errorMessage == "" {
		t.Error("errorMessage should be set")
	}
	if !strings.HasPrefix(m.ctrl.Status(), "Video error") {
		t.Errorf("status = %q", m.ctrl.Status())
	}
	if m.ctrl.Ready() {
		t.Error("controller should not be ready after an error")
	}
	if !strings.Contains(m.View(), "Error:") {
		t.Error("view should show the error")
	}
}

func TestClickOnEmptyVideoTogglesPlayback(t *testing.T) {
	r := newRig(t)
	r.mouse(40, videoTop+3, tea.MouseActionPress)
	if !r.sim.IsPlaying() {
		t.Fatal("click should start playback")
	}
	r.mouse(40, videoTop+3, tea.MouseActionPress)
	if r.sim.IsPlaying() {
		t.Error("second click should pause playback")
	}
}

func TestSeekBarDrag(t *testing.T) {
	r := newRig(t)
	row := r.m.seekRow()
	if row != 21 {
		t.Fatalf("seekRow = %d, want 21", row)
	}

	r.mouse(20, row, tea.MouseActionPress)
	if !r.m.ctrl.Scrubbing() {
		t.Fatal("press on the seek bar should start a scrub")
	}
	r.mouse(30, row, tea.MouseActionMotion)
	if r.sim.CurrentTime() != 0 {
		t.Error("scrubbing should not seek until release")
	}
	r.mouse(40, row, tea.MouseActionRelease)

	want := 10 * 39.0 / 77.0
	if math.Abs(r.sim.CurrentTime()-want) > 1e-9 {
		t.Errorf("time = %v, want %v", r.sim.CurrentTime(), want)
	}
	if r.m.ctrl.Scrubbing() {
		t.Error("scrub should end on release")
	}
}

func TestSeekKeysRebuildHistory(t *testing.T) {
	r := newRig(t, note("a", 1, "A"), note("b", 3, "B"), note("c", 8, "C"))

	r.key("right")
	if r.sim.CurrentTime() != 5 {
		t.Fatalf("time = %v, want 5", r.sim.CurrentTime())
	}
	active := r.m.ctrl.Active()
	if len(active) != 2 {
		t.Fatalf("active = %d, want 2", len(active))
	}
	for _, ind := range active {
		if ind.State() != annotation.Minimized {
			t.Errorf("%s state = %v, want Minimized", ind.Annotation().ID, ind.State())
		}
	}

	r.key("left")
	r.key("left")
	if r.sim.CurrentTime() != 0 {
		t.Errorf("time = %v, want 0 (clamped)", r.sim.CurrentTime())
	}
	if n := len(r.m.ctrl.Active()); n != 0 {
		t.Errorf("active after rewind = %d, want 0", n)
	}
}

func TestNumberKeyTimeTravels(t *testing.T) {
	r := newRig(t, note("a", 1, "A"), note("b", 3, "B"))
	r.key("right")

	r.key("1")
	if r.sim.CurrentTime() != 1 {
		t.Errorf("time = %v, want 1", r.sim.CurrentTime())
	}
	active := r.m.ctrl.Active()
	if len(active) != 1 || active[0].Annotation().ID != "a" {
		t.Fatalf("active = %d, want only a", len(active))
	}
	if !active[0].IsShowing() {
		t.Error("time-travelled indicator should be showing")
	}

	// Out-of-range slots are ignored.
	r.key("9")
	if n := len(r.m.ctrl.Active()); n != 1 {
		t.Errorf("active = %d, want 1", n)
	}
}

func TestSpeedKeys(t *testing.T) {
	r := newRig(t)
	r.key("+")
	if r.sim.Rate() != 1.25 {
		t.Errorf("rate = %v, want 1.25", r.sim.Rate())
	}
	r.key("-")
	r.key("-")
	if r.sim.Rate() != 0.75 {
		t.Errorf("rate = %v, want 0.75", r.sim.Rate())
	}
	if r.m.statusText != "Speed 0.75x" {
		t.Errorf("statusText = %q", r.m.statusText)
	}
}

func TestQuitKey(t *testing.T) {
	r := newRig(t)
	cmd := r.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestLessonReloaded(t *testing.T) {
	r := newRig(t, note("a", 1, "A"))
	r.key("right")

	r.send(LessonReloadedMsg{Annotations: []annotation.Annotation{note("x", 2, "X"), note("y", 4, "Y"), note("z", 9, "Z")}})
	if n := r.m.ctrl.Timeline().Len(); n != 3 {
		t.Errorf("timeline len = %d, want 3", n)
	}
	if n := len(r.m.ctrl.Active()); n != 2 {
		t.Errorf("active after reload = %d, want 2 (x and y before 5s)", n)
	}
	if r.m.statusText != "Reloaded 3 annotations" {
		t.Errorf("statusText = %q", r.m.statusText)
	}
}

func TestReloadErrorIsTransient(t *testing.T) {
	r := newRig(t)
	cmd := r.send(LessonReloadedMsg{Err: errors.New("bad yaml")})
	if cmd == nil {
		t.Error("reload error should schedule a clear")
	}
	if r.m.errorMessage != "reload: bad yaml" {
		t.Errorf("errorMessage = %q", r.m.errorMessage)
	}
	r.send(ClearTransientErrorMsg{})
	if r.m.errorMessage != "" {
		t.Errorf("errorMessage after clear = %q", r.m.errorMessage)
	}
}

func TestResizeMovesIndicators(t *testing.T) {
	r := newRig(t, note("a", 1, "A"))
	r.key("right")
	before := r.m.ctrl.Active()[0].Position()

	r.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	after := r.m.ctrl.Active()[0].Position()
	if before == after {
		t.Error("resize should move the stacked indicator")
	}
	w, h := r.m.area.Size()
	if w != 1200 || h != 35*cellHeight {
		t.Errorf("surface = %vx%v", w, h)
	}
}

func TestCellSurfaceRoundTrip(t *testing.T) {
	r := newRig(t)
	for _, c := range [][2]int{{0, 0}, {40, 9}, {79, 18}} {
		col, row := r.m.toCell(r.m.toSurface(c[0], c[1]))
		if col != c[0] || row != c[1] {
			t.Errorf("round trip of %v = %d,%d", c, col, row)
		}
	}
}

func TestViewLayout(t *testing.T) {
	r := newRig(t, note("a", 2, "A"), note("b", 6, "B"))
	view := r.m.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 24 {
		t.Errorf("view has %d lines, want 24", len(lines))
	}
	if !strings.Contains(lines[0], "LECTERN") || !strings.Contains(lines[0], "Cells") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(lines[r.m.seekRow()], "◆") != 2 {
		t.Errorf("seek bar should carry two markers: %q", lines[r.m.seekRow()])
	}
	if !strings.Contains(view, "00:00 / 00:10") {
		t.Error("view should show the clock")
	}
}
