package annotation

import (
	"fmt"
	"math"

	"github.com/jwulff/lectern/internal/monitoring"
)

// Controller keeps the indicator set in step with a Player. Call Tick once
// per frame.
type Controller struct {
	player   Player
	surface  Surface
	settings *Settings

	timeline *Timeline
	sched    *Scheduler
	pool     *Pool
	panel    *Panel
	active   []*Indicator

	ready    bool
	failed   bool
	duration float64
	status   string

	// Player state seen by the previous Tick.
	lastTime    float64
	lastPlaying bool

	scrubbing  bool
	scrubValue float64
}

// NewController builds a controller with its own pool, scheduler and panel.
func NewController(player Player, surface Surface, settings Settings) *Controller {
	c := &Controller{
		player:   player,
		surface:  surface,
		settings: &settings,
		timeline: NewTimeline(),
		sched:    NewScheduler(),
		panel:    NewPanel(DefaultPanelWidth),
	}
	c.pool = NewPool(c.sched, c.settings)
	c.pool.BeforeRelease = func(ind *Indicator) {
		if c.panel.Focused() == ind {
			c.panel.Hide()
		}
	}
	return c
}

// Load replaces the annotation list. Active indicators go back to the pool.
func (c *Controller) Load(items []Annotation) {
	for _, ind := range c.active {
		c.pool.Release(ind)
	}
	c.active = c.active[:0]
	c.panel.Hide()
	c.timeline.Load(Sanitize(items))
}

// OnReady is called once when the player can play. Playback is parked at the
// start, paused.
func (c *Controller) OnReady() {
	c.ready = true
	c.failed = false
	c.duration = c.player.Duration()
	c.status = ""
	c.player.Seek(0)
	c.player.Pause()
	c.setAllPaused(true)
	c.lastTime = 0
	c.lastPlaying = false
}

// OnError records a playback failure. The annotation system stays inert
// until the next OnReady.
func (c *Controller) OnError(err error) {
	c.failed = true
	c.status = fmt.Sprintf("Video error: %v", err)
	monitoring.Logf("[annotation] %s", c.status)
}

// SetStatus sets the status line text.
func (c *Controller) SetStatus(s string) { c.status = s }

// rewindSlack is the smallest backward jump of the player clock treated as
// a seek rather than polling jitter.
const rewindSlack = 0.25

// Tick advances the engine by dt seconds.
func (c *Controller) Tick(dt float64) {
	live := c.ready && !c.failed
	if live {
		c.followPlayer()
	}

	c.sched.Run(dt)
	for _, ind := range c.active {
		ind.advance(dt)
	}

	if live && c.player.IsPlaying() {
		for _, a := range c.timeline.AdvanceAndCollectDue(c.player.CurrentTime(), c.settings.Tolerance) {
			c.spawn(a, false)
		}
	}
	if live {
		c.lastTime = c.player.CurrentTime()
		c.lastPlaying = c.player.IsPlaying()
	}

	c.syncPanel()
}

// followPlayer picks up changes the player made on its own: a backward jump
// rebuilds the indicator set like a manual seek, and a play or pause
// freezes or resumes the countdowns.
func (c *Controller) followPlayer() {
	now := c.player.CurrentTime()
	if now < c.lastTime-math.Max(c.settings.Tolerance, rewindSlack) {
		monitoring.Logf("[annotation] player rewound from %.2f to %.2f, resyncing", c.lastTime, now)
		c.syncToTime(now)
	}
	if playing := c.player.IsPlaying(); playing != c.lastPlaying {
		c.setAllPaused(!playing)
		c.lastPlaying = playing
	}
}

func (c *Controller) syncPanel() {
	ind := c.panel.Focused()
	if ind == nil || !c.panel.Visible() {
		return
	}
	if ind.IsMinimizing() {
		c.panel.Hide()
		return
	}
	c.panel.FollowFocus(ind.Position(), c.settings.PanelOffset)
}

func (c *Controller) spawn(a Annotation, forceMinimized bool) {
	if !forceMinimized {
		for _, other := range c.active {
			if other.IsShowing() {
				other.ForceMinimizeImmediate()
			}
		}
	}

	ind := c.pool.Acquire()
	ind.Initialize(a, c.expandedPosition(a), c.collapsedPosition(len(c.active)), c.handlers(), forceMinimized)
	ind.SetPaused(!c.player.IsPlaying())
	c.active = append(c.active, ind)

	if forceMinimized {
		return
	}
	c.focus(ind)
	if c.settings.PauseOnAppear {
		c.player.Pause()
		c.setAllPaused(true)
	}
}

func (c *Controller) handlers() Handlers {
	return Handlers{
		OnClick:      c.onClick,
		OnTimeTravel: c.onTimeTravel,
		OnMinimize:   c.onMinimize,
	}
}

func (c *Controller) focus(ind *Indicator) {
	a := ind.Annotation()
	c.panel.Focus(ind)
	c.panel.Show(a.Content.Heading, a.Content.Body)
	c.panel.FollowFocus(ind.Position(), c.settings.PanelOffset)
}

func (c *Controller) onClick(ind *Indicator) {
	c.player.Pause()
	c.setAllPaused(true)
	c.focus(ind)
}

func (c *Controller) onTimeTravel(ind *Indicator) {
	a := ind.Annotation()
	c.player.Seek(a.Timestamp)
	c.player.Pause()
	c.setAllPaused(true)

	for _, other := range c.active {
		if other != ind && other.IsShowing() {
			other.ForceMinimizeImmediate()
		}
	}
	ind.Restore()
	c.focus(ind)

	c.timeline.ResyncCursor(a.Timestamp)
	c.clearFuture(a.Timestamp + c.settings.TimeTravelMargin)
	c.lastTime = a.Timestamp
}

func (c *Controller) onMinimize(ind *Indicator) {
	if c.panel.Focused() == ind {
		c.panel.Hide()
	}
}

// Seek jumps playback to t and rebuilds the indicator set for that time:
// later indicators are removed and earlier annotations appear minimized.
func (c *Controller) Seek(t float64) {
	if c.duration > 0 {
		t = math.Min(t, c.duration)
	}
	t = math.Max(t, 0)
	c.player.Seek(t)
	c.syncToTime(t)
}

func (c *Controller) syncToTime(t float64) {
	c.clearFuture(t)
	c.timeline.ResyncCursor(t)
	c.panel.Hide()

	for _, a := range c.timeline.Before(t) {
		if c.timeline.IsTriggered(a.ID) {
			continue
		}
		c.timeline.MarkTriggered(a)
		c.spawn(a, true)
	}
	c.setAllPaused(!c.player.IsPlaying())
	c.lastTime = t
}

// clearFuture releases indicators later than threshold, forgets that they
// fired and closes the gaps they leave in the stack.
func (c *Controller) clearFuture(threshold float64) {
	kept := make([]*Indicator, 0, len(c.active))
	for _, ind := range c.active {
		if ind.Annotation().Timestamp > threshold {
			c.pool.Release(ind)
			continue
		}
		kept = append(kept, ind)
	}
	c.active = kept
	c.timeline.ClearTriggeredAfter(threshold)
	c.relayout()
}

// Resize recomputes every indicator's positions from the current surface
// size.
func (c *Controller) Resize() {
	c.relayout()
	c.syncPanel()
}

func (c *Controller) relayout() {
	for i, ind := range c.active {
		ind.SetLayout(c.expandedPosition(ind.Annotation()), c.collapsedPosition(i))
	}
}

func (c *Controller) expandedPosition(a Annotation) Vec2 {
	w, h := c.surface.Size()
	return Vec2{
		X: (a.Position.X - 0.5) * w,
		Y: (a.Position.Y - 0.5) * h,
	}
}

func (c *Controller) collapsedPosition(slot int) Vec2 {
	w, h := c.surface.Size()
	return Vec2{
		X: -w/2 + c.settings.StackLeftOffset,
		Y: h/2 + c.settings.StackTopOffset - float64(slot)*c.settings.StackSpacing,
	}
}

func (c *Controller) setAllPaused(paused bool) {
	for _, ind := range c.active {
		ind.SetPaused(paused)
	}
}

// HitTest returns the top-most indicator within the hit radius of pt.
func (c *Controller) HitTest(pt Vec2) *Indicator {
	for i := len(c.active) - 1; i >= 0; i-- {
		if c.active[i].Position().Dist(pt) <= c.settings.HitRadius {
			return c.active[i]
		}
	}
	return nil
}

// ClickAt forwards a pointer click at pt to the indicator under it. It
// reports whether an indicator was hit.
func (c *Controller) ClickAt(pt Vec2) bool {
	ind := c.HitTest(pt)
	if ind == nil {
		return false
	}
	ind.Click()
	return true
}

// TogglePlayback plays or pauses, keeping indicator countdowns in step.
func (c *Controller) TogglePlayback() {
	if !c.ready || c.failed {
		return
	}
	if c.player.IsPlaying() {
		c.player.Pause()
		c.setAllPaused(true)
		return
	}
	// Replaying from the end starts over with an empty stack.
	if c.duration > 0 && c.player.CurrentTime() >= c.duration {
		c.Seek(0)
	}
	c.player.Play()
	c.setAllPaused(false)
}

// BeginScrub starts a seek-bar drag at the current time.
func (c *Controller) BeginScrub() {
	if !c.ready {
		return
	}
	c.scrubbing = true
	c.scrubValue = c.player.CurrentTime()
}

// ScrubTo moves the drag position without seeking.
func (c *Controller) ScrubTo(t float64) {
	if !c.scrubbing {
		return
	}
	if c.duration > 0 {
		t = math.Min(t, c.duration)
	}
	c.scrubValue = math.Max(t, 0)
}

// EndScrub finishes the drag and seeks to where it ended.
func (c *Controller) EndScrub() {
	if !c.scrubbing {
		return
	}
	c.scrubbing = false
	c.Seek(c.scrubValue)
}

// Scrubbing reports whether a seek-bar drag is in progress.
func (c *Controller) Scrubbing() bool { return c.scrubbing }

// SliderValue is the time the seek bar should show: the drag position while
// scrubbing, the playback time otherwise.
func (c *Controller) SliderValue() float64 {
	if c.scrubbing {
		return c.scrubValue
	}
	return c.player.CurrentTime()
}

// Markers places every annotation on the seek bar. Empty until the player
// is ready.
func (c *Controller) Markers() []Marker {
	if !c.ready {
		return nil
	}
	return c.timeline.Markers(c.duration)
}

// Active returns the checked-out indicators in stack order.
func (c *Controller) Active() []*Indicator {
	out := make([]*Indicator, len(c.active))
	copy(out, c.active)
	return out
}

// Showing returns the expanded indicator, if any.
func (c *Controller) Showing() *Indicator {
	for _, ind := range c.active {
		if ind.IsShowing() {
			return ind
		}
	}
	return nil
}

// Panel returns the detail panel.
func (c *Controller) Panel() *Panel { return c.panel }

// Timeline returns the annotation timeline.
func (c *Controller) Timeline() *Timeline { return c.timeline }

// PoolStats returns indicator pool occupancy.
func (c *Controller) PoolStats() PoolStats { return c.pool.Stats() }

// Status returns the status line text.
func (c *Controller) Status() string { return c.status }

// Ready reports whether the player has signalled it can play.
func (c *Controller) Ready() bool { return c.ready }

// Duration returns the video length recorded at OnReady.
func (c *Controller) Duration() float64 { return c.duration }
