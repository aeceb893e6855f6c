package annotation

// State is an indicator's place in its lifecycle.
type State int

const (
	JustAppeared State = iota
	Showing
	Minimized
)

func (s State) String() string {
	switch s {
	case JustAppeared:
		return "just-appeared"
	case Showing:
		return "showing"
	case Minimized:
		return "minimized"
	}
	return "unknown"
}

// Handlers are the callbacks an indicator reports to its owner.
type Handlers struct {
	OnClick      func(*Indicator) // clicked while expanded
	OnTimeTravel func(*Indicator) // clicked while minimized
	OnMinimize   func(*Indicator) // started minimizing, or placed minimized
}

// Indicator is the on-screen marker of one annotation. It animates between
// its expanded position over the video and its collapsed slot in the stack.
type Indicator struct {
	sched    *Scheduler
	settings *Settings

	annotation Annotation
	handlers   Handlers
	expanded   Vec2
	collapsed  Vec2
	pos        Vec2

	state         State
	transitioning bool // minimizing and not yet arrived
	moving        bool
	paused        bool
	elapsed       float64
	active        bool

	pulse Pulse

	moveGen  Generation
	timerGen Generation
}

func newIndicator(sched *Scheduler, settings *Settings) *Indicator {
	return &Indicator{
		sched:    sched,
		settings: settings,
		pulse:    NewPulse(settings.PulseInterval, settings.PulseLifetime, settings.PulseScale),
	}
}

// Initialize binds the indicator to a and places it. With forceMinimized it
// lands directly in its stack slot with no animation and no pulse; otherwise
// it shows expanded and starts the auto-minimize countdown.
func (ind *Indicator) Initialize(a Annotation, expanded, collapsed Vec2, h Handlers, forceMinimized bool) {
	ind.cancel()

	ind.annotation = a
	ind.expanded = expanded
	ind.collapsed = collapsed
	ind.handlers = h
	ind.paused = false
	ind.elapsed = 0
	ind.transitioning = false
	ind.active = true
	ind.pulse.Disable()

	if forceMinimized {
		ind.state = Minimized
		ind.pos = collapsed
		ind.notifyMinimize()
		return
	}

	ind.state = Showing
	ind.pos = expanded
	ind.pulse.Enable()
	ind.startCountdown()
}

// Click dispatches a pointer click: time-travel when minimized, focus
// otherwise.
func (ind *Indicator) Click() {
	if ind.state == Minimized {
		if ind.handlers.OnTimeTravel != nil {
			ind.handlers.OnTimeTravel(ind)
		}
		return
	}
	if ind.handlers.OnClick != nil {
		ind.handlers.OnClick(ind)
	}
}

// ForceMinimizeImmediate snaps the indicator into its stack slot, cancelling
// any animation in flight.
func (ind *Indicator) ForceMinimizeImmediate() {
	if ind.state == Minimized && !ind.moving {
		return
	}
	ind.cancel()
	ind.pos = ind.collapsed
	ind.state = Minimized
	ind.pulse.Disable()
	ind.transitioning = false
	ind.notifyMinimize()
}

// MoveToMinimizedPosition starts the animated move into the stack slot. The
// state flips to Minimized at once; the pulse stops on arrival.
func (ind *Indicator) MoveToMinimizedPosition() {
	ind.timerGen.Bump()
	ind.state = Minimized
	ind.transitioning = true
	ind.startMove(func() Vec2 { return ind.collapsed }, func() {
		ind.pulse.Disable()
		ind.transitioning = false
	})
	ind.notifyMinimize()
}

// Restore brings a minimized indicator back to its expanded position and
// restarts the countdown.
func (ind *Indicator) Restore() {
	ind.cancel()
	ind.state = Showing
	ind.transitioning = false
	ind.elapsed = 0
	ind.pulse.Enable()
	ind.startMove(func() Vec2 { return ind.expanded }, nil)
	ind.startCountdown()
}

// SetPaused freezes or resumes the auto-minimize countdown. Moves carry on.
func (ind *Indicator) SetPaused(paused bool) {
	ind.paused = paused
}

// SetLayout updates both target positions. A settled indicator snaps to its
// new place; one in motion steers toward the new target.
func (ind *Indicator) SetLayout(expanded, collapsed Vec2) {
	ind.expanded = expanded
	ind.collapsed = collapsed
	if ind.moving {
		return
	}
	switch ind.state {
	case Showing:
		ind.pos = expanded
	case Minimized:
		ind.pos = collapsed
	}
}

func (ind *Indicator) startCountdown() {
	ind.timerGen.Bump()
	ind.sched.Start(&ind.timerGen, func(dt float64) bool {
		if ind.paused {
			return false
		}
		ind.elapsed += dt
		if ind.elapsed < ind.settings.DisplayDuration {
			return false
		}
		ind.MoveToMinimizedPosition()
		return true
	})
}

func (ind *Indicator) startMove(target func() Vec2, arrived func()) {
	ind.moveGen.Bump()
	ind.moving = true
	ind.sched.Start(&ind.moveGen, func(dt float64) bool {
		to := target()
		ind.pos = Lerp(ind.pos, to, dt*ind.settings.MoveRate)
		if ind.pos.Dist(to) > ind.settings.ArrivalEpsilon {
			return false
		}
		ind.pos = to
		ind.moving = false
		if arrived != nil {
			arrived()
		}
		return true
	})
}

// cancel stops every routine this indicator has in flight.
func (ind *Indicator) cancel() {
	ind.moveGen.Bump()
	ind.timerGen.Bump()
	ind.moving = false
}

func (ind *Indicator) notifyMinimize() {
	if ind.handlers.OnMinimize != nil {
		ind.handlers.OnMinimize(ind)
	}
}

// reset returns the indicator to its pooled, inactive state.
func (ind *Indicator) reset() {
	ind.cancel()
	ind.annotation = Annotation{}
	ind.handlers = Handlers{}
	ind.state = JustAppeared
	ind.transitioning = false
	ind.paused = false
	ind.elapsed = 0
	ind.active = false
	ind.pulse.Disable()
}

// advance ages the pulse rings.
func (ind *Indicator) advance(dt float64) {
	ind.pulse.Update(dt)
}

// IsShowing reports whether the indicator is expanded.
func (ind *Indicator) IsShowing() bool { return ind.state == Showing }

// IsMinimizing reports whether the indicator is minimized or on its way.
func (ind *Indicator) IsMinimizing() bool {
	return ind.transitioning || ind.state == Minimized
}

// IsTransitioning reports whether a minimize animation is in flight.
func (ind *Indicator) IsTransitioning() bool { return ind.transitioning }

// IsMoving reports whether any position animation is in flight.
func (ind *Indicator) IsMoving() bool { return ind.moving }

// State returns the lifecycle state.
func (ind *Indicator) State() State { return ind.state }

// Annotation returns the bound annotation.
func (ind *Indicator) Annotation() Annotation { return ind.annotation }

// Position returns the current surface position.
func (ind *Indicator) Position() Vec2 { return ind.pos }

// Expanded returns the expanded target position.
func (ind *Indicator) Expanded() Vec2 { return ind.expanded }

// Collapsed returns the stack slot position.
func (ind *Indicator) Collapsed() Vec2 { return ind.collapsed }

// Paused reports whether the countdown is frozen.
func (ind *Indicator) Paused() bool { return ind.paused }

// Elapsed returns how long the indicator has been counted as visible.
func (ind *Indicator) Elapsed() float64 { return ind.elapsed }

// Active reports whether the indicator is checked out and initialized.
func (ind *Indicator) Active() bool { return ind.active }

// Pulse returns the ring effect.
func (ind *Indicator) Pulse() *Pulse { return &ind.pulse }

// Label returns the mm:ss timestamp label.
func (ind *Indicator) Label() string { return FormatTime(ind.annotation.Timestamp) }
