package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 1.0 / 64

var (
	testExpanded  = Vec2{X: 120, Y: 40}
	testCollapsed = Vec2{X: -320, Y: 220}
)

type indicatorRig struct {
	sched     *Scheduler
	settings  *Settings
	pool      *Pool
	minimized int
	clicks    int
	travels   int
}

func newIndicatorRig() *indicatorRig {
	s := DefaultSettings()
	r := &indicatorRig{sched: NewScheduler(), settings: &s}
	r.pool = NewPool(r.sched, r.settings)
	return r
}

func (r *indicatorRig) handlers() Handlers {
	return Handlers{
		OnClick:      func(*Indicator) { r.clicks++ },
		OnTimeTravel: func(*Indicator) { r.travels++ },
		OnMinimize:   func(*Indicator) { r.minimized++ },
	}
}

func (r *indicatorRig) spawn(force bool) *Indicator {
	ind := r.pool.Acquire()
	ind.Initialize(at("a", 2), testExpanded, testCollapsed, r.handlers(), force)
	return ind
}

func (r *indicatorRig) frames(n int) {
	for i := 0; i < n; i++ {
		r.sched.Run(frame)
	}
}

func TestInitializeForceMinimizedSnapsWithoutAnimation(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(true)

	assert.Equal(t, Minimized, ind.State())
	assert.Equal(t, testCollapsed, ind.Position())
	assert.False(t, ind.Pulse().Enabled())
	assert.False(t, ind.IsTransitioning())
	assert.False(t, ind.IsMoving())
	assert.Equal(t, 0, r.sched.Len(), "no routine should be scheduled")
	assert.Equal(t, 1, r.minimized)
}

func TestInitializeShowing(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(false)

	assert.Equal(t, Showing, ind.State())
	assert.Equal(t, testExpanded, ind.Position())
	assert.True(t, ind.Pulse().Enabled())
	assert.True(t, ind.IsShowing())
	assert.False(t, ind.IsMinimizing())
	assert.Equal(t, "00:02", ind.Label())
}

func TestAutoMinimizeAfterDisplayDuration(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(false)

	r.frames(127)
	require.Equal(t, Showing, ind.State())

	r.frames(1)
	assert.Equal(t, Minimized, ind.State())
	assert.True(t, ind.IsTransitioning(), "transition flag is set as the move starts")
	assert.True(t, ind.IsMinimizing())
	assert.True(t, ind.Pulse().Enabled(), "pulse runs until arrival")
	assert.Equal(t, 1, r.minimized, "minimize callback fires at call time")

	r.frames(1)
	assert.NotEqual(t, testExpanded, ind.Position(), "move has begun")

	r.frames(400)
	assert.Equal(t, testCollapsed, ind.Position())
	assert.False(t, ind.IsTransitioning())
	assert.False(t, ind.Pulse().Enabled())
}

func TestPausedCountdownDoesNotAdvance(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(false)
	ind.SetPaused(true)

	r.frames(500)
	assert.Equal(t, Showing, ind.State())
	assert.Equal(t, 0.0, ind.Elapsed())

	ind.SetPaused(false)
	r.frames(128)
	assert.Equal(t, Minimized, ind.State())
}

func TestReinitializeResetsTransientFlags(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(false)
	r.frames(10)
	ind.SetPaused(true)
	ind.MoveToMinimizedPosition()
	require.True(t, ind.IsTransitioning())

	ind.Initialize(at("b", 7), Vec2{X: 1, Y: 1}, Vec2{X: 2, Y: 2}, r.handlers(), false)

	assert.False(t, ind.Paused())
	assert.False(t, ind.IsTransitioning())
	assert.Equal(t, 0.0, ind.Elapsed())
	assert.Equal(t, Showing, ind.State())
	assert.Equal(t, Vec2{X: 1, Y: 1}, ind.Position())

	// The cancelled move must not drag the new binding toward the old slot.
	r.frames(5)
	assert.Equal(t, Vec2{X: 1, Y: 1}, ind.Position())
}

func TestForceMinimizeCancelsMoveSynchronously(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(false)
	ind.Restore()
	ind.MoveToMinimizedPosition()
	r.frames(3)
	require.NotEqual(t, testCollapsed, ind.Position())

	before := r.minimized
	ind.ForceMinimizeImmediate()

	assert.Equal(t, testCollapsed, ind.Position())
	assert.Equal(t, Minimized, ind.State())
	assert.False(t, ind.Pulse().Enabled())
	assert.False(t, ind.IsTransitioning())
	assert.False(t, ind.IsMoving())
	assert.Equal(t, before+1, r.minimized)

	ind.SetLayout(testExpanded, Vec2{X: 10, Y: 10})
	r.frames(5)
	assert.Equal(t, Vec2{X: 10, Y: 10}, ind.Position())
	assert.Greater(t, r.sched.Discarded(), 0)
}

func TestForceMinimizeOnSettledMinimizedIsNoop(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(true)
	before := r.minimized

	ind.ForceMinimizeImmediate()
	assert.Equal(t, before, r.minimized)
}

func TestStaleMoveAfterPoolRecycle(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(false)
	ind.MoveToMinimizedPosition()
	r.frames(2)

	require.True(t, r.pool.Release(ind))
	again := r.pool.Acquire()
	for again != ind {
		again = r.pool.Acquire()
	}
	slot := Vec2{X: -100, Y: 100}
	ind.Initialize(at("b", 9), Vec2{}, slot, r.handlers(), true)

	r.frames(20)
	assert.Equal(t, slot, ind.Position())
	assert.Equal(t, Minimized, ind.State())
}

func TestRestore(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(true)
	ind.SetPaused(true)

	ind.Restore()
	assert.Equal(t, Showing, ind.State())
	assert.True(t, ind.Pulse().Enabled(), "pulse comes back before the move completes")
	assert.False(t, ind.IsMinimizing())
	assert.Equal(t, 0.0, ind.Elapsed())
	assert.True(t, ind.Paused(), "restore keeps the pause state")

	r.frames(400)
	assert.Equal(t, testExpanded, ind.Position())
	assert.Equal(t, Showing, ind.State())

	ind.SetPaused(false)
	r.frames(128)
	assert.Equal(t, Minimized, ind.State())
}

func TestClickDispatch(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(false)

	ind.Click()
	assert.Equal(t, 1, r.clicks)
	assert.Equal(t, 0, r.travels)

	ind.ForceMinimizeImmediate()
	ind.Click()
	assert.Equal(t, 1, r.clicks)
	assert.Equal(t, 1, r.travels)
}

func TestSetLayoutSteersMoveInFlight(t *testing.T) {
	r := newIndicatorRig()
	ind := r.spawn(false)
	ind.MoveToMinimizedPosition()
	r.frames(2)

	newSlot := Vec2{X: -320, Y: 150}
	ind.SetLayout(testExpanded, newSlot)
	assert.NotEqual(t, newSlot, ind.Position(), "moving indicator does not snap")

	r.frames(400)
	assert.Equal(t, newSlot, ind.Position())
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{2.9, "00:02"},
		{65, "01:05"},
		{3599.5, "59:59"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
