package annotation

import "github.com/jwulff/lectern/internal/monitoring"

// PoolStats is a snapshot of pool occupancy.
type PoolStats struct {
	Live      int
	Idle      int
	Allocated int
}

// Pool recycles indicators. It pre-warms a fixed number and grows when
// exhausted.
type Pool struct {
	idle      []*Indicator
	live      map[*Indicator]bool
	allocated int
	prewarm   int
	sched     *Scheduler
	settings  *Settings

	// BeforeRelease runs on an indicator just before it goes back to the
	// idle set, while it still carries its annotation.
	BeforeRelease func(*Indicator)
}

// NewPool allocates settings.PoolSize idle indicators stepped by sched.
func NewPool(sched *Scheduler, settings *Settings) *Pool {
	p := &Pool{
		live:     make(map[*Indicator]bool),
		prewarm:  settings.PoolSize,
		sched:    sched,
		settings: settings,
	}
	for i := 0; i < settings.PoolSize; i++ {
		p.idle = append(p.idle, p.allocate())
	}
	return p
}

func (p *Pool) allocate() *Indicator {
	ind := newIndicator(p.sched, p.settings)
	p.allocated++
	return ind
}

// Acquire hands out an idle indicator, allocating one if none is idle. The
// indicator stays inactive until Initialize is called.
func (p *Pool) Acquire() *Indicator {
	var ind *Indicator
	if n := len(p.idle); n > 0 {
		ind = p.idle[0]
		p.idle[0] = nil
		p.idle = p.idle[1:]
	} else {
		ind = p.allocate()
		monitoring.Logf("[pool] exhausted, grew to %d indicators (pre-warmed %d)", p.allocated, p.prewarm)
	}
	p.live[ind] = true
	return ind
}

// Release deactivates ind and returns it to the idle set. It reports false,
// and does nothing, if ind is not checked out.
func (p *Pool) Release(ind *Indicator) bool {
	if ind == nil || !p.live[ind] {
		monitoring.Logf("[pool] ignoring release of indicator not checked out")
		return false
	}
	if p.BeforeRelease != nil {
		p.BeforeRelease(ind)
	}
	delete(p.live, ind)
	ind.reset()
	p.idle = append(p.idle, ind)
	return true
}

// Owns reports whether ind is currently checked out.
func (p *Pool) Owns(ind *Indicator) bool { return p.live[ind] }

// Stats returns current occupancy. Live+Idle always equals Allocated.
func (p *Pool) Stats() PoolStats {
	return PoolStats{Live: len(p.live), Idle: len(p.idle), Allocated: p.allocated}
}
