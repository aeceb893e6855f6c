package annotation

// Step advances a routine by dt seconds and reports whether it has finished.
type Step func(dt float64) bool

// Generation tags routine activations. Bumping it cancels every routine
// started under an older value: their steps never run again.
type Generation struct {
	n uint64
}

// Bump invalidates all routines started under the current value.
func (g *Generation) Bump() { g.n++ }

// Current returns the current value.
func (g *Generation) Current() uint64 { return g.n }

type task struct {
	owner *Generation
	gen   uint64
	step  Step
}

func (t task) stale() bool { return t.owner.n != t.gen }

// Scheduler runs resumable per-frame routines cooperatively.
type Scheduler struct {
	tasks   []task
	pending []task
	running bool
	stale   int
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Start registers step under owner's current generation. Routines started
// while Run is executing first step on the following frame.
func (s *Scheduler) Start(owner *Generation, step Step) {
	t := task{owner: owner, gen: owner.n, step: step}
	if s.running {
		s.pending = append(s.pending, t)
		return
	}
	s.tasks = append(s.tasks, t)
}

// Run steps every live routine once. Cancelled routines are dropped without
// being stepped.
func (s *Scheduler) Run(dt float64) {
	s.running = true
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		// A step earlier in this frame may have cancelled t.
		if t.stale() {
			s.stale++
			continue
		}
		if !t.step(dt) {
			kept = append(kept, t)
		}
	}
	// Zero the tail so finished closures can be collected.
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = task{}
	}
	s.tasks = append(kept, s.pending...)
	s.pending = s.pending[:0]
	s.running = false
}

// Len returns the number of routines still registered, cancelled ones
// included until the next Run sweeps them.
func (s *Scheduler) Len() int { return len(s.tasks) + len(s.pending) }

// Discarded returns how many cancelled routines have been dropped.
func (s *Scheduler) Discarded() int { return s.stale }
