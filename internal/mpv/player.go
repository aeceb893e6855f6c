package mpv

import (
	"errors"
	"sync"

	"github.com/jwulff/lectern/internal/monitoring"
)

// Player adapts a running mpv to the annotation engine. Property reads are
// served from a cache filled by Refresh, so the frame loop never waits on
// the socket to read the clock.
type Player struct {
	client *Client

	mu       sync.Mutex
	now      float64
	duration float64
	rate     float64
	playing  bool
	ready    bool
	err      error
	writes   uint64 // bumped by every local Play/Pause/Seek
}

// NewPlayer wraps a connected client.
func NewPlayer(c *Client) *Player {
	return &Player{client: c, rate: 1}
}

// Refresh polls mpv for position, length and pause state. It is safe to call
// from a goroutine other than the frame loop. A poll that raced a local
// Play/Pause/Seek is discarded.
func (p *Player) Refresh() error {
	p.mu.Lock()
	startWrites := p.writes
	p.mu.Unlock()

	dur, err := p.client.GetFloat(PropDuration)
	if errors.Is(err, ErrCommand) {
		// No file loaded yet.
		return nil
	}
	if err != nil {
		return p.fail(err)
	}
	pos, err := p.client.GetFloat(PropTimePos)
	if err != nil && !errors.Is(err, ErrCommand) {
		return p.fail(err)
	}
	paused, err := p.client.GetBool(PropPause)
	if err != nil {
		return p.fail(err)
	}

	var endErr error
	for _, ev := range p.client.Events() {
		if ev.Event == EventEndFile && ev.Reason == "error" {
			endErr = errors.New("playback ended with error")
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if endErr != nil {
		p.err = endErr
	}
	if p.writes != startWrites {
		return nil
	}
	p.duration = dur
	p.now = pos
	p.playing = !paused
	if dur > 0 {
		p.ready = true
	}
	return nil
}

// fail records err as fatal, except for timeouts: the client has
// reconnected and the next poll tries again.
func (p *Player) fail(err error) error {
	monitoring.Logf("[mpv] refresh: %v", err)
	if errors.Is(err, ErrTimeout) {
		return err
	}
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	return err
}

// Advance moves the cached clock forward between polls.
func (p *Player) Advance(dt float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.now += dt * p.rate
	if p.duration > 0 && p.now > p.duration {
		p.now = p.duration
	}
}

// Ready reports whether mpv has a file loaded with a known length.
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Err returns the last transport or playback error.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// CurrentTime returns the cached playback position.
func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

// Duration returns the cached video length.
func (p *Player) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// IsPlaying reports the cached play state.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Play unpauses mpv.
func (p *Player) Play() {
	p.setLocal(func() { p.playing = true })
	if err := p.client.SetProperty(PropPause, false); err != nil {
		monitoring.Logf("[mpv] play: %v", err)
	}
}

// Pause pauses mpv.
func (p *Player) Pause() {
	p.setLocal(func() { p.playing = false })
	if err := p.client.SetProperty(PropPause, true); err != nil {
		monitoring.Logf("[mpv] pause: %v", err)
	}
}

// Seek jumps mpv to t seconds.
func (p *Player) Seek(t float64) {
	p.setLocal(func() { p.now = t })
	if err := p.client.Seek(t); err != nil {
		monitoring.Logf("[mpv] seek to %.2f: %v", t, err)
	}
}

// SetRate changes the playback speed. Non-positive rates are ignored.
func (p *Player) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	p.setLocal(func() { p.rate = rate })
	if err := p.client.SetProperty(PropSpeed, rate); err != nil {
		monitoring.Logf("[mpv] speed %.2f: %v", rate, err)
	}
}

// Rate returns the playback speed.
func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

func (p *Player) setLocal(f func()) {
	p.mu.Lock()
	f()
	p.writes++
	p.mu.Unlock()
}
