// Package playback provides an in-process video clock and a resizable video
// surface for the annotation engine.
package playback

import (
	"errors"
	"fmt"
)

// ErrNoDuration is returned by Prepare when the video length is unknown.
var ErrNoDuration = errors.New("video has no duration")

// Sim is a simulated video player. Time only moves when Advance is called,
// so it runs in lockstep with the frame loop.
type Sim struct {
	duration float64
	now      float64
	rate     float64
	playing  bool
	ready    bool
	err      error
}

// NewSim returns an unprepared player for a video of the given length.
func NewSim(duration float64) *Sim {
	return &Sim{duration: duration, rate: 1}
}

// Prepare readies the player. It fails when the duration is not positive.
func (s *Sim) Prepare() error {
	if s.duration <= 0 {
		s.err = fmt.Errorf("prepare: %w", ErrNoDuration)
		return s.err
	}
	s.ready = true
	s.err = nil
	return nil
}

// Ready reports whether Prepare succeeded.
func (s *Sim) Ready() bool { return s.ready }

// Err returns the last prepare error.
func (s *Sim) Err() error { return s.err }

// Advance moves the clock by dt seconds of wall time scaled by the rate.
// Playback stops at the end of the video.
func (s *Sim) Advance(dt float64) {
	if !s.playing || !s.ready {
		return
	}
	s.now += dt * s.rate
	if s.now >= s.duration {
		s.now = s.duration
		s.playing = false
	}
}

// CurrentTime returns the playback position in seconds.
func (s *Sim) CurrentTime() float64 { return s.now }

// Duration returns the video length in seconds.
func (s *Sim) Duration() float64 { return s.duration }

// IsPlaying reports whether the clock is running.
func (s *Sim) IsPlaying() bool { return s.playing }

// Play starts the clock, rewinding first if playback had reached the end.
func (s *Sim) Play() {
	if !s.ready {
		return
	}
	if s.now >= s.duration {
		s.now = 0
	}
	s.playing = true
}

// Pause stops the clock.
func (s *Sim) Pause() { s.playing = false }

// Seek jumps to t, clamped to the video.
func (s *Sim) Seek(t float64) {
	switch {
	case t < 0:
		t = 0
	case t > s.duration:
		t = s.duration
	}
	s.now = t
}

// SetRate sets the playback speed multiplier. Non-positive rates are ignored.
func (s *Sim) SetRate(rate float64) {
	if rate > 0 {
		s.rate = rate
	}
}

// Rate returns the playback speed multiplier.
func (s *Sim) Rate() float64 { return s.rate }
