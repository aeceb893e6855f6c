// Package annotation synchronizes time-coded annotation indicators with video
// playback. Everything in the package is driven from a single frame loop:
// nothing blocks and nothing needs locking.
package annotation

import (
	"fmt"
	"math"

	"github.com/jwulff/lectern/internal/monitoring"
)

// Vec2 is a point or offset in surface space. The origin is the centre of the
// video surface and y grows upward.
type Vec2 struct {
	X float64
	Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dist returns the euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Lerp moves from a toward b by fraction t, clamped to [0,1].
func Lerp(a, b Vec2, t float64) Vec2 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a.Add(b.Sub(a).Scale(t))
}

// Content is the text shown in the detail panel.
type Content struct {
	Heading string
	Body    string
}

// Annotation is one time-coded callout on a video.
type Annotation struct {
	ID        string
	Timestamp float64 // seconds from the start of the video
	Position  Vec2    // normalized to [0,1]x[0,1], origin bottom-left
	Content   Content
}

// FormatTime renders seconds as mm:ss.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Sanitize drops annotations that cannot be placed on a timeline and clamps
// positions into the unit square. A nil or fully malformed list yields an
// empty timeline.
func Sanitize(items []Annotation) []Annotation {
	out := make([]Annotation, 0, len(items))
	for i, a := range items {
		if math.IsNaN(a.Timestamp) || math.IsInf(a.Timestamp, 0) || a.Timestamp < 0 {
			monitoring.Logf("[annotation] skipping item %d (%q): bad timestamp %v", i, a.ID, a.Timestamp)
			continue
		}
		if math.IsNaN(a.Position.X) || math.IsNaN(a.Position.Y) {
			monitoring.Logf("[annotation] skipping item %d (%q): bad position", i, a.ID)
			continue
		}
		a.Position.X = clamp01(a.Position.X)
		a.Position.Y = clamp01(a.Position.Y)
		out = append(out, a)
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
