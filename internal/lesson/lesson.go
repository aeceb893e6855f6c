// Package lesson reads and writes lesson files: a video's metadata plus its
// time-coded annotations, in YAML. JSON files are read the same way.
package lesson

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwulff/lectern/internal/annotation"
	"github.com/jwulff/lectern/internal/monitoring"
)

// ID is an identifier that may be written as a number or a string.
type ID string

// UnmarshalYAML accepts any scalar.
func (id *ID) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", n.Line)
	}
	*id = ID(n.Value)
	return nil
}

// Seconds is a duration in seconds. It may be written as a number or as
// "m:ss" / "h:mm:ss".
type Seconds float64

// UnmarshalYAML accepts a number or a clock string.
func (s *Seconds) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", n.Line)
	}
	v, err := ParseSeconds(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*s = Seconds(v)
	return nil
}

// ParseSeconds parses "90", "90.5", "1:30" or "1:01:30".
func ParseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("bad duration %q", s)
	}
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("bad duration %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

// Content is an annotation's panel text.
type Content struct {
	Heading string `yaml:"heading"`
	Body    string `yaml:"body"`
}

// Item is one annotation as written in a lesson file. Positions are
// normalized to the video frame with the origin at the bottom-left.
type Item struct {
	ID        ID       `yaml:"id,omitempty"`
	Timestamp *float64 `yaml:"timestamp"`
	X         *float64 `yaml:"bbox_x"`
	Y         *float64 `yaml:"bbox_y"`
	Content   Content  `yaml:"content"`
}

// Lesson is one video and its annotations.
type Lesson struct {
	ID          ID      `yaml:"id,omitempty"`
	TaskID      ID      `yaml:"task_id,omitempty"`
	Title       string  `yaml:"title"`
	Subject     string  `yaml:"subject,omitempty"`
	Author      string  `yaml:"author,omitempty"`
	VideoURL    string  `yaml:"video_url,omitempty"`
	Duration    Seconds `yaml:"duration,omitempty"`
	Annotations []Item  `yaml:"annotations"`
}

// Key returns the lesson's identifier, falling back to task_id.
func (l *Lesson) Key() string {
	if l.ID != "" {
		return string(l.ID)
	}
	return string(l.TaskID)
}

// ErrInvalid marks validation failures.
var ErrInvalid = errors.New("invalid lesson")

// Validate reports every problem in the lesson. A lesson with problems can
// still be loaded; bad items are dropped by Items.
func (l *Lesson) Validate() error {
	var problems []string
	if strings.TrimSpace(l.Title) == "" {
		problems = append(problems, "missing title")
	}
	if l.Duration < 0 {
		problems = append(problems, "negative duration")
	}
	for i, it := range l.Annotations {
		if p := it.problem(); p != "" {
			problems = append(problems, fmt.Sprintf("annotation %d: %s", i, p))
			continue
		}
		if l.Duration > 0 && *it.Timestamp > float64(l.Duration) {
			problems = append(problems, fmt.Sprintf("annotation %d: timestamp %.2f past end of video", i, *it.Timestamp))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (it Item) problem() string {
	switch {
	case it.Timestamp == nil:
		return "missing timestamp"
	case math.IsNaN(*it.Timestamp) || *it.Timestamp < 0:
		return "bad timestamp"
	case it.X == nil || it.Y == nil:
		return "missing position"
	case *it.X < 0 || *it.X > 1 || *it.Y < 0 || *it.Y > 1:
		return "position outside the frame"
	}
	return ""
}

// Items converts the annotations for the engine. Items missing a timestamp
// or position are dropped and logged; positions outside the frame are
// clamped by the engine.
func (l *Lesson) Items() []annotation.Annotation {
	out := make([]annotation.Annotation, 0, len(l.Annotations))
	for i, it := range l.Annotations {
		if it.Timestamp == nil || it.X == nil || it.Y == nil {
			monitoring.Logf("[lesson] %q: dropping annotation %d: %s", l.Title, i, it.problem())
			continue
		}
		out = append(out, annotation.Annotation{
			ID:        string(it.ID),
			Timestamp: *it.Timestamp,
			Position:  annotation.Vec2{X: *it.X, Y: *it.Y},
			Content:   annotation.Content{Heading: it.Content.Heading, Body: it.Content.Body},
		})
	}
	return out
}

// FromItems builds the file form of annotations.
func FromItems(items []annotation.Annotation) []Item {
	out := make([]Item, 0, len(items))
	for _, a := range items {
		ts, x, y := a.Timestamp, a.Position.X, a.Position.Y
		out = append(out, Item{
			ID:        ID(a.ID),
			Timestamp: &ts,
			X:         &x,
			Y:         &y,
			Content:   Content{Heading: a.Content.Heading, Body: a.Content.Body},
		})
	}
	return out
}
