package annotation

import (
	"fmt"
	"sort"
)

// Timeline is the sorted annotation list of one video plus the scan cursor
// that keeps per-frame checks from rescanning the whole list.
type Timeline struct {
	items     []Annotation
	cursor    int
	triggered map[string]float64 // annotation ID -> timestamp
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{triggered: make(map[string]float64)}
}

// Load replaces the annotations, sorting them by timestamp while keeping the
// input order of equal timestamps. Missing or repeated IDs are replaced with
// unique ones so every item triggers on its own. The cursor and triggered set
// are reset.
func (t *Timeline) Load(items []Annotation) {
	sorted := make([]Annotation, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	seen := make(map[string]bool, len(sorted))
	for i := range sorted {
		id := sorted[i].ID
		if id == "" {
			id = fmt.Sprintf("item-%d", i)
		}
		for seen[id] {
			id = fmt.Sprintf("%s-%d", id, i)
		}
		sorted[i].ID = id
		seen[id] = true
	}

	t.items = sorted
	t.cursor = 0
	t.triggered = make(map[string]float64)
}

// Items returns the sorted annotations. The slice must not be modified.
func (t *Timeline) Items() []Annotation { return t.items }

// Len returns the number of annotations.
func (t *Timeline) Len() int { return len(t.items) }

// Cursor returns the index of the first item not yet passed.
func (t *Timeline) Cursor() int { return t.cursor }

// AdvanceAndCollectDue walks forward from the cursor and returns the items
// that became due at now, in timestamp order. Items that were skipped over
// (now is already past timestamp+tolerance) are passed without being emitted.
func (t *Timeline) AdvanceAndCollectDue(now, tolerance float64) []Annotation {
	var due []Annotation
	for t.cursor < len(t.items) {
		a := t.items[t.cursor]
		if now > a.Timestamp+tolerance {
			t.cursor++
			continue
		}
		if now >= a.Timestamp-tolerance {
			if _, ok := t.triggered[a.ID]; !ok {
				t.triggered[a.ID] = a.Timestamp
				due = append(due, a)
			}
			t.cursor++
			continue
		}
		break
	}
	return due
}

// ResyncCursor points the cursor at the first item with timestamp >= target,
// or past the end when every item is earlier.
func (t *Timeline) ResyncCursor(target float64) {
	t.cursor = sort.Search(len(t.items), func(i int) bool {
		return t.items[i].Timestamp >= target
	})
}

// ClearTriggeredAfter forgets every triggered item later than target so it
// fires again when playback reaches it.
func (t *Timeline) ClearTriggeredAfter(target float64) {
	for id, ts := range t.triggered {
		if ts > target {
			delete(t.triggered, id)
		}
	}
}

// MarkTriggered records a as shown.
func (t *Timeline) MarkTriggered(a Annotation) {
	t.triggered[a.ID] = a.Timestamp
}

// IsTriggered reports whether the item with the given ID has been shown since
// the last resync.
func (t *Timeline) IsTriggered(id string) bool {
	_, ok := t.triggered[id]
	return ok
}

// TriggeredCount returns the size of the triggered set.
func (t *Timeline) TriggeredCount() int { return len(t.triggered) }

// Before returns the items with timestamp strictly before target.
func (t *Timeline) Before(target float64) []Annotation {
	n := sort.Search(len(t.items), func(i int) bool {
		return t.items[i].Timestamp >= target
	})
	return t.items[:n]
}

// Marker is an annotation's place on the seek bar.
type Marker struct {
	ID        string
	Timestamp float64
	Fraction  float64 // 0 at the start of the video, 1 at the end
}

// Markers places each item along a video of the given duration. It returns
// nil when the duration is unknown.
func (t *Timeline) Markers(duration float64) []Marker {
	if duration <= 0 {
		return nil
	}
	markers := make([]Marker, 0, len(t.items))
	for _, a := range t.items {
		markers = append(markers, Marker{
			ID:        a.ID,
			Timestamp: a.Timestamp,
			Fraction:  clamp01(a.Timestamp / duration),
		})
	}
	return markers
}
