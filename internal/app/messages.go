package app

import (
	"time"

	"github.com/jwulff/lectern/internal/annotation"
)

// FrameMsg drives one engine frame.
type FrameMsg struct {
	Time time.Time
}

// PollMsg asks for a player refresh.
type PollMsg struct{}

// RefreshedMsg reports the result of a player refresh.
type RefreshedMsg struct {
	Err error
}

// LessonReloadedMsg carries annotations re-read after the lesson file
// changed on disk.
type LessonReloadedMsg struct {
	Annotations []annotation.Annotation
	Err         error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}
