package annotation

// Player is the video source the controller follows. CurrentTime is read
// every frame; only Seek may move it backward.
type Player interface {
	CurrentTime() float64
	Duration() float64
	IsPlaying() bool
	Play()
	Pause()
	Seek(t float64)
}

// Surface is the area the video is drawn on.
type Surface interface {
	Size() (width, height float64)
}
