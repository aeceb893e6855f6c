package playback

// Area is a video surface whose size is set by the host layout.
type Area struct {
	width  float64
	height float64
}

// NewArea returns a surface of the given size.
func NewArea(width, height float64) *Area {
	return &Area{width: width, height: height}
}

// Size returns the surface size.
func (a *Area) Size() (float64, float64) { return a.width, a.height }

// Resize changes the surface size and reports whether it changed.
func (a *Area) Resize(width, height float64) bool {
	if width == a.width && height == a.height {
		return false
	}
	a.width, a.height = width, height
	return true
}
