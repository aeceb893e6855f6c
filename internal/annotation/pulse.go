package annotation

import "math"

// Ring is one expanding ripple around an indicator.
type Ring struct {
	Age float64
}

// Pulse emits sonar rings at a fixed interval while enabled.
type Pulse struct {
	interval float64
	lifetime float64
	scale    float64

	enabled bool
	timer   float64
	rings   []Ring
}

// NewPulse returns a disabled pulse.
func NewPulse(interval, lifetime, scale float64) Pulse {
	return Pulse{interval: interval, lifetime: lifetime, scale: scale}
}

// Enable starts emitting. The first ring goes out on the next update.
func (p *Pulse) Enable() {
	if p.enabled {
		return
	}
	p.enabled = true
	p.timer = p.interval
}

// Disable stops emitting and removes any rings in flight.
func (p *Pulse) Disable() {
	p.enabled = false
	p.timer = 0
	p.rings = p.rings[:0]
}

// Enabled reports whether the pulse is emitting.
func (p *Pulse) Enabled() bool { return p.enabled }

// Update ages rings, drops expired ones and emits a new ring when due.
func (p *Pulse) Update(dt float64) {
	kept := p.rings[:0]
	for _, r := range p.rings {
		r.Age += dt
		if r.Age < p.lifetime {
			kept = append(kept, r)
		}
	}
	p.rings = kept

	if !p.enabled {
		return
	}
	p.timer += dt
	if p.timer >= p.interval {
		p.timer = 0
		p.rings = append(p.rings, Ring{})
	}
}

// Rings returns the live rings, oldest first.
func (p *Pulse) Rings() []Ring { return p.rings }

// Progress returns how far through its life r is, eased out with a sine.
func (p *Pulse) Progress(r Ring) float64 {
	if p.lifetime <= 0 {
		return 1
	}
	t := math.Min(r.Age/p.lifetime, 1)
	return math.Sin(t * math.Pi / 2)
}

// RingScale returns r's size relative to the indicator.
func (p *Pulse) RingScale(r Ring) float64 {
	return 1 + (p.scale-1)*p.Progress(r)
}

// RingAlpha returns r's opacity, 1 when emitted and 0 at the end of its life.
func (p *Pulse) RingAlpha(r Ring) float64 {
	return 1 - p.Progress(r)
}
