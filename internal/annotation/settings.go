package annotation

// Settings tunes the engine. Distances are in surface units, times in seconds.
type Settings struct {
	Tolerance        float64 // window around a timestamp in which it counts as reached
	TimeTravelMargin float64 // indicators later than target+margin are cleared on time-travel
	DisplayDuration  float64 // how long an indicator stays expanded before minimizing
	MoveRate         float64 // lerp factor per second for position animations
	ArrivalEpsilon   float64 // a move ends once within this distance of its target
	PoolSize         int     // indicators allocated up front

	StackLeftOffset float64
	StackTopOffset  float64
	StackSpacing    float64
	PanelOffset     Vec2
	HitRadius       float64

	PulseInterval float64
	PulseLifetime float64
	PulseScale    float64

	// PauseOnAppear pauses playback whenever a new annotation is shown so the
	// viewer can read it.
	PauseOnAppear bool
}

// DefaultSettings returns the stock tuning.
func DefaultSettings() Settings {
	return Settings{
		Tolerance:        0.05,
		TimeTravelMargin: 0.1,
		DisplayDuration:  2.0,
		MoveRate:         5,
		ArrivalEpsilon:   1,
		PoolSize:         20,
		StackLeftOffset:  80,
		StackTopOffset:   -80,
		StackSpacing:     70,
		PanelOffset:      Vec2{X: 0, Y: -100},
		HitRadius:        24,
		PulseInterval:    1.0,
		PulseLifetime:    1.0,
		PulseScale:       3.0,
		PauseOnAppear:    true,
	}
}
