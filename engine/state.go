package engine

// State is the runtime state of one animation
//
//	idle → playing → {paused ⇄ playing} → idle
//
// Progress is advisory; no transition reads it
type State struct {
	Playing  bool
	Paused   bool
	Progress float64
}

// Idle reports whether the animation is neither playing nor paused
func (s State) Idle() bool { return !s.Playing && !s.Paused }
