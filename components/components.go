// Package components defines ECS components for the flame simulation.
package components

// Position represents a particle's world position.
type Position struct {
	X, Y float32
}

// Velocity represents a particle's velocity.
type Velocity struct {
	X, Y float32
}

// Ember holds per-particle simulation state.
// ID is assigned from a simulator-local counter and never reused; the
// reconciler keys single visuals and cluster identities on it.
type Ember struct {
	ID      uint64
	Life    float32 // Counts down from MaxLife; particle deactivates at <= 0
	MaxLife float32
	Active  bool
	Merged  bool // Recomputed every frame by the reconciler, never persisted

	SizeClass uint8 // Picked at spawn, selects the single-sprite family
	Variant   uint8 // Baked variant within the family
}

// Alpha returns the render opacity for the given remaining life.
// Particles stay fully opaque through their first half-life and fade
// linearly through the second.
func Alpha(life, maxLife float32) float32 {
	if maxLife <= 0 {
		return 0
	}
	a := 2 * life / maxLife
	if a > 1 {
		return 1
	}
	if a < 0 {
		return 0
	}
	return a
}
