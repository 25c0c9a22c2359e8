package renderer

import "github.com/pthm-cable/pyre/catalog"

// RecorderSprite is the tracked state of one visual in a Recorder.
type RecorderSprite struct {
	Tex     catalog.TextureID
	X, Y    float32
	SX, SY  float32
	Alpha   float32
	Visible bool
}

// Recorder is an in-memory backend that tracks every visual and counts
// lifecycle events. The reconciler tests assert against it, and the
// offline tuner uses its churn counters as a fitness term.
type Recorder struct {
	next    Handle
	Sprites map[Handle]*RecorderSprite

	Created   int
	Destroyed int

	// DestroyedHandles records double-destroy bugs: destroying an
	// unknown handle increments it without panicking.
	BadDestroys int
}

// NewRecorder creates an empty recording backend.
func NewRecorder() *Recorder {
	return &Recorder{Sprites: make(map[Handle]*RecorderSprite)}
}

// CreateVisual tracks a new visual, visible by default.
func (r *Recorder) CreateVisual(tex catalog.TextureID) Handle {
	h := r.next
	r.next++
	r.Sprites[h] = &RecorderSprite{Tex: tex, SX: 1, SY: 1, Alpha: 1, Visible: true}
	r.Created++
	return h
}

// DestroyVisual removes a tracked visual.
func (r *Recorder) DestroyVisual(h Handle) {
	if _, ok := r.Sprites[h]; !ok {
		r.BadDestroys++
		return
	}
	delete(r.Sprites, h)
	r.Destroyed++
}

// SetPosition records a transform update.
func (r *Recorder) SetPosition(h Handle, x, y float32) {
	if s, ok := r.Sprites[h]; ok {
		s.X, s.Y = x, y
	}
}

// SetScale records a scale update.
func (r *Recorder) SetScale(h Handle, sx, sy float32) {
	if s, ok := r.Sprites[h]; ok {
		s.SX, s.SY = sx, sy
	}
}

// SetAlpha records an alpha update.
func (r *Recorder) SetAlpha(h Handle, alpha float32) {
	if s, ok := r.Sprites[h]; ok {
		s.Alpha = alpha
	}
}

// SetVisible records a visibility update.
func (r *Recorder) SetVisible(h Handle, visible bool) {
	if s, ok := r.Sprites[h]; ok {
		s.Visible = visible
	}
}

// Live returns the number of undestroyed visuals.
func (r *Recorder) Live() int { return len(r.Sprites) }

// VisibleCount returns the number of visible visuals.
func (r *Recorder) VisibleCount() int {
	n := 0
	for _, s := range r.Sprites {
		if s.Visible {
			n++
		}
	}
	return n
}
