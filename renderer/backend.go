// Package renderer maps the simulation's bounded visual set onto draw
// primitives. The scene layer is consumed as a capability: create,
// transform, show and destroy visuals behind the Backend interface.
package renderer

import "github.com/pthm-cable/pyre/catalog"

// Handle identifies one visual owned by a backend. Handles are opaque;
// the reconciler is the only code that holds them.
type Handle int32

// NoHandle is the zero value for an absent visual.
const NoHandle Handle = -1

// Backend is the consumed rendering capability.
type Backend interface {
	CreateVisual(tex catalog.TextureID) Handle
	DestroyVisual(h Handle)
	SetPosition(h Handle, x, y float32)
	SetScale(h Handle, sx, sy float32)
	SetAlpha(h Handle, alpha float32)
	SetVisible(h Handle, visible bool)
}

// NullBackend satisfies Backend without touching a window. Used for
// headless runs where only the clustering behavior matters.
type NullBackend struct {
	next Handle
	live int
}

// NewNullBackend creates a no-op backend.
func NewNullBackend() *NullBackend { return &NullBackend{} }

// CreateVisual allocates a handle.
func (b *NullBackend) CreateVisual(catalog.TextureID) Handle {
	h := b.next
	b.next++
	b.live++
	return h
}

// DestroyVisual releases a handle.
func (b *NullBackend) DestroyVisual(Handle) { b.live-- }

// SetPosition is a no-op.
func (b *NullBackend) SetPosition(Handle, float32, float32) {}

// SetScale is a no-op.
func (b *NullBackend) SetScale(Handle, float32, float32) {}

// SetAlpha is a no-op.
func (b *NullBackend) SetAlpha(Handle, float32) {}

// SetVisible is a no-op.
func (b *NullBackend) SetVisible(Handle, bool) {}

// Live returns the number of undestroyed visuals.
func (b *NullBackend) Live() int { return b.live }
