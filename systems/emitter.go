// Package systems provides the flame simulation and clustering systems.
package systems

// EmitterFrame describes the vertical extent of the flame body.
// The base sits at BaseY (larger Y is lower on screen) and the tip at
// BaseY - Height. Depth and HeightFrac express a particle's position
// within that span.
type EmitterFrame struct {
	X      float32 // Base emission point
	BaseY  float32
	Radius float32 // Spawn disk radius
	Height float32
}

// Valid reports whether the frame describes a usable emission area.
func (f EmitterFrame) Valid() bool {
	return f.Height > 0 && f.Radius > 0
}

// Depth returns 1 at the flame base, 0 at the tip, clamped outside.
func (f EmitterFrame) Depth(y float32) float32 {
	if f.Height <= 0 {
		return 0
	}
	d := (y - (f.BaseY - f.Height)) / f.Height
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

// HeightFrac returns 0 at the flame base, 1 at the tip.
func (f EmitterFrame) HeightFrac(y float32) float32 {
	return 1 - f.Depth(y)
}
