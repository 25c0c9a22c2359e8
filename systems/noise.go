package systems

import (
	"math"
	"math/rand"
)

// WindField produces coherent lateral gusts for the flame body using
// gradient noise. Independent random turbulence lives in the simulator;
// this field adds the slow side-to-side sway shared by nearby particles.
type WindField struct {
	perm     [512]int
	strength float32
	scale    float64 // Spatial frequency along the flame height
	speed    float64 // Temporal frequency
}

// NewWindField creates a wind field with the given gust strength.
func NewWindField(seed int64, strength float32) *WindField {
	w := &WindField{
		strength: strength,
		scale:    0.004,
		speed:    0.35,
	}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	for i := 0; i < 256; i++ {
		w.perm[i] = perm[i]
		w.perm[i+256] = perm[i]
	}

	return w
}

// Lateral returns the horizontal gust acceleration at height y and time t.
func (w *WindField) Lateral(y, t float32) float32 {
	if w == nil {
		return 0
	}
	n := w.noise2D(float64(y)*w.scale, float64(t)*w.speed)
	return float32(n) * w.strength
}

// noise2D returns gradient noise in roughly [-1, 1].
func (w *WindField) noise2D(x, y float64) float64 {
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255

	x -= math.Floor(x)
	y -= math.Floor(y)

	u := fade(x)
	v := fade(y)

	a := w.perm[X] + Y
	b := w.perm[X+1] + Y

	return lerp64(v,
		lerp64(u, grad2D(w.perm[a], x, y), grad2D(w.perm[b], x-1, y)),
		lerp64(u, grad2D(w.perm[a+1], x, y-1), grad2D(w.perm[b+1], x-1, y-1)))
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp64(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad2D(hash int, x, y float64) float64 {
	h := hash & 7
	u := x
	if h >= 4 {
		u = y
	}
	v := y
	if h >= 4 {
		v = x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -2 * v
	} else {
		v = 2 * v
	}
	return u + v
}
