package systems

import "math"

// Orientation buckets a pair cluster by the ratio of its axis deltas.
type Orientation uint8

const (
	OrientHorizontal Orientation = iota
	OrientVertical
	OrientDiagonal
	OrientOverlap
)

// String returns the catalog tag for the orientation.
func (o Orientation) String() string {
	switch o {
	case OrientHorizontal:
		return "horizontal"
	case OrientVertical:
		return "vertical"
	case OrientDiagonal:
		return "diagonal"
	default:
		return "overlap"
	}
}

// DistRange buckets the representative pair distance.
type DistRange uint8

const (
	RangeOverlap DistRange = iota
	RangeNear
	RangeMid
	RangeFar
)

// String returns the catalog tag for the distance bucket.
func (r DistRange) String() string {
	switch r {
	case RangeOverlap:
		return "overlap"
	case RangeNear:
		return "near"
	case RangeMid:
		return "mid"
	default:
		return "far"
	}
}

// Descriptor captures the relative geometry of a cluster's members:
// the axis deltas and distance of the two most distant members, the
// aspect of the bounding spread, and the qualitative buckets the
// catalog is keyed on. Absolute position does not appear here.
type Descriptor struct {
	Count       int
	DX, DY      float32 // Absolute axis deltas of the representative pair
	Dist        float32
	Aspect      float32 // Bounding spread width / height
	AngleDeg    float32 // Representative pair angle, folded to [0, 180)
	Orientation Orientation
	Range       DistRange
}

// Axis-delta ratio separating the horizontal/vertical families from
// the diagonal family.
const orientationRatio = 1.8

// Describe computes the geometry descriptor for a cluster.
// overlap/near/far are the catalog's distance bucket thresholds.
func Describe(ps []ParticleState, members []int, overlap, near, far float32) Descriptor {
	d := Descriptor{Count: len(members)}
	if len(members) < 2 {
		return d
	}

	// Representative pair: the two most distant members. Clusters are
	// budget-bounded, so the quadratic scan stays trivial.
	var bestI, bestJ int
	var bestSq float32 = -1
	for a := 0; a < len(members); a++ {
		for b := a + 1; b < len(members); b++ {
			dx := ps[members[b]].X - ps[members[a]].X
			dy := ps[members[b]].Y - ps[members[a]].Y
			if sq := dx*dx + dy*dy; sq > bestSq {
				bestSq = sq
				bestI, bestJ = members[a], members[b]
			}
		}
	}

	dx := ps[bestJ].X - ps[bestI].X
	dy := ps[bestJ].Y - ps[bestI].Y
	d.DX = float32(math.Abs(float64(dx)))
	d.DY = float32(math.Abs(float64(dy)))
	d.Dist = float32(math.Sqrt(float64(bestSq)))

	angle := float32(math.Atan2(float64(dy), float64(dx))) * 180 / math.Pi
	for angle < 0 {
		angle += 180
	}
	for angle >= 180 {
		angle -= 180
	}
	d.AngleDeg = angle

	// Bounding spread aspect
	minX, maxX := ps[members[0]].X, ps[members[0]].X
	minY, maxY := ps[members[0]].Y, ps[members[0]].Y
	for _, idx := range members[1:] {
		if ps[idx].X < minX {
			minX = ps[idx].X
		}
		if ps[idx].X > maxX {
			maxX = ps[idx].X
		}
		if ps[idx].Y < minY {
			minY = ps[idx].Y
		}
		if ps[idx].Y > maxY {
			maxY = ps[idx].Y
		}
	}
	const eps = 0.001
	d.Aspect = (maxX - minX + eps) / (maxY - minY + eps)

	// Very small distances override the angle buckets entirely
	switch {
	case d.Dist < overlap:
		d.Orientation = OrientOverlap
	case d.DX > orientationRatio*d.DY:
		d.Orientation = OrientHorizontal
	case d.DY > orientationRatio*d.DX:
		d.Orientation = OrientVertical
	default:
		d.Orientation = OrientDiagonal
	}

	switch {
	case d.Dist < overlap:
		d.Range = RangeOverlap
	case d.Dist < near:
		d.Range = RangeNear
	case d.Dist < far:
		d.Range = RangeMid
	default:
		d.Range = RangeFar
	}

	return d
}
