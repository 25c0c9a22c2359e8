package systems

import (
	"math"
	"testing"
)

const (
	testOverlap = 8
	testNear    = 18
	testFar     = 40
)

func TestDescribeSingleMember(t *testing.T) {
	ps := particlesAt([2]float32{400, 500})
	d := Describe(ps, []int{0}, testOverlap, testNear, testFar)
	if d.Count != 1 {
		t.Errorf("Count = %d, want 1", d.Count)
	}
	if d.Dist != 0 || d.DX != 0 || d.DY != 0 {
		t.Errorf("singleton descriptor has non-zero geometry: %+v", d)
	}
}

func TestDescribePairBuckets(t *testing.T) {
	tests := []struct {
		name        string
		a, b        [2]float32
		orientation Orientation
		distRange   DistRange
	}{
		{"horizontal far", [2]float32{400, 500}, [2]float32{445, 502}, OrientHorizontal, RangeFar},
		{"vertical near", [2]float32{400, 500}, [2]float32{401, 515}, OrientVertical, RangeNear},
		{"diagonal mid", [2]float32{400, 500}, [2]float32{420, 520}, OrientDiagonal, RangeMid},
		{"overlap", [2]float32{400, 500}, [2]float32{403, 502}, OrientOverlap, RangeOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := particlesAt(tt.a, tt.b)
			d := Describe(ps, []int{0, 1}, testOverlap, testNear, testFar)
			if d.Orientation != tt.orientation {
				t.Errorf("Orientation = %v, want %v", d.Orientation, tt.orientation)
			}
			if d.Range != tt.distRange {
				t.Errorf("Range = %v, want %v", d.Range, tt.distRange)
			}
		})
	}
}

func TestDescribeNearHorizontalPair(t *testing.T) {
	// Mostly-horizontal separation well past the far threshold.
	ps := particlesAt([2]float32{400, 500}, [2]float32{420, 502})
	d := Describe(ps, []int{0, 1}, testOverlap, testNear, 20)

	if d.Orientation != OrientHorizontal {
		t.Errorf("Orientation = %v, want horizontal", d.Orientation)
	}
	if d.Range != RangeFar {
		t.Errorf("Range = %v, want far", d.Range)
	}
	want := float32(math.Sqrt(20*20 + 2*2))
	if math.Abs(float64(d.Dist-want)) > 0.01 {
		t.Errorf("Dist = %v, want %v", d.Dist, want)
	}
}

func TestDescribeAngleFolded(t *testing.T) {
	// The pair angle must land in [0, 180) regardless of member order.
	ps := particlesAt([2]float32{400, 500}, [2]float32{380, 520})
	d := Describe(ps, []int{0, 1}, testOverlap, testNear, testFar)
	if d.AngleDeg < 0 || d.AngleDeg >= 180 {
		t.Errorf("AngleDeg = %v, want [0, 180)", d.AngleDeg)
	}

	flipped := particlesAt([2]float32{380, 520}, [2]float32{400, 500})
	d2 := Describe(flipped, []int{0, 1}, testOverlap, testNear, testFar)
	if math.Abs(float64(d.AngleDeg-d2.AngleDeg)) > 0.01 {
		t.Errorf("angle depends on member order: %v vs %v", d.AngleDeg, d2.AngleDeg)
	}
}

func TestDescribeRepresentativePair(t *testing.T) {
	// Three members: the descriptor reflects the two most distant ones.
	ps := particlesAt(
		[2]float32{400, 500},
		[2]float32{410, 500},
		[2]float32{460, 500},
	)
	d := Describe(ps, []int{0, 1, 2}, testOverlap, testNear, testFar)
	if d.Count != 3 {
		t.Errorf("Count = %d, want 3", d.Count)
	}
	if math.Abs(float64(d.Dist-60)) > 0.01 {
		t.Errorf("Dist = %v, want 60 (most distant pair)", d.Dist)
	}
}

func TestDescribeAspect(t *testing.T) {
	// A wide, flat triple has aspect well above 1.
	ps := particlesAt(
		[2]float32{400, 500},
		[2]float32{440, 502},
		[2]float32{480, 500},
	)
	d := Describe(ps, []int{0, 1, 2}, testOverlap, testNear, testFar)
	if d.Aspect < 10 {
		t.Errorf("Aspect = %v, want wide (>10)", d.Aspect)
	}
}

func TestOrientationStrings(t *testing.T) {
	if OrientHorizontal.String() != "horizontal" ||
		OrientVertical.String() != "vertical" ||
		OrientDiagonal.String() != "diagonal" ||
		OrientOverlap.String() != "overlap" {
		t.Error("orientation tags do not match catalog keys")
	}
	if RangeOverlap.String() != "overlap" || RangeNear.String() != "near" ||
		RangeMid.String() != "mid" || RangeFar.String() != "far" {
		t.Error("range tags do not match catalog keys")
	}
}
