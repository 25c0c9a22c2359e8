package renderer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/pyre/catalog"
	"github.com/pthm-cable/pyre/config"
	"github.com/pthm-cable/pyre/systems"
)

func testReconciler(t *testing.T) (*Reconciler, *Recorder) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	rec := NewRecorder()
	cat := catalog.New(rand.New(rand.NewSource(1)), 0)
	frame := systems.EmitterFrame{X: 400, BaseY: 560, Radius: 46, Height: 240}
	return NewReconciler(rec, cat, cfg, frame), rec
}

func testParticles(n int) []systems.ParticleState {
	ps := make([]systems.ParticleState, n)
	for i := range ps {
		ps[i] = systems.ParticleState{
			ID:      uint64(i + 1),
			X:       400 + float32(i)*10,
			Y:       500,
			Alpha:   1,
			Life:    0.5,
			MaxLife: 1,
		}
	}
	return ps
}

func TestApplySinglesOnly(t *testing.T) {
	r, rec := testReconciler(t)
	ps := testParticles(3)

	stats := r.Apply(ps, []systems.Cluster{{Members: []int{0}}, {Members: []int{1}}, {Members: []int{2}}})

	if stats.Singles != 3 || stats.Groups != 0 {
		t.Errorf("stats = %+v, want 3 singles, 0 groups", stats)
	}
	if stats.Visible != 3 {
		t.Errorf("Visible = %d, want 3", stats.Visible)
	}
	if rec.Live() != 3 {
		t.Errorf("backend has %d live visuals, want 3", rec.Live())
	}
	if rec.VisibleCount() != 3 {
		t.Errorf("backend shows %d visuals, want 3", rec.VisibleCount())
	}
}

func TestGroupReplacesMemberSingles(t *testing.T) {
	r, rec := testReconciler(t)
	ps := testParticles(3)

	// Pre-create singles the way spawn hooks do.
	for _, p := range ps {
		r.EnsureSingle(p.ID, p.SizeClass, p.Variant)
	}

	stats := r.Apply(ps, []systems.Cluster{{Members: []int{0, 1}}, {Members: []int{2}}})

	if stats.Groups != 1 || stats.Singles != 1 {
		t.Fatalf("stats = %+v, want 1 group, 1 single", stats)
	}
	// 3 singles live (two hidden) plus 1 group visual.
	if rec.Live() != 4 {
		t.Errorf("backend has %d live visuals, want 4", rec.Live())
	}
	if rec.VisibleCount() != 2 {
		t.Errorf("backend shows %d visuals, want group + free single", rec.VisibleCount())
	}

	merged := r.Merged()
	if !merged[1] || !merged[2] || merged[3] {
		t.Errorf("merged set = %v, want ids 1 and 2", merged)
	}
}

func TestGroupIdentityReusesHandle(t *testing.T) {
	r, rec := testReconciler(t)
	ps := testParticles(2)

	r.Apply(ps, []systems.Cluster{{Members: []int{0, 1}}})
	created := rec.Created

	// Particles drift but the membership is unchanged: the composite
	// sprite must persist, only its transform updating.
	for i := range ps {
		ps[i].X += 5
		ps[i].Y -= 3
	}
	stats := r.Apply(ps, []systems.Cluster{{Members: []int{0, 1}}})

	if rec.Created != created {
		t.Errorf("stable identity created %d new visuals", rec.Created-created)
	}
	if stats.Destroyed != 0 {
		t.Errorf("stable identity destroyed %d visuals", stats.Destroyed)
	}
}

func TestMembershipChangeSwapsGroupVisual(t *testing.T) {
	r, rec := testReconciler(t)
	ps := testParticles(3)

	r.Apply(ps, []systems.Cluster{{Members: []int{0, 1}}, {Members: []int{2}}})
	destroyedBefore := rec.Destroyed

	// A third member joins: new identity, old composite dies.
	stats := r.Apply(ps, []systems.Cluster{{Members: []int{0, 1, 2}}})

	if stats.Created != 1 {
		t.Errorf("Created = %d, want 1 new composite", stats.Created)
	}
	if rec.Destroyed != destroyedBefore+1 {
		t.Errorf("Destroyed = %d, want the stale pair composite gone", rec.Destroyed-destroyedBefore)
	}
	if stats.Groups != 1 || stats.Singles != 0 {
		t.Errorf("stats = %+v, want a single 3-group", stats)
	}
}

func TestGroupAlphaIsMemberMean(t *testing.T) {
	r, rec := testReconciler(t)
	ps := testParticles(2)
	ps[0].Alpha = 1.0
	ps[1].Alpha = 0.5

	r.Apply(ps, []systems.Cluster{{Members: []int{0, 1}}})

	var group *RecorderSprite
	for _, s := range rec.Sprites {
		if s.Visible {
			group = s
		}
	}
	if group == nil {
		t.Fatal("no visible composite sprite")
	}
	if math.Abs(float64(group.Alpha-0.75)) > 0.001 {
		t.Errorf("group alpha = %v, want mean 0.75", group.Alpha)
	}
}

func TestGroupFollowsAnchor(t *testing.T) {
	r, rec := testReconciler(t)
	ps := testParticles(2)
	ps[0].Y = 560 // base member wins the anchor score
	ps[1].Y = 400

	r.Apply(ps, []systems.Cluster{{Members: []int{0, 1}}})

	var group *RecorderSprite
	for _, s := range rec.Sprites {
		if s.Visible {
			group = s
		}
	}
	if group == nil {
		t.Fatal("no visible composite sprite")
	}
	if group.X != ps[0].X || group.Y != ps[0].Y {
		t.Errorf("composite at (%v, %v), want anchor position (%v, %v)",
			group.X, group.Y, ps[0].X, ps[0].Y)
	}
}

func TestReleaseSingleDestroysExactlyOnce(t *testing.T) {
	r, rec := testReconciler(t)

	r.EnsureSingle(7, 0, 0)
	r.ReleaseSingle(7)
	r.ReleaseSingle(7) // second release must be a no-op

	if rec.Destroyed != 1 {
		t.Errorf("Destroyed = %d, want 1", rec.Destroyed)
	}
	if rec.BadDestroys != 0 {
		t.Errorf("BadDestroys = %d, want 0", rec.BadDestroys)
	}
}

func TestEnsureSingleIsIdempotent(t *testing.T) {
	r, rec := testReconciler(t)

	h1 := r.EnsureSingle(7, 1, 2)
	h2 := r.EnsureSingle(7, 1, 2)

	if h1 != h2 {
		t.Errorf("EnsureSingle returned different handles: %v vs %v", h1, h2)
	}
	if rec.Created != 1 {
		t.Errorf("Created = %d, want 1", rec.Created)
	}
}

func TestScaleWidensTowardTip(t *testing.T) {
	r, _ := testReconciler(t)

	base := systems.ParticleState{Y: 560, Life: 0.5, MaxLife: 1}
	tip := systems.ParticleState{Y: 320, Life: 0.5, MaxLife: 1}

	bx, by := r.scaleFor(&base)
	tx, ty := r.scaleFor(&tip)

	if bx != by {
		t.Errorf("base scale should be isotropic, got (%v, %v)", bx, by)
	}
	if tx <= ty {
		t.Errorf("tip scale should widen horizontally, got (%v, %v)", tx, ty)
	}
	if by != ty {
		t.Errorf("vertical scale should not depend on height: %v vs %v", by, ty)
	}
}

func TestScalePulsePeaksMidLife(t *testing.T) {
	r, _ := testReconciler(t)

	young := systems.ParticleState{Y: 560, Life: 1, MaxLife: 1}
	mid := systems.ParticleState{Y: 560, Life: 0.5, MaxLife: 1}
	old := systems.ParticleState{Y: 560, Life: 0.01, MaxLife: 1}

	_, sy0 := r.scaleFor(&young)
	_, sy1 := r.scaleFor(&mid)
	_, sy2 := r.scaleFor(&old)

	if sy1 <= sy0 || sy1 <= sy2 {
		t.Errorf("pulse should peak mid-life: %v, %v, %v", sy0, sy1, sy2)
	}
}

func TestDestroyReleasesEverything(t *testing.T) {
	r, rec := testReconciler(t)
	ps := testParticles(4)
	for _, p := range ps {
		r.EnsureSingle(p.ID, p.SizeClass, p.Variant)
	}
	r.Apply(ps, []systems.Cluster{{Members: []int{0, 1}}, {Members: []int{2}}, {Members: []int{3}}})

	r.Destroy()

	if rec.Live() != 0 {
		t.Errorf("backend has %d live visuals after Destroy, want 0", rec.Live())
	}
	if rec.BadDestroys != 0 {
		t.Errorf("BadDestroys = %d, want 0", rec.BadDestroys)
	}
	if rec.Created != rec.Destroyed {
		t.Errorf("creation/destruction imbalance: %d created, %d destroyed", rec.Created, rec.Destroyed)
	}
}

func TestCulledMemberDissolvesGroup(t *testing.T) {
	r, rec := testReconciler(t)
	ps := testParticles(2)
	for _, p := range ps {
		r.EnsureSingle(p.ID, p.SizeClass, p.Variant)
	}

	r.Apply(ps, []systems.Cluster{{Members: []int{0, 1}}})

	// Particle 2 expires: the simulator releases its single and the
	// next partition only contains the survivor.
	r.ReleaseSingle(2)
	survivors := ps[:1]
	stats := r.Apply(survivors, []systems.Cluster{{Members: []int{0}}})

	if stats.Groups != 0 || stats.Singles != 1 {
		t.Errorf("stats = %+v, want the composite dissolved", stats)
	}
	if stats.Destroyed != 1 {
		t.Errorf("Destroyed = %d, want the stale composite", stats.Destroyed)
	}
	// One single left, visible.
	if rec.Live() != 1 || rec.VisibleCount() != 1 {
		t.Errorf("backend live=%d visible=%d, want 1/1", rec.Live(), rec.VisibleCount())
	}
	if rec.BadDestroys != 0 {
		t.Errorf("BadDestroys = %d", rec.BadDestroys)
	}
}
