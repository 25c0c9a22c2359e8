package renderer

import (
	"math"

	"github.com/pthm-cable/pyre/catalog"
	"github.com/pthm-cable/pyre/config"
	"github.com/pthm-cable/pyre/systems"
)

// groupVisual is one live composite sprite bound to a cluster identity.
type groupVisual struct {
	handle Handle
	tex    catalog.TextureID
	seen   bool // Touched this frame; stale groups are destroyed
}

// FrameStats summarizes one reconciliation pass for telemetry.
type FrameStats struct {
	Visible   int // Visible sprites after the pass (singles + groups)
	Singles   int
	Groups    int
	Created   int // Visuals created this frame
	Destroyed int // Visuals destroyed this frame
}

// Reconciler diffs each frame's cluster set against the previous
// frame's visual proxies. It is the exclusive owner of every render
// handle: each creation is matched by exactly one destruction, on cull,
// on identity change, or on teardown.
type Reconciler struct {
	backend Backend
	catalog *catalog.Catalog
	frame   systems.EmitterFrame

	singles map[uint64]Handle
	groups  map[string]*groupVisual
	merged  map[uint64]bool

	widen       float32 // Horizontal scale gain toward the flame tip
	overlapDist float32
	nearDist    float32
	farDist     float32

	visible int
}

// NewReconciler creates a reconciler over the given backend and catalog.
func NewReconciler(backend Backend, cat *catalog.Catalog, cfg *config.Config, frame systems.EmitterFrame) *Reconciler {
	return &Reconciler{
		backend:     backend,
		catalog:     cat,
		frame:       frame,
		singles:     make(map[uint64]Handle),
		groups:      make(map[string]*groupVisual),
		merged:      make(map[uint64]bool),
		widen:       float32(cfg.Particle.WidenFactor),
		overlapDist: float32(cfg.Catalog.OverlapDistance),
		nearDist:    float32(cfg.Catalog.NearDistance),
		farDist:     float32(cfg.Catalog.FarDistance),
	}
}

// EnsureSingle creates the single visual for a particle if missing.
// Normally called once at spawn; Apply also calls it lazily.
func (r *Reconciler) EnsureSingle(id uint64, sizeClass, variant uint8) Handle {
	if h, ok := r.singles[id]; ok {
		return h
	}
	h := r.backend.CreateVisual(r.catalog.SelectSingle(sizeClass, variant))
	r.singles[id] = h
	return h
}

// ReleaseSingle destroys a particle's single visual. Called when the
// simulator purges the particle; destroying twice is impossible because
// the map entry goes with the handle.
func (r *Reconciler) ReleaseSingle(id uint64) {
	if h, ok := r.singles[id]; ok {
		r.backend.DestroyVisual(h)
		delete(r.singles, id)
	}
}

// Apply reconciles this frame's partition against the live visual set.
func (r *Reconciler) Apply(ps []systems.ParticleState, clusters []systems.Cluster) FrameStats {
	var stats FrameStats

	// Merged flags are frame-scoped, never persisted
	clear(r.merged)
	for _, gv := range r.groups {
		gv.seen = false
	}

	// Group pass: reuse by identity, otherwise create
	for _, cl := range clusters {
		if len(cl.Members) < 2 {
			continue
		}

		key := systems.ClusterKey(ps, cl.Members)
		gv, ok := r.groups[key]
		if !ok {
			desc := systems.Describe(ps, cl.Members, r.overlapDist, r.nearDist, r.farDist)
			tex := r.catalog.SelectGroup(desc)
			gv = &groupVisual{handle: r.backend.CreateVisual(tex), tex: tex}
			r.groups[key] = gv
			stats.Created++
		}
		gv.seen = true

		// The anchor is re-derived every frame, so losing last frame's
		// anchor moves the sprite by at most one member's offset.
		anchor := systems.SelectAnchor(ps, cl.Members, r.frame)
		a := &ps[anchor]

		var alphaSum float32
		for _, idx := range cl.Members {
			alphaSum += ps[idx].Alpha
			id := ps[idx].ID
			r.merged[id] = true
			if h, ok := r.singles[id]; ok {
				r.backend.SetVisible(h, false)
			}
		}

		sx, sy := r.scaleFor(a)
		r.backend.SetPosition(gv.handle, a.X, a.Y)
		r.backend.SetScale(gv.handle, sx, sy)
		r.backend.SetAlpha(gv.handle, alphaSum/float32(len(cl.Members)))
		r.backend.SetVisible(gv.handle, true)

		stats.Groups++
	}

	// Any identity absent this frame is dead: a member joined, left or
	// expired, and a new identity took over
	for key, gv := range r.groups {
		if !gv.seen {
			r.backend.DestroyVisual(gv.handle)
			delete(r.groups, key)
			stats.Destroyed++
		}
	}

	// Singles pass: every active unmerged particle shows its own sprite
	for i := range ps {
		p := &ps[i]
		if r.merged[p.ID] {
			continue
		}
		h, ok := r.singles[p.ID]
		if !ok {
			h = r.EnsureSingle(p.ID, p.SizeClass, p.Variant)
			stats.Created++
		}

		sx, sy := r.scaleFor(p)
		r.backend.SetPosition(h, p.X, p.Y)
		r.backend.SetScale(h, sx, sy)
		r.backend.SetAlpha(h, p.Alpha)
		r.backend.SetVisible(h, true)

		stats.Singles++
	}

	r.visible = stats.Singles + stats.Groups
	stats.Visible = r.visible

	return stats
}

// scaleFor computes the anisotropic sprite scale from a particle's
// live state: a pulse that grows then shrinks over the lifetime, with
// the horizontal axis widening toward the flame tip.
func (r *Reconciler) scaleFor(p *systems.ParticleState) (sx, sy float32) {
	progress := float32(0)
	if p.MaxLife > 0 {
		progress = 1 - p.Life/p.MaxLife
	}
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	pulse := float32(math.Sin(float64(progress) * math.Pi))
	s := 0.55 + 0.85*pulse

	sy = s
	sx = s * (1 + r.widen*r.frame.HeightFrac(p.Y))
	return sx, sy
}

// Merged returns the frame's merged-id set, for writing back to the
// particle components. Valid until the next Apply.
func (r *Reconciler) Merged() map[uint64]bool { return r.merged }

// VisibleCount returns the number of sprites shown by the last Apply.
func (r *Reconciler) VisibleCount() int { return r.visible }

// Destroy releases every owned handle.
func (r *Reconciler) Destroy() {
	for id, h := range r.singles {
		r.backend.DestroyVisual(h)
		delete(r.singles, id)
	}
	for key, gv := range r.groups {
		r.backend.DestroyVisual(gv.handle)
		delete(r.groups, key)
	}
	r.visible = 0
}
