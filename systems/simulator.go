package systems

import (
	"math"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pyre/components"
	"github.com/pthm-cable/pyre/config"
)

// ParticleState is a frame-scoped snapshot of one active particle,
// handed to the clusterer and reconciler so they never touch the ECS.
type ParticleState struct {
	ID        uint64
	X, Y      float32
	Alpha     float32
	Life      float32
	MaxLife   float32
	SizeClass uint8
	Variant   uint8
}

// Simulator owns the particle set: it spawns, integrates and expires
// particles. Nothing else mutates them.
type Simulator struct {
	world  *ecs.World
	mapper *ecs.Map3[components.Position, components.Velocity, components.Ember]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Ember]

	rng  *rand.Rand
	wind *WindField
	cfg  *config.Config

	frame      EmitterFrame
	nextID     uint64
	spawnTimer float32
	interval   float32 // Current spawn interval after admission control
	simTime    float32
	count      int

	// Lifecycle hooks set by the owning scene. OnSpawn lets the
	// reconciler create the particle's single visual at spawn time;
	// OnRelease lets it destroy that visual when the particle is purged.
	OnSpawn   func(id uint64, sizeClass, variant uint8)
	OnRelease func(id uint64)

	scratch []ParticleState
}

// NewSimulator creates a simulator for the configured emitter.
func NewSimulator(cfg *config.Config, seed int64) *Simulator {
	world := ecs.NewWorld()

	s := &Simulator{
		world:    world,
		rng:      rand.New(rand.NewSource(seed)),
		wind:     NewWindField(seed+1, float32(cfg.Particle.WindStrength)),
		cfg:      cfg,
		interval: float32(cfg.Spawn.Interval),
		frame: EmitterFrame{
			X:      cfg.Derived.EmitterX32,
			BaseY:  cfg.Derived.EmitterBaseY32,
			Radius: cfg.Derived.EmitterR32,
			Height: cfg.Derived.EmitterH32,
		},
		mapper: ecs.NewMap3[components.Position, components.Velocity, components.Ember](world),
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Ember](world),
	}

	return s
}

// Frame returns the emitter frame particles are simulated in.
func (s *Simulator) Frame() EmitterFrame { return s.frame }

// Count returns the number of live particles.
func (s *Simulator) Count() int { return s.count }

// SpawnInterval returns the current admission-controlled spawn interval.
func (s *Simulator) SpawnInterval() float32 { return s.interval }

// SpawnOne creates a single particle at the emitter base and returns its id.
// The spawn position is drawn from the emission disk with a squared bias
// that concentrates spawns near the very base of the flame.
func (s *Simulator) SpawnOne() uint64 {
	cfg := s.cfg

	dx := (s.rng.Float32()*2 - 1) * s.frame.Radius
	b := s.rng.Float32()
	dy := (b*b*0.75 - 0.25) * s.frame.Radius

	jitter := float32(cfg.Particle.LaunchJitterDeg) * (s.rng.Float32()*2 - 1)
	angle := (float32(cfg.Particle.LaunchAngleDeg) + jitter) * math.Pi / 180
	speed := float32(cfg.Particle.SpeedMin) +
		s.rng.Float32()*float32(cfg.Particle.SpeedMax-cfg.Particle.SpeedMin)

	life := float32(cfg.Particle.LifeMin) +
		s.rng.Float32()*float32(cfg.Particle.LifeMax-cfg.Particle.LifeMin)

	id := s.nextID
	s.nextID++

	sizeClasses := cfg.Particle.SizeClasses
	if sizeClasses < 1 {
		sizeClasses = 1
	}

	pos := components.Position{X: s.frame.X + dx, Y: s.frame.BaseY + dy}
	vel := components.Velocity{
		X: float32(math.Cos(float64(angle))) * speed,
		Y: float32(math.Sin(float64(angle))) * speed,
	}
	ember := components.Ember{
		ID:        id,
		Life:      life,
		MaxLife:   life,
		Active:    true,
		SizeClass: uint8(s.rng.Intn(sizeClasses)),
		Variant:   uint8(s.rng.Intn(4)),
	}

	s.mapper.NewEntity(&pos, &vel, &ember)
	s.count++

	if s.OnSpawn != nil {
		s.OnSpawn(id, ember.SizeClass, ember.Variant)
	}

	return id
}

// Update advances the simulation by dt. The visible sprite count feeds
// the spawn admission control: the closer it sits to the budget, the
// wider the spawn interval. A non-positive dt is a no-op for the frame,
// as is an unusable emitter.
func (s *Simulator) Update(dt float32, visibleCount int) {
	if dt <= 0 || !s.frame.Valid() {
		return
	}
	cfg := s.cfg
	s.simTime += dt

	s.interval = s.admissionInterval(visibleCount)
	s.spawnTimer += dt
	for s.spawnTimer >= s.interval {
		s.spawnTimer -= s.interval
		s.SpawnOne()
	}

	lift := float32(cfg.Particle.Lift)
	turb := float32(cfg.Particle.Turbulence)
	damping := float32(cfg.Particle.Damping)

	query := s.filter.Query()
	for query.Next() {
		pos, vel, ember := query.Get()
		if !ember.Active {
			continue
		}

		// Constant upward acceleration, turbulence jitter, coherent wind
		vel.Y -= lift * dt
		vel.X += ((s.rng.Float32()*2-1)*turb + s.wind.Lateral(pos.Y, s.simTime)) * dt
		vel.Y += (s.rng.Float32()*2 - 1) * turb * dt

		vel.X *= damping
		vel.Y *= damping

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		ember.Life -= dt
		if ember.Life <= 0 {
			ember.Active = false
		}
	}
}

// admissionInterval widens the spawn interval as the visible sprite
// count approaches the budget, so spawning pressure never keeps forcing
// the clusterer to its largest multipliers.
func (s *Simulator) admissionInterval(visibleCount int) float32 {
	cfg := s.cfg
	base := float32(cfg.Spawn.Interval)
	maxIv := float32(cfg.Spawn.IntervalMax)
	start := float32(cfg.Spawn.PressureStart)

	budget := cfg.Cluster.Budget
	if budget <= 0 || maxIv <= base {
		return base
	}

	pressure := float32(visibleCount) / float32(budget)
	if pressure <= start {
		return base
	}
	t := (pressure - start) / (1 - start)
	if t > 1 {
		t = 1
	}
	return base + (maxIv-base)*t
}

// Cull removes all inactive particles from the live set. Each removal
// fires OnRelease exactly once so the owning scene can destroy the
// particle's single visual.
func (s *Simulator) Cull() {
	// First pass: collect dead entities (must complete before modifying)
	type deadInfo struct {
		entity ecs.Entity
		id     uint64
	}
	var toRemove []deadInfo

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		_, _, ember := query.Get()
		if !ember.Active {
			toRemove = append(toRemove, deadInfo{entity: entity, id: ember.ID})
		}
	}

	// Second pass: remove entities (query iteration complete)
	for _, dead := range toRemove {
		s.mapper.Remove(dead.entity)
		s.count--
		if s.OnRelease != nil {
			s.OnRelease(dead.id)
		}
	}
}

// Snapshot returns the active particles ordered by id. The slice is
// reused across frames; callers must not retain it.
func (s *Simulator) Snapshot() []ParticleState {
	s.scratch = s.scratch[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, _, ember := query.Get()
		if !ember.Active {
			continue
		}
		s.scratch = append(s.scratch, ParticleState{
			ID:        ember.ID,
			X:         pos.X,
			Y:         pos.Y,
			Alpha:     components.Alpha(ember.Life, ember.MaxLife),
			Life:      ember.Life,
			MaxLife:   ember.MaxLife,
			SizeClass: ember.SizeClass,
			Variant:   ember.Variant,
		})
	}

	sort.Slice(s.scratch, func(i, j int) bool {
		return s.scratch[i].ID < s.scratch[j].ID
	})

	return s.scratch
}

// MarkMerged resets every particle's merged flag and sets it for the
// ids present in merged. Called once per frame after reconciliation.
func (s *Simulator) MarkMerged(merged map[uint64]bool) {
	query := s.filter.Query()
	for query.Next() {
		_, _, ember := query.Get()
		ember.Merged = merged[ember.ID]
	}
}

// Destroy releases all particles without firing OnRelease; the owning
// scene tears down visuals itself.
func (s *Simulator) Destroy() {
	var toRemove []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		toRemove = append(toRemove, query.Entity())
	}
	for _, e := range toRemove {
		s.mapper.Remove(e)
	}
	s.count = 0
}
