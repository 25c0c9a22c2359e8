// Package game owns the frame loop of the flame renderer: it sequences
// simulate, cull, cluster, reconcile and render inside each tick and
// wires the telemetry sinks.
package game

import (
	"math/rand"

	"github.com/pthm-cable/pyre/catalog"
	"github.com/pthm-cable/pyre/config"
	"github.com/pthm-cable/pyre/renderer"
	"github.com/pthm-cable/pyre/systems"
	"github.com/pthm-cable/pyre/telemetry"
)

// Options configures a game instance.
type Options struct {
	Seed           int64
	Headless       bool
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	StreamAddr     string // Empty disables the live stats stream

	// Config overrides the global config when set. Used by the tuner
	// to evaluate candidate parameter sets without touching globals.
	Config *config.Config

	// StatsCallback receives every closed stats window, in addition to
	// any CSV output.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete renderer state.
type Game struct {
	cfg *config.Config
	rng *rand.Rand

	sim       *systems.Simulator
	clusterer *systems.Clusterer
	catalog   *catalog.Catalog
	reconcile *renderer.Reconciler

	backend   renderer.Backend
	rlBackend *renderer.RaylibBackend // nil in headless mode

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	stream    *telemetry.StreamServer

	tick     int32
	paused   bool
	logStats bool

	// Debug overlay state
	debugMode    bool
	showGrid     bool
	showAnchors  bool
	screenWidth  float32
	screenHeight float32

	// Last frame's outcome, kept for the overlay and HUD
	lastPartition systems.PartitionStats
	lastFrame     renderer.FrameStats
	lastSnapshot  []systems.ParticleState
	lastClusters  []systems.Cluster
}

// NewGameWithOptions creates a game instance.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	g := &Game{
		cfg:          cfg,
		rng:          rand.New(rand.NewSource(opts.Seed)),
		logStats:     opts.LogStats,
		showAnchors:  true,
		screenWidth:  cfg.Derived.ScreenW32,
		screenHeight: cfg.Derived.ScreenH32,
	}

	g.sim = systems.NewSimulator(cfg, opts.Seed)
	g.clusterer = systems.NewClusterer(cfg, g.sim.Frame())
	g.catalog = catalog.New(rand.New(rand.NewSource(opts.Seed+2)), float32(cfg.Catalog.ScatterChance))

	if opts.Headless {
		g.backend = renderer.NewNullBackend()
	} else {
		g.rlBackend = renderer.NewRaylibBackend()
		g.backend = g.rlBackend
	}
	g.reconcile = renderer.NewReconciler(g.backend, g.catalog, cfg, g.sim.Frame())

	// The reconciler owns every visual; the simulator only signals
	// particle lifetime through these hooks.
	g.sim.OnSpawn = func(id uint64, sizeClass, variant uint8) {
		g.reconcile.EnsureSingle(id, sizeClass, variant)
	}
	g.sim.OnRelease = g.reconcile.ReleaseSingle

	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	windowSec := opts.StatsWindowSec
	if windowSec <= 0 {
		windowSec = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(windowSec, cfg.Physics.DT, opts.LogStats)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		Logf("output disabled: %v", err)
	} else {
		g.output = output
	}
	g.collector.OnWindow = func(ws telemetry.WindowStats) {
		if err := g.output.WriteStats(ws); err != nil {
			Logf("stats output failed: %v", err)
		}
		if opts.StatsCallback != nil {
			opts.StatsCallback(ws)
		}
	}

	if opts.StreamAddr != "" {
		g.stream = telemetry.NewStreamServer(opts.StreamAddr)
		g.stream.Start()
	}

	return g
}

// Update runs one graphical frame: input, then a simulation step
// unless paused.
func (g *Game) Update() {
	g.handleInput()
	if g.paused {
		return
	}
	g.step(g.cfg.Derived.DT32)
}

// UpdateHeadless runs one simulation step without input handling.
func (g *Game) UpdateHeadless() {
	g.step(g.cfg.Derived.DT32)
}

// step advances the whole pipeline by dt.
func (g *Game) step(dt float32) {
	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseSimulate)
	g.sim.Update(dt, g.reconcile.VisibleCount())

	g.perf.StartPhase(telemetry.PhaseCull)
	g.sim.Cull()

	g.perf.StartPhase(telemetry.PhaseCluster)
	ps := g.sim.Snapshot()
	clusters, pstats := g.clusterer.Partition(ps)

	g.perf.StartPhase(telemetry.PhaseReconcile)
	fstats := g.reconcile.Apply(ps, clusters)
	g.sim.MarkMerged(g.reconcile.Merged())

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.lastPartition = pstats
	g.lastFrame = fstats
	g.lastSnapshot = append(g.lastSnapshot[:0], ps...)
	g.lastClusters = clusters

	g.collector.Record(g.tick, telemetry.FrameSample{
		Particles:       len(ps),
		Clusters:        pstats.ClusterCount,
		Singles:         fstats.Singles,
		Groups:          fstats.Groups,
		Visible:         fstats.Visible,
		MultiplierIndex: pstats.MultiplierIndex,
		Attempts:        pstats.Attempts,
		OverBudget:      pstats.OverBudget,
		Created:         fstats.Created,
		Destroyed:       fstats.Destroyed,
	})

	if g.stream != nil && g.tick%6 == 0 {
		g.stream.Publish(telemetry.Snapshot{
			Tick:            g.tick,
			Particles:       len(ps),
			Clusters:        pstats.ClusterCount,
			Singles:         fstats.Singles,
			Groups:          fstats.Groups,
			Visible:         fstats.Visible,
			Budget:          g.clusterer.Budget,
			MultiplierIndex: pstats.MultiplierIndex,
			OverBudget:      pstats.OverBudget,
			SpawnInterval:   g.sim.SpawnInterval(),
		})
	}

	if g.logStats && g.tick > 0 && g.tick%600 == 0 {
		g.perf.LogSummary(g.tick)
		g.logFrameState()
		if err := g.output.WritePerf(g.perf.Record(g.tick)); err != nil {
			Logf("perf output failed: %v", err)
		}
	}

	g.perf.EndTick()
	g.tick++
}

// Tick returns the number of completed simulation steps.
func (g *Game) Tick() int32 { return g.tick }

// VisibleCount returns the number of sprites shown last frame. Exposed
// for diagnostics and admission control tuning.
func (g *Game) VisibleCount() int { return g.reconcile.VisibleCount() }

// Unload tears the whole system down: all particles and visuals are
// released immediately; there is no pending asynchronous work beyond
// the stream server's listeners.
func (g *Game) Unload() {
	g.collector.Flush()
	g.reconcile.Destroy()
	g.sim.Destroy()
	if g.stream != nil {
		g.stream.Close()
	}
	g.output.Close()
	if g.rlBackend != nil {
		g.rlBackend.Unload()
	}
}
