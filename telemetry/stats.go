package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// FrameSample is one frame's clustering outcome.
type FrameSample struct {
	Particles       int
	Clusters        int
	Singles         int
	Groups          int
	Visible         int
	MultiplierIndex int
	Attempts        int
	OverBudget      bool
	Created         int
	Destroyed       int
}

// WindowStats aggregates frame samples over a fixed window. The churn
// fields are the interesting ones: they measure how often the
// reconciler had to destroy and recreate visual identities, which is
// exactly the popping the clustering layer tries to keep rare.
type WindowStats struct {
	WindowEndTick int32   `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`
	Frames        int     `csv:"frames"`

	ParticlesMean float64 `csv:"particles_mean"`
	ClustersMean  float64 `csv:"clusters_mean"`
	ClustersStd   float64 `csv:"clusters_std"`
	ClustersP90   float64 `csv:"clusters_p90"`

	VisibleMean float64 `csv:"visible_mean"`
	VisibleMax  int     `csv:"visible_max"`

	Escalations      int     `csv:"escalations"`        // Frames needing more than one threshold attempt
	OverBudgetFrames int     `csv:"over_budget_frames"` // Frames past even the largest multiplier
	MultiplierMean   float64 `csv:"multiplier_mean"`    // Mean accepted multiplier index

	VisualsCreated   int     `csv:"visuals_created"`
	VisualsDestroyed int     `csv:"visuals_destroyed"`
	ChurnPerSec      float64 `csv:"churn_per_sec"` // Created+destroyed per second
}

// Collector aggregates frame samples into windows and hands finished
// windows to the sinks (slog, CSV, stream).
type Collector struct {
	windowTicks int
	dt          float64
	logStats    bool

	samples []FrameSample
	endTick int32
	simTime float64

	// OnWindow receives each finished window. Set by the owning scene.
	OnWindow func(WindowStats)
}

// NewCollector creates a stats collector closing a window every
// windowSec seconds of simulated time.
func NewCollector(windowSec, dt float64, logStats bool) *Collector {
	ticks := int(windowSec / dt)
	if ticks < 1 {
		ticks = 1
	}
	return &Collector{
		windowTicks: ticks,
		dt:          dt,
		logStats:    logStats,
		samples:     make([]FrameSample, 0, ticks),
	}
}

// Record adds one frame sample, closing the window when full.
func (c *Collector) Record(tick int32, s FrameSample) {
	c.samples = append(c.samples, s)
	c.endTick = tick
	c.simTime += c.dt

	if len(c.samples) >= c.windowTicks {
		c.flush()
	}
}

// flush aggregates the current window and resets it.
func (c *Collector) flush() {
	if len(c.samples) == 0 {
		return
	}

	ws := WindowStats{
		WindowEndTick: c.endTick,
		SimTimeSec:    c.simTime,
		Frames:        len(c.samples),
	}

	particles := make([]float64, len(c.samples))
	clusters := make([]float64, len(c.samples))
	visible := make([]float64, len(c.samples))
	multIdx := make([]float64, len(c.samples))

	for i, s := range c.samples {
		particles[i] = float64(s.Particles)
		clusters[i] = float64(s.Clusters)
		visible[i] = float64(s.Visible)
		multIdx[i] = float64(s.MultiplierIndex)

		if s.Visible > ws.VisibleMax {
			ws.VisibleMax = s.Visible
		}
		if s.Attempts > 1 {
			ws.Escalations++
		}
		if s.OverBudget {
			ws.OverBudgetFrames++
		}
		ws.VisualsCreated += s.Created
		ws.VisualsDestroyed += s.Destroyed
	}

	ws.ParticlesMean = stat.Mean(particles, nil)
	ws.ClustersMean = stat.Mean(clusters, nil)
	ws.ClustersStd = stat.StdDev(clusters, nil)
	ws.VisibleMean = stat.Mean(visible, nil)
	ws.MultiplierMean = stat.Mean(multIdx, nil)

	sort.Float64s(clusters)
	ws.ClustersP90 = stat.Quantile(0.9, stat.Empirical, clusters, nil)

	windowSec := float64(len(c.samples)) * c.dt
	if windowSec > 0 {
		ws.ChurnPerSec = float64(ws.VisualsCreated+ws.VisualsDestroyed) / windowSec
	}

	if c.logStats {
		slog.Info("window",
			"tick", ws.WindowEndTick,
			"particles_mean", ws.ParticlesMean,
			"clusters_mean", ws.ClustersMean,
			"visible_mean", ws.VisibleMean,
			"visible_max", ws.VisibleMax,
			"escalations", ws.Escalations,
			"over_budget_frames", ws.OverBudgetFrames,
			"churn_per_sec", ws.ChurnPerSec,
		)
	}

	if c.OnWindow != nil {
		c.OnWindow(ws)
	}

	c.samples = c.samples[:0]
}

// Flush closes a partial window early, for teardown.
func (c *Collector) Flush() {
	c.flush()
}
