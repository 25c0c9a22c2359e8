// Package telemetry collects per-frame statistics and timings for the
// flame renderer: phase timings, windowed clustering stats, CSV output
// and an optional live stream.
package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one frame of the pipeline.
const (
	PhaseSimulate  = "simulate"
	PhaseCull      = "cull"
	PhaseCluster   = "cluster"
	PhaseReconcile = "reconcile"
	PhaseTelemetry = "telemetry"
)

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over (e.g. 60 for one second).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new frame.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current frame and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// AvgTick returns the mean frame duration over the window.
func (p *PerfCollector) AvgTick() time.Duration {
	if p.sampleCount == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < p.sampleCount; i++ {
		total += p.samples[i].TickDuration
	}
	return total / time.Duration(p.sampleCount)
}

// AvgPhase returns the mean duration of one phase over the window.
func (p *PerfCollector) AvgPhase(phase string) time.Duration {
	if p.sampleCount == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < p.sampleCount; i++ {
		total += p.samples[i].Phases[phase]
	}
	return total / time.Duration(p.sampleCount)
}

// Phases returns the fixed phase order for reporting.
func Phases() []string {
	return []string{PhaseSimulate, PhaseCull, PhaseCluster, PhaseReconcile, PhaseTelemetry}
}

// LogSummary emits the windowed averages via slog.
func (p *PerfCollector) LogSummary(tick int32) {
	attrs := []any{"tick", tick, "avg_tick", p.AvgTick().String()}
	for _, phase := range Phases() {
		attrs = append(attrs, phase, p.AvgPhase(phase).String())
	}
	slog.Info("perf", attrs...)
}

// PerfRecord is the CSV row shape for perf output.
type PerfRecord struct {
	Tick        int32   `csv:"tick"`
	AvgTickUs   float64 `csv:"avg_tick_us"`
	SimulateUs  float64 `csv:"simulate_us"`
	CullUs      float64 `csv:"cull_us"`
	ClusterUs   float64 `csv:"cluster_us"`
	ReconcileUs float64 `csv:"reconcile_us"`
}

// Record builds a CSV row from the current window.
func (p *PerfCollector) Record(tick int32) PerfRecord {
	us := func(d time.Duration) float64 { return float64(d) / float64(time.Microsecond) }
	return PerfRecord{
		Tick:        tick,
		AvgTickUs:   us(p.AvgTick()),
		SimulateUs:  us(p.AvgPhase(PhaseSimulate)),
		CullUs:      us(p.AvgPhase(PhaseCull)),
		ClusterUs:   us(p.AvgPhase(PhaseCluster)),
		ReconcileUs: us(p.AvgPhase(PhaseReconcile)),
	}
}
