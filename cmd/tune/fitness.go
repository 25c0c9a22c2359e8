package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/pyre/config"
	"github.com/pthm-cable/pyre/game"
	"github.com/pthm-cable/pyre/telemetry"
)

// Fitness component weights. The budget cap is the hard contract, so
// over-budget frames dominate; churn and escalations shape behavior
// among configs that respect the budget.
const (
	overBudgetWeight = 1000.0 // per over-budget frame fraction
	churnWeight      = 4.0    // per visual created+destroyed per second
	escalationWeight = 20.0   // per escalated frame fraction
	sparsityWeight   = 50.0   // penalty for an empty-looking flame
	targetVisible    = 0.7    // fraction of budget we want on screen
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	statsWindow float64

	mu          sync.Mutex
	lastWindows int
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		statsWindow: 5.0,
	}
}

// LastWindows returns how many stats windows the most recent evaluation saw.
func (fe *FitnessEvaluator) LastWindows() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastWindows
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Each seed runs in its own goroutine; the score is the mean over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	scores := make([]float64, len(fe.seeds))
	windows := make([]int, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			stats := fe.runSimulation(x, s)
			scores[idx] = fe.score(stats)
			windows[idx] = len(stats)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	totalWindows := 0
	for i, s := range scores {
		total += s
		totalWindows += windows[i]
	}

	fe.mu.Lock()
	fe.lastWindows = totalWindows
	fe.mu.Unlock()

	return total / float64(len(fe.seeds))
}

// runSimulation executes a single headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.WindowStats {
	cfg, _ := config.Load("")
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.WindowStats
	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		Config:         cfg,
		StatsCallback: func(ws telemetry.WindowStats) {
			windows = append(windows, ws)
		},
	})
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return windows
}

// score collapses a run's stats windows to a scalar (lower = better).
// The first window is warmup and ignored.
func (fe *FitnessEvaluator) score(windows []telemetry.WindowStats) float64 {
	if len(windows) < 2 {
		return math.Inf(1)
	}
	windows = windows[1:]

	budget := float64(config.Cfg().Cluster.Budget)
	var total float64
	for _, ws := range windows {
		frames := float64(ws.Frames)
		if frames == 0 {
			continue
		}

		s := overBudgetWeight * float64(ws.OverBudgetFrames) / frames
		s += churnWeight * ws.ChurnPerSec
		s += escalationWeight * float64(ws.Escalations) / frames

		// A flame that merges everything away looks dead. Pull the
		// mean visible count toward a fraction of the budget.
		gap := targetVisible*budget - ws.VisibleMean
		if gap > 0 {
			s += sparsityWeight * gap / budget
		}

		total += s
	}
	return total / float64(len(windows))
}
