package systems

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pthm-cable/pyre/config"
)

// Cluster is one connected component of the partition. Members are
// indices into the snapshot the clusterer was called with, ascending
// (the snapshot is id-ordered, so member ids ascend too).
type Cluster struct {
	Members []int
}

// PartitionStats describes how a partition was reached.
type PartitionStats struct {
	Attempts        int     // Thresholds tried this frame
	MultiplierIndex int     // Index of the accepted multiplier
	Threshold       float32 // Accepted merge threshold
	ClusterCount    int
	OverBudget      bool // Budget exceeded even at the largest multiplier
}

// Clusterer partitions the active particle set into connected
// components under a height-anisotropic distance rule, escalating the
// rule until the component count fits the sprite budget. Smaller
// thresholds are always preferred: more, tighter clusters read better
// than one oversized blob.
type Clusterer struct {
	Budget           int
	BaseDistance     float32
	Multipliers      []float32
	CohesionFactor   float32
	HeightScaleFloor float32
	HeightScaleGain  float32
	BottomBiasGain   float32
	Frame            EmitterFrame

	// Scratch reused across frames
	visited []bool
	stack   []int
	grid    clusterGrid
}

// NewClusterer creates a clusterer from the loaded configuration.
func NewClusterer(cfg *config.Config, frame EmitterFrame) *Clusterer {
	mults := make([]float32, len(cfg.Cluster.Multipliers))
	for i, m := range cfg.Cluster.Multipliers {
		mults[i] = float32(m)
	}
	return &Clusterer{
		Budget:           cfg.Cluster.Budget,
		BaseDistance:     float32(cfg.Cluster.BaseDistance),
		Multipliers:      mults,
		CohesionFactor:   float32(cfg.Cluster.CohesionFactor),
		HeightScaleFloor: float32(cfg.Cluster.HeightScaleFloor),
		HeightScaleGain:  float32(cfg.Cluster.HeightScaleGain),
		BottomBiasGain:   float32(cfg.Cluster.BottomBiasGain),
		Frame:            frame,
	}
}

// HeightScale returns the merge radius scale at vertical position y.
// Particles near the flame tip merge across a larger effective radius,
// matching the taper and flare of a real flame.
func (c *Clusterer) HeightScale(y float32) float32 {
	return c.HeightScaleFloor + c.Frame.HeightFrac(y)*c.HeightScaleGain
}

// bottomBias widens the cohesion radius for components sitting low in
// the emission area, where real flames are densest.
func (c *Clusterer) bottomBias(y float32) float32 {
	return 1 + c.Frame.Depth(y)*c.BottomBiasGain
}

// Partition splits the snapshot into connected components, trying each
// multiplier in ascending order and accepting the first whose component
// count fits the budget. If even the largest multiplier overshoots, its
// result is used anyway: past that point the budget is a soft target,
// because further merging would hurt fidelity more than an extra sprite.
func (c *Clusterer) Partition(ps []ParticleState) ([]Cluster, PartitionStats) {
	var stats PartitionStats
	if len(ps) == 0 {
		return nil, stats
	}

	var clusters []Cluster
	for i, m := range c.Multipliers {
		threshold := c.BaseDistance * m
		clusters = c.partitionAt(ps, threshold)

		stats.Attempts = i + 1
		stats.MultiplierIndex = i
		stats.Threshold = threshold
		stats.ClusterCount = len(clusters)

		if len(clusters) <= c.Budget {
			break
		}
	}
	stats.OverBudget = stats.ClusterCount > c.Budget

	return clusters, stats
}

// partitionAt runs one grid flood fill at a fixed threshold.
func (c *Clusterer) partitionAt(ps []ParticleState, threshold float32) []Cluster {
	// Cells must cover the largest radius admit can accept, which is
	// the pairwise radius at the flame tip.
	cell := threshold * (c.HeightScaleFloor + c.HeightScaleGain)
	if cell < threshold {
		cell = threshold
	}
	c.grid.rebuild(ps, cell)

	if cap(c.visited) < len(ps) {
		c.visited = make([]bool, len(ps))
	}
	c.visited = c.visited[:len(ps)]
	for i := range c.visited {
		c.visited[i] = false
	}

	var clusters []Cluster
	for seed := range ps {
		if c.visited[seed] {
			continue
		}
		c.visited[seed] = true

		members := []int{seed}
		sumX, sumY := ps[seed].X, ps[seed].Y

		c.stack = append(c.stack[:0], seed)
		for len(c.stack) > 0 {
			cur := c.stack[len(c.stack)-1]
			c.stack = c.stack[:len(c.stack)-1]

			c.grid.forNeighbors(ps[cur].X, ps[cur].Y, func(cand int) {
				if c.visited[cand] {
					return
				}
				if !c.admit(ps, cur, cand, sumX, sumY, len(members), threshold) {
					return
				}
				c.visited[cand] = true
				members = append(members, cand)
				sumX += ps[cand].X
				sumY += ps[cand].Y
				c.stack = append(c.stack, cand)
			})
		}

		sort.Ints(members)
		clusters = append(clusters, Cluster{Members: members})
	}

	return clusters
}

// admit applies the two merge predicates to a candidate neighbor.
func (c *Clusterer) admit(ps []ParticleState, cur, cand int, sumX, sumY float32, n int, threshold float32) bool {
	// Pairwise: distance scaled by the larger of the two height scales
	hs := c.HeightScale(ps[cur].Y)
	if h2 := c.HeightScale(ps[cand].Y); h2 > hs {
		hs = h2
	}
	r := threshold * hs
	dx := ps[cand].X - ps[cur].X
	dy := ps[cand].Y - ps[cur].Y
	if dx*dx+dy*dy > r*r {
		return false
	}

	// Cohesion: distance to the running centroid. Keeps components
	// roughly circular instead of admitting long pairwise chains.
	cx := sumX / float32(n)
	cy := sumY / float32(n)
	cr := threshold * c.CohesionFactor * c.HeightScale(cy) * c.bottomBias(cy)
	dx = ps[cand].X - cx
	dy = ps[cand].Y - cy
	return dx*dx+dy*dy <= cr*cr
}

// ClusterKey returns the canonical identity of a cluster: its member
// particle ids joined in ascending order. Identity survives between
// frames only while the exact membership is unchanged.
func ClusterKey(ps []ParticleState, members []int) string {
	var b strings.Builder
	for i, idx := range members {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(strconv.FormatUint(ps[idx].ID, 10))
	}
	return b.String()
}

// clusterGrid is a uniform bucket grid sized to the current threshold,
// so any pair within merge range shares a cell or touches an adjacent
// one. Rebuilt from scratch per flood fill; buckets are reused.
type clusterGrid struct {
	minX, minY float32
	cellSize   float32
	cols, rows int
	cells      [][]int
}

func (g *clusterGrid) rebuild(ps []ParticleState, cellSize float32) {
	minX, minY := ps[0].X, ps[0].Y
	maxX, maxY := minX, minY
	for i := 1; i < len(ps); i++ {
		if ps[i].X < minX {
			minX = ps[i].X
		} else if ps[i].X > maxX {
			maxX = ps[i].X
		}
		if ps[i].Y < minY {
			minY = ps[i].Y
		} else if ps[i].Y > maxY {
			maxY = ps[i].Y
		}
	}

	g.minX, g.minY = minX, minY
	g.cellSize = cellSize
	g.cols = int((maxX-minX)/cellSize) + 1
	g.rows = int((maxY-minY)/cellSize) + 1

	need := g.cols * g.rows
	if cap(g.cells) < need {
		g.cells = make([][]int, need)
	}
	g.cells = g.cells[:need]
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}

	for i := range ps {
		idx := g.index(ps[i].X, ps[i].Y)
		g.cells[idx] = append(g.cells[idx], i)
	}
}

// index returns the flat cell index for a position, clamped to the grid.
func (g *clusterGrid) index(x, y float32) int {
	col := int((x - g.minX) / g.cellSize)
	row := int((y - g.minY) / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}

// forNeighbors visits every particle bucketed in the 3x3 cell
// neighborhood around the given position, in fixed cell-scan order.
func (g *clusterGrid) forNeighbors(x, y float32, fn func(i int)) {
	centerCol := int((x - g.minX) / g.cellSize)
	centerRow := int((y - g.minY) / g.cellSize)

	for dr := -1; dr <= 1; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}
			for _, i := range g.cells[row*g.cols+col] {
				fn(i)
			}
		}
	}
}
