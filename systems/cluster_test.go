package systems

import (
	"math/rand"
	"sort"
	"testing"
)

// flatClusterer returns a clusterer with height anisotropy and bottom
// bias switched off, so merge distance is uniform over the flame body.
func flatClusterer(baseDistance float32, budget int, multipliers []float32) *Clusterer {
	return &Clusterer{
		Budget:           budget,
		BaseDistance:     baseDistance,
		Multipliers:      multipliers,
		CohesionFactor:   10, // effectively off
		HeightScaleFloor: 1,
		HeightScaleGain:  0,
		BottomBiasGain:   0,
		Frame:            EmitterFrame{X: 400, BaseY: 560, Radius: 46, Height: 240},
	}
}

func particlesAt(coords ...[2]float32) []ParticleState {
	ps := make([]ParticleState, len(coords))
	for i, c := range coords {
		ps[i] = ParticleState{ID: uint64(i + 1), X: c[0], Y: c[1], Alpha: 1, Life: 1, MaxLife: 1}
	}
	return ps
}

func TestPartitionEmpty(t *testing.T) {
	c := flatClusterer(30, 10, []float32{1})
	clusters, stats := c.Partition(nil)
	if clusters != nil {
		t.Errorf("expected nil clusters for empty input, got %v", clusters)
	}
	if stats.Attempts != 0 || stats.ClusterCount != 0 || stats.OverBudget {
		t.Errorf("expected zero stats for empty input, got %+v", stats)
	}
}

func TestPartitionMergesClosePair(t *testing.T) {
	c := flatClusterer(30, 10, []float32{1})
	ps := particlesAt([2]float32{400, 560}, [2]float32{410, 560})

	clusters, stats := c.Partition(ps)
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster for a close pair, got %d", len(clusters))
	}
	if len(clusters[0].Members) != 2 {
		t.Errorf("expected 2 members, got %v", clusters[0].Members)
	}
	if stats.MultiplierIndex != 0 || stats.Attempts != 1 {
		t.Errorf("expected first multiplier to be accepted, got %+v", stats)
	}
}

func TestPartitionKeepsFarPairApart(t *testing.T) {
	c := flatClusterer(30, 10, []float32{1})
	ps := particlesAt([2]float32{400, 560}, [2]float32{500, 560})

	clusters, _ := c.Partition(ps)
	if len(clusters) != 2 {
		t.Errorf("expected 2 clusters for a far pair, got %d", len(clusters))
	}
}

func TestPartitionEscalatesUntilBudgetFits(t *testing.T) {
	// Three particles 40 apart: distinct at threshold 30, one
	// component at threshold 60.
	c := flatClusterer(30, 1, []float32{1, 2})
	ps := particlesAt([2]float32{400, 560}, [2]float32{440, 560}, [2]float32{480, 560})

	clusters, stats := c.Partition(ps)
	if len(clusters) != 1 {
		t.Fatalf("expected escalation to produce 1 cluster, got %d", len(clusters))
	}
	if stats.MultiplierIndex != 1 {
		t.Errorf("MultiplierIndex = %d, want 1", stats.MultiplierIndex)
	}
	if stats.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", stats.Attempts)
	}
	if stats.OverBudget {
		t.Error("partition fit the budget but OverBudget is set")
	}
	if stats.Threshold != 60 {
		t.Errorf("Threshold = %v, want 60", stats.Threshold)
	}
}

func TestPartitionPrefersSmallestFittingThreshold(t *testing.T) {
	// Budget 10 fits immediately: no escalation should happen even
	// though larger multipliers are available.
	c := flatClusterer(30, 10, []float32{1, 2, 4})
	ps := particlesAt([2]float32{400, 560}, [2]float32{440, 560}, [2]float32{480, 560})

	_, stats := c.Partition(ps)
	if stats.MultiplierIndex != 0 || stats.Attempts != 1 {
		t.Errorf("expected first multiplier accepted, got %+v", stats)
	}
}

func TestPartitionOverBudget(t *testing.T) {
	// Two particles that never merge at any multiplier, budget 1: the
	// largest multiplier's result is used and flagged.
	c := flatClusterer(30, 1, []float32{1, 1.2})
	ps := particlesAt([2]float32{100, 560}, [2]float32{700, 560})

	clusters, stats := c.Partition(ps)
	if len(clusters) != 2 {
		t.Fatalf("expected best-effort 2 clusters, got %d", len(clusters))
	}
	if !stats.OverBudget {
		t.Error("expected OverBudget flag")
	}
	if stats.MultiplierIndex != 1 {
		t.Errorf("MultiplierIndex = %d, want last", stats.MultiplierIndex)
	}
}

func TestCohesionBlocksChains(t *testing.T) {
	// A line of particles 25 apart with threshold 30: pairwise links
	// connect the whole line, but cohesion caps growth once the next
	// candidate drifts too far from the running centroid.
	c := flatClusterer(30, 10, []float32{1})
	c.CohesionFactor = 1
	ps := particlesAt([2]float32{400, 560}, [2]float32{425, 560}, [2]float32{450, 560})

	clusters, _ := c.Partition(ps)
	if len(clusters) != 2 {
		t.Fatalf("expected chain to be split, got %d clusters", len(clusters))
	}
	sizes := []int{len(clusters[0].Members), len(clusters[1].Members)}
	sort.Ints(sizes)
	if sizes[0] != 1 || sizes[1] != 2 {
		t.Errorf("expected a 2+1 split, got sizes %v", sizes)
	}
}

func TestHeightScaleWidensTowardTip(t *testing.T) {
	frame := EmitterFrame{X: 400, BaseY: 560, Radius: 46, Height: 240}
	c := &Clusterer{
		Budget:           10,
		BaseDistance:     20,
		Multipliers:      []float32{1},
		CohesionFactor:   1,
		HeightScaleFloor: 0.5,
		HeightScaleGain:  1.5,
		BottomBiasGain:   0,
		Frame:            frame,
	}

	if got := c.HeightScale(frame.BaseY); got != 0.5 {
		t.Errorf("HeightScale at base = %v, want 0.5", got)
	}
	if got := c.HeightScale(frame.BaseY - frame.Height); got != 2.0 {
		t.Errorf("HeightScale at tip = %v, want 2.0", got)
	}

	// Same separation: merges at the tip, not at the base.
	basePair := particlesAt([2]float32{400, 560}, [2]float32{415, 560})
	clusters, _ := c.Partition(basePair)
	if len(clusters) != 2 {
		t.Errorf("expected base pair to stay apart, got %d clusters", len(clusters))
	}

	tipY := frame.BaseY - frame.Height
	tipPair := particlesAt([2]float32{400, tipY}, [2]float32{415, tipY})
	clusters, _ = c.Partition(tipPair)
	if len(clusters) != 1 {
		t.Errorf("expected tip pair to merge, got %d clusters", len(clusters))
	}
}

func TestPartitionIsExhaustiveAndDisjoint(t *testing.T) {
	c := flatClusterer(26, 8, []float32{1, 1.4, 2})
	rng := rand.New(rand.NewSource(7))
	ps := make([]ParticleState, 60)
	for i := range ps {
		ps[i] = ParticleState{
			ID: uint64(i + 1),
			X:  354 + rng.Float32()*92,
			Y:  320 + rng.Float32()*240,
		}
	}

	clusters, _ := c.Partition(ps)

	seen := make(map[int]bool)
	for _, cl := range clusters {
		for _, m := range cl.Members {
			if seen[m] {
				t.Fatalf("member %d appears in more than one cluster", m)
			}
			seen[m] = true
		}
		if !sort.IntsAreSorted(cl.Members) {
			t.Errorf("members not ascending: %v", cl.Members)
		}
	}
	if len(seen) != len(ps) {
		t.Errorf("partition covered %d of %d particles", len(seen), len(ps))
	}
}

func TestPartitionIgnoresInputOrder(t *testing.T) {
	// Two well-separated blobs: membership must not depend on which
	// order the particles arrive in.
	c := flatClusterer(30, 10, []float32{1})
	ps := particlesAt(
		[2]float32{100, 560}, [2]float32{110, 560}, [2]float32{120, 560},
		[2]float32{600, 560}, [2]float32{610, 560},
	)

	want := idSets(ps, c)

	shuffled := make([]ParticleState, len(ps))
	copy(shuffled, ps)
	rand.New(rand.NewSource(3)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	got := idSets(shuffled, c)
	if len(got) != len(want) {
		t.Fatalf("cluster count changed under permutation: %d vs %d", len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("cluster %d differs: %q vs %q", i, want[i], got[i])
		}
	}
}

// idSets partitions and returns each cluster's id key, sorted, so two
// partitions can be compared independent of cluster and member order.
func idSets(ps []ParticleState, c *Clusterer) []string {
	clusters, _ := c.Partition(ps)
	keys := make([]string, len(clusters))
	for i, cl := range clusters {
		idx := make([]int, len(cl.Members))
		copy(idx, cl.Members)
		keys[i] = ClusterKey(ps, sortedByID(ps, idx))
	}
	sort.Strings(keys)
	return keys
}

func sortedByID(ps []ParticleState, members []int) []int {
	sort.Slice(members, func(a, b int) bool { return ps[members[a]].ID < ps[members[b]].ID })
	return members
}

func TestTwoTightBlobsFitWithoutEscalation(t *testing.T) {
	// Two tight sub-clusters of five, far apart, budget 2: accepted at
	// the first multiplier.
	c := flatClusterer(30, 2, []float32{1, 1.4, 2})
	var coords [][2]float32
	for i := 0; i < 5; i++ {
		coords = append(coords, [2]float32{100 + float32(i)*4, 560})
	}
	for i := 0; i < 5; i++ {
		coords = append(coords, [2]float32{700 + float32(i)*4, 560})
	}
	ps := particlesAt(coords...)

	clusters, stats := c.Partition(ps)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if stats.Attempts != 1 || stats.MultiplierIndex != 0 {
		t.Errorf("expected no escalation, got %+v", stats)
	}
	for _, cl := range clusters {
		if len(cl.Members) != 5 {
			t.Errorf("cluster size = %d, want 5", len(cl.Members))
		}
	}
}

func TestScatteredParticlesForceEscalation(t *testing.T) {
	// Fifteen particles spaced past the base threshold, budget 3: low
	// multipliers leave singletons, so the loop must escalate.
	c := flatClusterer(30, 3, []float32{1, 2, 4})
	var coords [][2]float32
	for i := 0; i < 15; i++ {
		coords = append(coords, [2]float32{100 + float32(i)*100, 560})
	}
	ps := particlesAt(coords...)

	clusters, stats := c.Partition(ps)
	if stats.Attempts <= 1 {
		t.Errorf("Attempts = %d, want escalation past the first multiplier", stats.Attempts)
	}
	if len(clusters) > 3 {
		t.Errorf("final cluster count = %d, want within budget 3", len(clusters))
	}
	if stats.OverBudget {
		t.Errorf("partition fit eventually but OverBudget is set: %+v", stats)
	}
}

func TestClusterCountMonotonicInThreshold(t *testing.T) {
	c := flatClusterer(1, 100, []float32{1})
	rng := rand.New(rand.NewSource(11))
	ps := make([]ParticleState, 40)
	for i := range ps {
		ps[i] = ParticleState{
			ID: uint64(i + 1),
			X:  354 + rng.Float32()*92,
			Y:  320 + rng.Float32()*240,
		}
	}

	prev := len(ps) + 1
	for _, threshold := range []float32{10, 20, 30, 50, 80, 130} {
		n := len(c.partitionAt(ps, threshold))
		if n > prev {
			t.Errorf("cluster count rose from %d to %d at threshold %v", prev, n, threshold)
		}
		prev = n
	}
}

func TestPartitionIdempotent(t *testing.T) {
	c := flatClusterer(26, 8, []float32{1, 1.4})
	rng := rand.New(rand.NewSource(5))
	ps := make([]ParticleState, 30)
	for i := range ps {
		ps[i] = ParticleState{
			ID: uint64(i + 1),
			X:  354 + rng.Float32()*92,
			Y:  320 + rng.Float32()*240,
		}
	}

	first := idSets(ps, c)
	second := idSets(ps, c)
	if len(first) != len(second) {
		t.Fatalf("cluster count changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("cluster %d differs between runs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestClusterKey(t *testing.T) {
	ps := []ParticleState{
		{ID: 12}, {ID: 5}, {ID: 30},
	}
	if got := ClusterKey(ps, []int{1, 0, 2}); got != "5:12:30" {
		t.Errorf("ClusterKey = %q, want %q", got, "5:12:30")
	}
	if got := ClusterKey(ps, []int{1}); got != "5" {
		t.Errorf("single member key = %q, want %q", got, "5")
	}
}

func TestGridFindsFarTipNeighbors(t *testing.T) {
	// With a tip scale above 2 the admit radius exceeds the raw
	// threshold; the grid neighborhood still has to surface the pair.
	frame := EmitterFrame{X: 400, BaseY: 560, Radius: 46, Height: 240}
	c := &Clusterer{
		Budget:           10,
		BaseDistance:     26,
		Multipliers:      []float32{1},
		CohesionFactor:   10,
		HeightScaleFloor: 0.12,
		HeightScaleGain:  2.0,
		BottomBiasGain:   0,
		Frame:            frame,
	}

	tipY := frame.BaseY - frame.Height
	// Separation 50: inside 26*2.12 = 55.1 but far outside 26.
	ps := particlesAt([2]float32{400, tipY}, [2]float32{450, tipY})
	clusters, _ := c.Partition(ps)
	if len(clusters) != 1 {
		t.Errorf("expected tip pair within scaled radius to merge, got %d clusters", len(clusters))
	}
}
