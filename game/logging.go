package game

import (
	"fmt"
	"io"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// logFrameState logs the current pipeline state.
func (g *Game) logFrameState() {
	Logf("=== Tick %d ===", g.tick)
	Logf("Particles: %d | Clusters: %d (singles: %d, groups: %d)",
		len(g.lastSnapshot), g.lastPartition.ClusterCount, g.lastFrame.Singles, g.lastFrame.Groups)
	Logf("Visible: %d / budget %d | multiplier[%d] threshold %.1f | attempts %d",
		g.lastFrame.Visible, g.clusterer.Budget,
		g.lastPartition.MultiplierIndex, g.lastPartition.Threshold, g.lastPartition.Attempts)
	if g.lastPartition.OverBudget {
		Logf("OVER BUDGET at max multiplier")
	}
	Logf("Spawn interval: %.3fs | visuals +%d/-%d",
		g.sim.SpawnInterval(), g.lastFrame.Created, g.lastFrame.Destroyed)

	// Cluster size histogram
	var sizes [8]int
	for _, cl := range g.lastClusters {
		n := len(cl.Members)
		if n >= len(sizes) {
			n = len(sizes) - 1
		}
		sizes[n]++
	}
	Logf("Sizes: 1=%d 2=%d 3=%d 4=%d 5=%d 6=%d 7+=%d",
		sizes[1], sizes[2], sizes[3], sizes[4], sizes[5], sizes[6], sizes[7])
	Logf("")
}
