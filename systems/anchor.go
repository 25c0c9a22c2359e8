package systems

// Anchor scoring weights. The composite sprite should follow a member
// that is both low (near the visually dominant flame base) and still
// fully opaque.
const (
	anchorDepthWeight = 0.65
	anchorAlphaWeight = 0.35
)

// SelectAnchor picks the cluster member that drives the composite
// sprite's transform. Returns the snapshot index of the winner, or -1
// for an empty member list. Ties resolve to the lowest-id member
// because members ascend by id.
func SelectAnchor(ps []ParticleState, members []int, frame EmitterFrame) int {
	best := -1
	bestScore := float32(-1)

	for _, idx := range members {
		score := anchorDepthWeight*frame.Depth(ps[idx].Y) + anchorAlphaWeight*ps[idx].Alpha
		if score > bestScore {
			bestScore = score
			best = idx
		}
	}

	return best
}
