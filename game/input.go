package game

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Budget tuning with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.clusterer.Budget > 2 {
		g.clusterer.Budget--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.clusterer.Budget < 64 {
		g.clusterer.Budget++
	}

	// Spawn burst, for stressing the escalation path by hand
	if rl.IsKeyPressed(rl.KeyB) {
		for i := 0; i < 8; i++ {
			g.sim.SpawnOne()
		}
	}

	// Debug mode toggle
	if rl.IsKeyPressed(rl.KeyD) {
		g.debugMode = !g.debugMode
	}

	// Debug sub-options (only when debug mode is active)
	if g.debugMode {
		if rl.IsKeyPressed(rl.KeyG) {
			g.showGrid = !g.showGrid
		}
		if rl.IsKeyPressed(rl.KeyA) {
			g.showAnchors = !g.showAnchors
		}
	}
}
