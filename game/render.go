package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pyre/systems"
	"github.com/pthm-cable/pyre/ui"
)

// Draw renders the frame: backdrop, flame sprites, optional debug
// overlay and HUD.
func (g *Game) Draw() {
	rl.BeginDrawing()

	rl.ClearBackground(rl.Color{R: 8, G: 6, B: 12, A: 255})
	g.drawHearthGlow()

	g.rlBackend.Draw()

	if g.debugMode {
		g.drawOverlay()
	}

	ui.DrawHUD(ui.HUDData{
		Title:           "Pyre",
		Particles:       len(g.lastSnapshot),
		Clusters:        g.lastPartition.ClusterCount,
		Singles:         g.lastFrame.Singles,
		Groups:          g.lastFrame.Groups,
		Visible:         g.lastFrame.Visible,
		Budget:          g.clusterer.Budget,
		MultiplierIndex: g.lastPartition.MultiplierIndex,
		Multipliers:     len(g.clusterer.Multipliers),
		OverBudget:      g.lastPartition.OverBudget,
		SpawnInterval:   g.sim.SpawnInterval(),
		Tick:            g.tick,
		FPS:             rl.GetFPS(),
		Paused:          g.paused,
		ScreenWidth:     int32(g.screenWidth),
		ScreenHeight:    int32(g.screenHeight),
	})
	ui.DrawControls(int32(g.screenWidth), int32(g.screenHeight))

	rl.EndDrawing()
}

// drawHearthGlow paints a faint radial glow under the flame base.
func (g *Game) drawHearthGlow() {
	frame := g.sim.Frame()
	rl.DrawCircleGradient(int32(frame.X), int32(frame.BaseY),
		frame.Radius*3,
		rl.Color{R: 70, G: 24, B: 4, A: 90},
		rl.Color{R: 0, G: 0, B: 0, A: 0})
}

// drawOverlay visualizes the clustering decisions: cluster bounds,
// anchors and the emitter frame.
func (g *Game) drawOverlay() {
	frame := g.sim.Frame()

	// Emitter frame
	rl.DrawRectangleLines(
		int32(frame.X-frame.Radius), int32(frame.BaseY-frame.Height),
		int32(frame.Radius*2), int32(frame.Height+frame.Radius),
		rl.Color{R: 60, G: 60, B: 90, A: 160})

	if g.showGrid {
		g.drawThresholdGrid()
	}

	for _, cl := range g.lastClusters {
		if len(cl.Members) < 2 {
			// Singletons get a small tick mark
			p := &g.lastSnapshot[cl.Members[0]]
			rl.DrawCircleLines(int32(p.X), int32(p.Y), 3, rl.Color{R: 90, G: 200, B: 120, A: 180})
			continue
		}

		// Centroid and spread radius
		var cx, cy float32
		for _, idx := range cl.Members {
			cx += g.lastSnapshot[idx].X
			cy += g.lastSnapshot[idx].Y
		}
		cx /= float32(len(cl.Members))
		cy /= float32(len(cl.Members))

		var maxR float32
		for _, idx := range cl.Members {
			dx := g.lastSnapshot[idx].X - cx
			dy := g.lastSnapshot[idx].Y - cy
			if r := float32(math.Sqrt(float64(dx*dx + dy*dy))); r > maxR {
				maxR = r
			}
			rl.DrawCircle(int32(g.lastSnapshot[idx].X), int32(g.lastSnapshot[idx].Y), 2,
				rl.Color{R: 240, G: 170, B: 60, A: 200})
		}
		rl.DrawCircleLines(int32(cx), int32(cy), maxR+6, rl.Color{R: 250, G: 120, B: 40, A: 160})

		if g.showAnchors {
			if a := systems.SelectAnchor(g.lastSnapshot, cl.Members, frame); a >= 0 {
				p := &g.lastSnapshot[a]
				rl.DrawLine(int32(p.X-5), int32(p.Y), int32(p.X+5), int32(p.Y), rl.White)
				rl.DrawLine(int32(p.X), int32(p.Y-5), int32(p.X), int32(p.Y+5), rl.White)
			}
		}
	}
}

// drawThresholdGrid shows the flood-fill grid at the accepted threshold.
func (g *Game) drawThresholdGrid() {
	cell := g.lastPartition.Threshold
	if cell <= 0 {
		return
	}
	color := rl.Color{R: 40, G: 40, B: 60, A: 120}
	for x := float32(0); x < g.screenWidth; x += cell {
		rl.DrawLine(int32(x), 0, int32(x), int32(g.screenHeight), color)
	}
	for y := float32(0); y < g.screenHeight; y += cell {
		rl.DrawLine(0, int32(y), int32(g.screenWidth), int32(y), color)
	}
}
