// Clustering lab - interactive playground for the merge parameters.
//
// Scatters particles over the flame body and shows how the escalating
// threshold partitions them as the sliders move.
//
// Usage: go run ./cmd/clusterlab
package main

import (
	"fmt"
	"math"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pyre/config"
	"github.com/pthm-cable/pyre/systems"
)

const (
	windowWidth  = 1060
	windowHeight = 720
	previewSize  = 640
	panelWidth   = windowWidth - previewSize - 30
)

var clusterColors = []rl.Color{
	{R: 230, G: 120, B: 50, A: 255},
	{R: 90, G: 180, B: 240, A: 255},
	{R: 120, G: 220, B: 110, A: 255},
	{R: 230, G: 90, B: 160, A: 255},
	{R: 240, G: 210, B: 70, A: 255},
	{R: 160, G: 120, B: 240, A: 255},
	{R: 90, G: 220, B: 200, A: 255},
	{R: 240, G: 140, B: 130, A: 255},
}

func main() {
	config.MustInit("")
	cfg := config.Cfg()

	rl.InitWindow(windowWidth, windowHeight, "Cluster Lab")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	frame := systems.EmitterFrame{
		X:      previewSize / 2,
		BaseY:  float32(windowHeight - 80),
		Radius: cfg.Derived.EmitterR32,
		Height: cfg.Derived.EmitterH32,
	}

	clusterer := systems.NewClusterer(cfg, frame)

	var seed int64 = 1
	particleCount := 28
	particles := scatter(frame, particleCount, seed)

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyR) {
			seed++
			particles = scatter(frame, particleCount, seed)
		}

		clusters, stats := clusterer.Partition(particles)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 16, G: 12, B: 18, A: 255})

		drawPreview(clusterer, particles, clusters)
		drawStats(clusterer, stats, len(particles))
		drawPanel(clusterer, &particleCount, &particles, frame, seed)

		rl.EndDrawing()
	}
}

// scatter places n particles in the flame body: uniform angle, biased
// toward the base the way the emitter distributes lifetime positions.
func scatter(frame systems.EmitterFrame, n int, seed int64) []systems.ParticleState {
	rng := rand.New(rand.NewSource(seed))
	ps := make([]systems.ParticleState, n)
	for i := range ps {
		h := rng.Float32()
		h = h * h // more particles near the base
		y := frame.BaseY - h*frame.Height
		spread := frame.Radius * (1 + 0.8*h)
		x := frame.X + (rng.Float32()*2-1)*spread

		life := 0.5 + rng.Float32()*2
		ps[i] = systems.ParticleState{
			ID:        uint64(i + 1),
			X:         x,
			Y:         y,
			Life:      life,
			MaxLife:   2.5,
			Alpha:     1,
			SizeClass: uint8(rng.Intn(3)),
			Variant:   uint8(rng.Intn(4)),
		}
	}
	return ps
}

func drawPreview(c *systems.Clusterer, ps []systems.ParticleState, clusters []systems.Cluster) {
	rl.DrawRectangleLines(10, 10, previewSize, windowHeight-20, rl.DarkGray)

	// Emitter frame outline
	frame := c.Frame
	rl.DrawLine(int32(frame.X-frame.Radius), int32(frame.BaseY),
		int32(frame.X+frame.Radius), int32(frame.BaseY), rl.Gray)
	rl.DrawLine(int32(frame.X), int32(frame.BaseY),
		int32(frame.X), int32(frame.BaseY-frame.Height), rl.Gray)

	memberColor := make(map[int]rl.Color, len(ps))
	for ci, cl := range clusters {
		color := clusterColors[ci%len(clusterColors)]
		if len(cl.Members) == 1 {
			color = rl.Gray
		}
		var sumX, sumY float32
		for _, m := range cl.Members {
			memberColor[m] = color
			sumX += ps[m].X
			sumY += ps[m].Y
		}
		if len(cl.Members) > 1 {
			n := float32(len(cl.Members))
			cx, cy := sumX/n, sumY/n
			radius := c.BaseDistance * c.HeightScale(cy)
			rl.DrawCircleLines(int32(cx), int32(cy), radius, rl.Fade(color, 0.5))
		}
	}

	for i, p := range ps {
		color, ok := memberColor[i]
		if !ok {
			color = rl.White
		}
		rl.DrawCircle(int32(p.X), int32(p.Y), 4, color)
	}
}

func drawStats(c *systems.Clusterer, stats systems.PartitionStats, count int) {
	statsY := int32(16)
	over := ""
	if stats.OverBudget {
		over = "  OVER BUDGET"
	}
	rl.DrawText(fmt.Sprintf("particles: %d  clusters: %d / budget %d%s",
		count, stats.ClusterCount, c.Budget, over), 20, statsY, 16, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("multiplier[%d] = %.2f  (threshold %.1f, attempts %d)",
		stats.MultiplierIndex, c.Multipliers[stats.MultiplierIndex],
		stats.Threshold, stats.Attempts), 20, statsY+20, 16, rl.LightGray)
	rl.DrawText("R: rescatter particles", 20, statsY+40, 14, rl.Gray)
}

func drawPanel(c *systems.Clusterer, count *int, particles *[]systems.ParticleState,
	frame systems.EmitterFrame, seed int64) {

	panelX := float32(previewSize + 20)
	panelY := float32(10)

	rl.DrawText("Merge Parameters", int32(panelX), int32(panelY), 20, rl.RayWhite)
	panelY += 35

	c.Budget = int(slider(panelX, &panelY, "Budget (sprite cap)",
		float32(c.Budget), 2, 32, "%.0f"))

	c.BaseDistance = slider(panelX, &panelY, "Base distance",
		c.BaseDistance, 8, 64, "%.0f")

	c.CohesionFactor = slider(panelX, &panelY, "Cohesion factor",
		c.CohesionFactor, 0.3, 1.6, "%.2f")

	c.HeightScaleFloor = slider(panelX, &panelY, "Height scale floor (base)",
		c.HeightScaleFloor, 0.05, 0.6, "%.2f")

	c.HeightScaleGain = slider(panelX, &panelY, "Height scale gain (tip)",
		c.HeightScaleGain, 0.2, 4, "%.2f")

	c.BottomBiasGain = slider(panelX, &panelY, "Bottom bias gain",
		c.BottomBiasGain, 0, 2, "%.2f")

	rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.DarkGray)
	panelY += 15

	newCount := slider(panelX, &panelY, "Particle count",
		float32(*count), 4, 80, "%.0f")
	if int(newCount) != *count {
		*count = int(newCount)
		*particles = scatter(frame, *count, seed)
	}

	// Threshold profile over height for the current settings
	panelY += 10
	rl.DrawText("Merge radius over height", int32(panelX), int32(panelY), 16, rl.RayWhite)
	panelY += 22
	graphH := float32(120)
	maxRadius := c.BaseDistance * (c.HeightScaleFloor + c.HeightScaleGain)
	for px := 0; px < panelWidth-20; px++ {
		h := float32(px) / float32(panelWidth-20)
		y := frame.BaseY - h*frame.Height
		r := c.BaseDistance * c.HeightScale(y)
		barH := graphH * r / float32(math.Max(float64(maxRadius), 1))
		rl.DrawLine(int32(panelX)+int32(px), int32(panelY+graphH),
			int32(panelX)+int32(px), int32(panelY+graphH-barH),
			rl.Color{R: 230, G: 120, B: 50, A: 255})
	}
	rl.DrawText("base", int32(panelX), int32(panelY+graphH+4), 12, rl.Gray)
	rl.DrawText("tip", int32(panelX)+int32(panelWidth)-40, int32(panelY+graphH+4), 12, rl.Gray)
}

// slider draws one labeled slider row and advances the panel cursor.
func slider(x float32, y *float32, label string, value, min, max float32, format string) float32 {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		"", "",
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, v), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.RayWhite)
	*y += 32
	return v
}
