// Package ui renders the heads-up display for the flame renderer.
package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title           string
	Particles       int
	Clusters        int
	Singles         int
	Groups          int
	Visible         int
	Budget          int
	MultiplierIndex int
	Multipliers     int
	OverBudget      bool
	SpawnInterval   float32
	Tick            int32
	FPS             int32
	Paused          bool
	ScreenWidth     int32
	ScreenHeight    int32
}

// DrawHUD renders the main heads-up display.
func DrawHUD(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Clusters: %d (S:%d G:%d)",
			data.Particles, data.Clusters, data.Singles, data.Groups),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Spawn: %.0fms",
			data.Tick, data.FPS, data.SpawnInterval*1000),
		10, 55, 16, rl.LightGray,
	)

	drawBudgetBar(data)
	drawMultiplierGauge(data)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 95, 16, rl.Yellow)
	}
}

// drawBudgetBar shows visible sprites against the budget.
func drawBudgetBar(data HUDData) {
	const barW, barH = 160, 10
	x := data.ScreenWidth - barW - 14
	y := int32(14)

	rl.DrawRectangleLines(x, y, barW, barH, rl.Gray)

	if data.Budget > 0 {
		frac := float32(data.Visible) / float32(data.Budget)
		if frac > 1 {
			frac = 1
		}
		fill := rl.Color{R: 90, G: 200, B: 120, A: 255}
		if data.OverBudget {
			fill = rl.Color{R: 230, G: 70, B: 50, A: 255}
		} else if frac > 0.8 {
			fill = rl.Color{R: 240, G: 180, B: 60, A: 255}
		}
		rl.DrawRectangle(x+1, y+1, int32(float32(barW-2)*frac), barH-2, fill)
	}

	label := fmt.Sprintf("%d / %d sprites", data.Visible, data.Budget)
	rl.DrawText(label, x, y+14, 14, rl.LightGray)
}

// drawMultiplierGauge shows which escalation step the clusterer landed on.
func drawMultiplierGauge(data HUDData) {
	if data.Multipliers == 0 {
		return
	}
	const cellW, cellH = 14, 8
	x := data.ScreenWidth - int32(data.Multipliers)*cellW - 14
	y := int32(46)

	for i := 0; i < data.Multipliers; i++ {
		cx := x + int32(i)*cellW
		color := rl.Color{R: 50, G: 50, B: 70, A: 255}
		if i <= data.MultiplierIndex {
			color = rl.Color{R: 240, G: 140, B: 50, A: 255}
		}
		rl.DrawRectangle(cx, y, cellW-2, cellH, color)
	}
	rl.DrawText("merge escalation", x, y+12, 12, rl.Gray)
}

// DrawControls renders the control legend at the bottom of the screen.
func DrawControls(screenWidth, screenHeight int32) {
	rl.DrawText("SPACE pause | D debug | G grid | A anchors | B burst | <> budget | F11 fullscreen",
		10, screenHeight-25, 14, rl.Gray)
}
