package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/corvid-works/scrapyard/systems"
)

var (
	colBackground = rl.NewColor(24, 26, 30, 255)
	colLetterbox  = rl.NewColor(12, 13, 15, 255)
	colBaseline   = rl.NewColor(70, 74, 82, 255)
	colBarrier    = rl.NewColor(110, 90, 60, 255)
	colBarrierOff = rl.NewColor(60, 55, 48, 120)
	colBin        = rl.NewColor(55, 110, 70, 255)
	colScrap      = rl.NewColor(170, 160, 140, 255)
	colScrapHeld  = rl.NewColor(220, 200, 150, 255)
	colScrapAir   = rl.NewColor(150, 170, 200, 255)
	colGlyph      = rl.NewColor(30, 30, 30, 255)
	colHUD        = rl.NewColor(200, 200, 200, 255)
)

// Draw renders one frame. Everything physical goes through the camera; the
// HUD draws in raw screen pixels.
func (g *Game) Draw() {
	rl.ClearBackground(colLetterbox)

	g.drawPlayfield()
	g.drawBin()
	g.drawBarriers()
	g.drawScrap()
	g.drawHUD()
}

// drawPlayfield fills the world area inside the letterbox margins and marks
// the baseline.
func (g *Game) drawPlayfield() {
	x0, y0 := g.cam.WorldToScreen(0, g.cam.WorldH)
	w := g.cam.WorldSizeToPixels(g.cam.WorldW)
	h := g.cam.WorldSizeToPixels(g.cam.WorldH)
	rl.DrawRectangle(int32(x0), int32(y0), int32(w), int32(h), colBackground)

	bx0, by := g.cam.WorldToScreen(0, 0)
	bx1, _ := g.cam.WorldToScreen(g.cam.WorldW, 0)
	rl.DrawLine(int32(bx0), int32(by), int32(bx1), int32(by), colBaseline)
}

func (g *Game) drawBin() {
	bin := g.cfg.Bin
	sx, sy := g.cam.WorldToScreen(bin.X-bin.Width/2, bin.Y+bin.Height/2)
	w := g.cam.WorldSizeToPixels(bin.Width)
	h := g.cam.WorldSizeToPixels(bin.Height)
	rl.DrawRectangleLinesEx(rl.NewRectangle(float32(sx), float32(sy), float32(w), float32(h)), 2, colBin)
}

func (g *Game) drawBarriers() {
	for _, b := range g.collision.Barriers() {
		cx, cy := g.cam.WorldToScreen(b.X, b.Y)
		w := g.cam.WorldSizeToPixels(b.Width)
		h := g.cam.WorldSizeToPixels(b.Height)

		col := colBarrier
		if !b.Enabled {
			col = colBarrierOff
		}
		rect := rl.NewRectangle(float32(cx), float32(cy), float32(w), float32(h))
		origin := rl.NewVector2(float32(w)/2, float32(h)/2)
		// The screen y-flip turns the world's counterclockwise rotation into
		// raylib's clockwise one, so the angle passes through unchanged.
		rl.DrawRectanglePro(rect, origin, float32(b.Rotation), col)
	}
}

func (g *Game) drawScrap() {
	radiusPx := float32(g.cam.WorldSizeToPixels(g.cfg.Scrap.Radius))
	held, haveHeld := g.drag.Held()

	query := g.scrapFilter.Query()
	for query.Next() {
		entity := query.Entity()
		scrap, pos, air := query.Get()
		if scrap.Collected {
			continue
		}

		wx, wy := pos.X, air.Y
		col := colScrap
		if haveHeld && entity == held {
			// The drag controller owns the held position, not the ECS.
			if hp, ok := g.drag.HeldPos(); ok {
				wx, wy = hp.X, hp.Y
			}
			col = colScrapHeld
		} else if air.Active {
			col = colScrapAir
		}

		sx, sy := g.cam.WorldToScreen(wx, wy)
		rl.DrawCircle(int32(sx), int32(sy), radiusPx, col)

		glyph := g.reg.Appearance(scrap.TypeID, scrap.Mutators)
		fontSize := int32(radiusPx)
		tw := rl.MeasureText(glyph, fontSize)
		rl.DrawText(glyph, int32(sx)-tw/2, int32(sy)-fontSize/2, fontSize, colGlyph)
	}
}

func (g *Game) drawHUD() {
	rl.DrawText(fmt.Sprintf("credits %d", g.credits), 12, 12, 20, colHUD)
	rl.DrawText(fmt.Sprintf("collected %d  active %d  tick %d", g.collected, g.activeCount(), g.tick), 12, 36, 10, colHUD)

	label := "Pause"
	if g.paused {
		label = "Resume"
	}
	if gui.Button(rl.NewRectangle(12, 56, 80, 24), label) {
		g.paused = !g.paused
	}
	if gui.Button(rl.NewRectangle(100, 56, 80, 24), "Spawn") {
		g.SpawnScrap()
	}

	g.cfg.Drag.Stiffness = float64(gui.SliderBar(
		rl.NewRectangle(12, 90, 168, 16), "", fmt.Sprintf("stiffness %.0f", g.cfg.Drag.Stiffness),
		float32(g.cfg.Drag.Stiffness), 5, 120))
	g.cfg.Manipulator.Strength = float64(gui.SliderBar(
		rl.NewRectangle(12, 112, 168, 16), "", fmt.Sprintf("strength %.1f", g.cfg.Manipulator.Strength),
		float32(g.cfg.Manipulator.Strength), 0.5, float32(g.cfg.Manipulator.MaxLoad)))

	g.drag.SetStiffness(g.cfg.Drag.Stiffness)
	g.drag.SetLoadModel(systems.LoadModel{
		Strength: g.cfg.Manipulator.Strength,
		MaxLoad:  g.cfg.Manipulator.MaxLoad,
	})
}
