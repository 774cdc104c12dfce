package game

import (
	"errors"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/corvid-works/scrapyard/systems"
)

// handleInput processes keyboard and pointer input. Handlers only mutate
// shared state; the next step consumes it.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.SpawnScrap()
	}

	g.handlePointer()
}

// handleResize propagates window resizes to the camera.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.cam.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
}

// handlePointer drives the drag state machine from the mouse.
func (g *Game) handlePointer() {
	mouse := rl.GetMousePosition()
	wx, wy := g.cam.ScreenToWorld(float64(mouse.X), float64(mouse.Y))
	pointer := r2.Vec{X: wx, Y: wy}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.tryGrab(pointer)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		g.drag.SetPointer(pointer)
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		g.drag.RequestRelease()
	}
}

// tryGrab picks the scrap under the pointer, if any, into the drag slot.
func (g *Game) tryGrab(pointer r2.Vec) {
	entity, pos, ok := g.scrapAt(pointer)
	if !ok {
		return
	}
	scrap, _, air := g.scrapMapper.Get(entity)

	sizePx := g.cam.WorldSizeToPixels(g.cfg.Scrap.Radius * 2)
	spec := systems.GrabSpec{
		Entity:    entity,
		Kind:      systems.DragScrap,
		ScrapID:   scrap.ID,
		Pos:       pos,
		Mass:      g.reg.Mass(scrap.EffectiveTypeID(), scrap.Mutators),
		SpeedMult: g.reg.DragSpeedMult(scrap.Mutators),
		SizePx:    r2.Vec{X: sizePx, Y: sizePx},
	}
	spec.ShakeThreshold, spec.ShakeMutator = g.shakeThreshold(scrap.Mutators)

	if err := g.drag.Grab(spec, pointer); err != nil {
		if !errors.Is(err, systems.ErrSlotOccupied) {
			slog.Warn("grab failed", "error", err)
		}
		return
	}

	// While held, the drag controller owns the position; ballistic state is
	// reset so the grounded invariant holds.
	air.Ground()
	air.PrevY = 0
}

// scrapAt returns the topmost scrap whose circle contains the world point.
// Airborne scrap are picked at their bounce height.
func (g *Game) scrapAt(p r2.Vec) (ecs.Entity, r2.Vec, bool) {
	pickRadius := g.cfg.Scrap.Radius * 1.5

	query := g.scrapFilter.Query()
	var found bool
	var foundEntity ecs.Entity
	var foundPos r2.Vec
	for query.Next() {
		entity := query.Entity()
		scrap, pos, air := query.Get()
		if scrap.Collected {
			continue
		}
		center := r2.Vec{X: pos.X, Y: air.Y}
		if r2.Norm(r2.Sub(p, center)) <= pickRadius {
			found = true
			foundEntity = entity
			foundPos = center
		}
	}
	return foundEntity, foundPos, found
}

// shakeThreshold returns the smallest positive shake threshold among the
// scrap's mutators and the mutator declaring it.
func (g *Game) shakeThreshold(mutators []string) (float64, string) {
	best := 0.0
	id := ""
	for _, mid := range mutators {
		m := g.reg.Mutator(mid)
		if m.ShakeThreshold > 0 && (best == 0 || m.ShakeThreshold < best) {
			best = m.ShakeThreshold
			id = mid
		}
	}
	return best, id
}
