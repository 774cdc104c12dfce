package systems

import (
	"errors"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/corvid-works/scrapyard/camera"
	"github.com/corvid-works/scrapyard/config"
)

// DragKind tags what the shared drag state machine is moving. Windows and
// list items reuse the same throttled pointer tracking as scrap.
type DragKind uint8

const (
	DragScrap DragKind = iota
	DragWindow
	DragListItem
)

// DropEvent is emitted when a drag is released. Positions and velocities are
// in screen pixels for the downstream consumer.
type DropEvent struct {
	Entity        ecs.Entity
	ScrapID       string
	Kind          DragKind
	PositionPx    r2.Vec
	VelocityPx    r2.Vec
	ElementSizePx r2.Vec

	// ReleasePos is the release position in world units, kept alongside the
	// pixel values so the simulation side does not have to unproject.
	ReleasePos r2.Vec
	ReleaseVel r2.Vec // world units/s; zeroed for a "place"
}

// ErrSlotOccupied is returned by Grab while another object is held. Only one
// object may be dragged at a time system-wide; preventing the double grab is
// the caller's job.
var ErrSlotOccupied = errors.New("drag: slot occupied")

// grabbed is the single optional grabbed-object slot.
type grabbed struct {
	entity    ecs.Entity
	kind      DragKind
	scrapID   string
	pos       r2.Vec // world units
	vel       r2.Vec // world units/s
	mass      float64
	speedMult float64 // mutator drag-speed multiplier
	sizePx    r2.Vec

	shakeThreshold float64 // smallest positive mutator shake threshold, 0 = none
	shakeMutator   string
}

// DragSystem is the spring-damper controller driving a held object toward
// the pointer. Pointer events update shared state; Update consumes it on the
// next tick, so no event handler advances physics.
type DragSystem struct {
	cfg  config.DragConfig
	load LoadModel
	cam  *camera.Camera

	grab *grabbed

	pointer        r2.Vec // world units
	prevPointer    r2.Vec
	pointerVel     r2.Vec
	pointerTracked bool

	releaseRequested bool

	breakage BreakageHook
}

// NewDragSystem creates the drag controller.
func NewDragSystem(cfg config.DragConfig, load LoadModel, cam *camera.Camera) *DragSystem {
	return &DragSystem{cfg: cfg, load: load, cam: cam}
}

// SetBreakageHook installs the shake-breakage extension point.
func (s *DragSystem) SetBreakageHook(h BreakageHook) { s.breakage = h }

// SetStiffness adjusts the spring stiffness for live tuning.
func (s *DragSystem) SetStiffness(v float64) { s.cfg.Stiffness = v }

// SetLoadModel swaps the manipulator load model for live tuning.
func (s *DragSystem) SetLoadModel(load LoadModel) { s.load = load }

// GrabSpec describes the object being grabbed.
type GrabSpec struct {
	Entity    ecs.Entity
	Kind      DragKind
	ScrapID   string
	Pos       r2.Vec // current rendered position, world units
	Mass      float64
	SpeedMult float64
	SizePx    r2.Vec

	ShakeThreshold float64
	ShakeMutator   string
}

// Grab captures an object into the drag slot at its current rendered
// position (so it does not teleport to the pointer).
func (s *DragSystem) Grab(spec GrabSpec, pointer r2.Vec) error {
	if s.grab != nil {
		return ErrSlotOccupied
	}
	mult := spec.SpeedMult
	if mult <= 0 {
		mult = 1.0
	}
	s.grab = &grabbed{
		entity:         spec.Entity,
		kind:           spec.Kind,
		scrapID:        spec.ScrapID,
		pos:            spec.Pos,
		mass:           spec.Mass,
		speedMult:      mult,
		sizePx:         spec.SizePx,
		shakeThreshold: spec.ShakeThreshold,
		shakeMutator:   spec.ShakeMutator,
	}
	s.pointer = pointer
	s.prevPointer = pointer
	s.pointerVel = r2.Vec{}
	s.pointerTracked = true
	s.releaseRequested = false
	return nil
}

// SetPointer records the latest pointer position in world units. Called from
// the input side; consumed by the next Update.
func (s *DragSystem) SetPointer(p r2.Vec) {
	s.pointer = p
}

// RequestRelease marks the held object for release on the next Update.
func (s *DragSystem) RequestRelease() {
	s.releaseRequested = true
}

// Held returns the held entity, if any.
func (s *DragSystem) Held() (ecs.Entity, bool) {
	if s.grab == nil {
		return ecs.Entity{}, false
	}
	return s.grab.entity, true
}

// HeldPos returns the held object's current world position.
func (s *DragSystem) HeldPos() (r2.Vec, bool) {
	if s.grab == nil {
		return r2.Vec{}, false
	}
	return s.grab.pos, true
}

// Update advances the spring-damper integration by dt and returns a drop
// event when a requested release was processed.
func (s *DragSystem) Update(dt float64, fields []Field) *DropEvent {
	if s.grab == nil || dt <= 0 {
		return nil
	}

	if s.pointerTracked {
		s.pointerVel = r2.Scale(1/dt, r2.Sub(s.pointer, s.prevPointer))
	}
	s.prevPointer = s.pointer
	s.pointerTracked = true

	g := s.grab
	d := r2.Sub(s.pointer, g.pos)
	dist := r2.Norm(d)

	var dragDir *r2.Vec
	if dist > 1e-9 {
		u := r2.Scale(1/dist, d)
		dragDir = &u
	}
	lr := s.load.Resolve(fields, g.mass, g.pos, dragDir)

	// Spring toward the pointer, scaled by manipulator effectiveness and the
	// scrap's handling multiplier, plus ambient field forces.
	stiffness := s.cfg.Stiffness * lr.Effectiveness * g.speedMult
	force := r2.Scale(stiffness, d)
	force = r2.Add(force, FieldForce(fields, g.pos, g.mass))

	prevVel := g.vel
	acc := r2.Scale(1/g.mass, force)
	g.vel = r2.Add(g.vel, r2.Scale(dt, acc))
	g.vel = r2.Scale(s.cfg.Damping, g.vel)
	g.vel = clampSpeed(g.vel, s.cfg.MaxSpeed)
	g.pos = r2.Add(g.pos, r2.Scale(dt, g.vel))

	// Snap shortcut kills end-of-drag jitter once everything is nearly still.
	if dist < s.cfg.SnapDistance &&
		r2.Norm(s.pointerVel) < s.cfg.SnapPointerSpd &&
		r2.Norm(g.vel) < s.cfg.SnapObjectSpd {
		g.pos = s.pointer
		g.vel = r2.Vec{}
	}

	// Shake breakage extension point: per-tick velocity change against the
	// smallest declared threshold.
	if g.shakeThreshold > 0 && s.breakage != nil {
		if jerk := r2.Norm(r2.Sub(g.vel, prevVel)); jerk >= g.shakeThreshold {
			s.breakage(g.scrapID, g.shakeMutator, jerk)
		}
	}

	if s.releaseRequested {
		ev := s.buildDrop()
		s.grab = nil
		s.releaseRequested = false
		return ev
	}
	return nil
}

// buildDrop assembles the drop event for the held object.
func (s *DragSystem) buildDrop() *DropEvent {
	g := s.grab
	vel := g.vel
	// A slow release is a deliberate place, not a throw.
	if r2.Norm(vel) < s.cfg.MinThrowSpeed {
		vel = r2.Vec{}
	}

	sx, sy := s.cam.WorldToScreen(g.pos.X, g.pos.Y)
	size := g.sizePx
	if size.X <= 0 || size.Y <= 0 {
		fallback := config.Cfg().Scrap.ElementSizePx
		size = r2.Vec{X: fallback, Y: fallback}
	}
	return &DropEvent{
		Entity:     g.entity,
		ScrapID:    g.scrapID,
		Kind:       g.kind,
		PositionPx: r2.Vec{X: sx, Y: sy},
		// Screen y grows downward, so the vertical velocity flips sign.
		VelocityPx:    r2.Vec{X: vel.X * s.cam.Zoom, Y: -vel.Y * s.cam.Zoom},
		ElementSizePx: size,
		ReleasePos:    g.pos,
		ReleaseVel:    vel,
	}
}
