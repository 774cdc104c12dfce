package systems

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/corvid-works/scrapyard/camera"
	"github.com/corvid-works/scrapyard/config"
)

func testDragConfig() config.DragConfig {
	return config.DragConfig{
		Stiffness:      42,
		Damping:        0.88,
		MaxSpeed:       45,
		SnapDistance:   0.08,
		SnapPointerSpd: 0.5,
		SnapObjectSpd:  0.5,
		MinThrowSpeed:  2.5,
	}
}

func newTestDrag() *DragSystem {
	load := LoadModel{Strength: 4, MaxLoad: 14}
	cam := camera.New(1280, 720, 20, 10)
	return NewDragSystem(testDragConfig(), load, cam)
}

func grabAt(t *testing.T, s *DragSystem, pos r2.Vec) {
	t.Helper()
	spec := GrabSpec{
		ScrapID:   "test-scrap",
		Kind:      DragScrap,
		Pos:       pos,
		Mass:      1.0,
		SpeedMult: 1.0,
		SizePx:    r2.Vec{X: 48, Y: 48},
	}
	if err := s.Grab(spec, pos); err != nil {
		t.Fatalf("Grab: %v", err)
	}
}

func TestGrabSlotOccupied(t *testing.T) {
	s := newTestDrag()
	grabAt(t, s, r2.Vec{X: 5, Y: 2})

	err := s.Grab(GrabSpec{ScrapID: "other", Mass: 1, SpeedMult: 1}, r2.Vec{})
	if !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("second Grab error = %v, want ErrSlotOccupied", err)
	}
}

func TestGrabDoesNotTeleport(t *testing.T) {
	s := newTestDrag()
	start := r2.Vec{X: 5, Y: 2}
	spec := GrabSpec{ScrapID: "x", Pos: start, Mass: 1, SpeedMult: 1, SizePx: r2.Vec{X: 48, Y: 48}}
	if err := s.Grab(spec, r2.Vec{X: 12, Y: 8}); err != nil {
		t.Fatalf("Grab: %v", err)
	}
	pos, ok := s.HeldPos()
	if !ok || pos != start {
		t.Errorf("HeldPos = %v, want grab position %v", pos, start)
	}
}

func TestUpdateSpeedClamp(t *testing.T) {
	s := newTestDrag()
	grabAt(t, s, r2.Vec{X: 1, Y: 1})
	s.SetPointer(r2.Vec{X: 19, Y: 9})

	const dt = 1.0 / 60
	prev, _ := s.HeldPos()
	for i := 0; i < 120; i++ {
		s.Update(dt, nil)
		pos, _ := s.HeldPos()
		step := r2.Norm(r2.Sub(pos, prev))
		if step > 45*dt*(1+1e-9) {
			t.Fatalf("tick %d: moved %g wu, exceeds speed clamp", i, step/dt)
		}
		prev = pos
	}
}

func TestUpdateConverges(t *testing.T) {
	s := newTestDrag()
	grabAt(t, s, r2.Vec{X: 3, Y: 1})
	target := r2.Vec{X: 9, Y: 6}
	s.SetPointer(target)

	const dt = 1.0 / 60
	for i := 0; i < 600; i++ {
		s.Update(dt, nil)
	}
	pos, ok := s.HeldPos()
	if !ok {
		t.Fatal("lost held object")
	}
	if r2.Norm(r2.Sub(pos, target)) > 1e-6 {
		t.Errorf("position %v did not converge to pointer %v", pos, target)
	}
}

func TestUpdateSnapKillsJitter(t *testing.T) {
	s := newTestDrag()
	start := r2.Vec{X: 5, Y: 5}
	grabAt(t, s, start)
	s.SetPointer(r2.Vec{X: 5.01, Y: 5})

	const dt = 1.0 / 60
	for i := 0; i < 30; i++ {
		s.Update(dt, nil)
	}
	pos, _ := s.HeldPos()
	if pos != (r2.Vec{X: 5.01, Y: 5}) {
		t.Errorf("position %v, want exact snap to pointer", pos)
	}
}

func TestReleaseSlowIsPlace(t *testing.T) {
	s := newTestDrag()
	grabAt(t, s, r2.Vec{X: 5, Y: 2})
	s.SetPointer(r2.Vec{X: 5, Y: 2})

	const dt = 1.0 / 60
	for i := 0; i < 30; i++ {
		s.Update(dt, nil)
	}
	s.RequestRelease()
	ev := s.Update(dt, nil)
	if ev == nil {
		t.Fatal("no drop event after release")
	}
	if ev.ReleaseVel != (r2.Vec{}) {
		t.Errorf("ReleaseVel = %v, want zero for a place", ev.ReleaseVel)
	}
	if ev.VelocityPx != (r2.Vec{}) {
		t.Errorf("VelocityPx = %v, want zero for a place", ev.VelocityPx)
	}
	if _, held := s.Held(); held {
		t.Error("slot still occupied after release")
	}
}

func TestReleaseFastIsThrow(t *testing.T) {
	s := newTestDrag()
	grabAt(t, s, r2.Vec{X: 3, Y: 3})

	const dt = 1.0 / 60
	// Sweep the pointer to build up object velocity.
	for i := 1; i <= 30; i++ {
		s.SetPointer(r2.Vec{X: 3 + float64(i)*0.3, Y: 3})
		s.Update(dt, nil)
	}
	s.RequestRelease()
	ev := s.Update(dt, nil)
	if ev == nil {
		t.Fatal("no drop event after release")
	}
	if r2.Norm(ev.ReleaseVel) < 2.5 {
		t.Errorf("ReleaseVel = %v, want a throw above the minimum", ev.ReleaseVel)
	}
	if ev.ReleaseVel.X <= 0 {
		t.Errorf("ReleaseVel.X = %g, want positive (pointer moved right)", ev.ReleaseVel.X)
	}
}

func TestDropEventPixelConversion(t *testing.T) {
	s := newTestDrag()
	grabAt(t, s, r2.Vec{X: 10, Y: 5})
	s.SetPointer(r2.Vec{X: 10, Y: 5})

	s.RequestRelease()
	ev := s.Update(1.0/60, nil)
	if ev == nil {
		t.Fatal("no drop event")
	}

	cam := camera.New(1280, 720, 20, 10)
	sx, sy := cam.WorldToScreen(ev.ReleasePos.X, ev.ReleasePos.Y)
	if math.Abs(ev.PositionPx.X-sx) > 1e-6 || math.Abs(ev.PositionPx.Y-sy) > 1e-6 {
		t.Errorf("PositionPx = %v, want (%g, %g)", ev.PositionPx, sx, sy)
	}
	if ev.ElementSizePx != (r2.Vec{X: 48, Y: 48}) {
		t.Errorf("ElementSizePx = %v, want 48x48", ev.ElementSizePx)
	}
}

func TestHeavyLoadSlowsDrag(t *testing.T) {
	load := LoadModel{Strength: 4, MaxLoad: 14}
	cam := camera.New(1280, 720, 20, 10)
	const dt = 1.0 / 60

	run := func(mass float64) float64 {
		s := NewDragSystem(testDragConfig(), load, cam)
		start := r2.Vec{X: 2, Y: 2}
		spec := GrabSpec{ScrapID: "m", Pos: start, Mass: mass, SpeedMult: 1, SizePx: r2.Vec{X: 48, Y: 48}}
		if err := s.Grab(spec, start); err != nil {
			t.Fatalf("Grab: %v", err)
		}
		s.SetPointer(r2.Vec{X: 18, Y: 2})
		for i := 0; i < 60; i++ {
			s.Update(dt, nil)
		}
		pos, _ := s.HeldPos()
		return pos.X - start.X
	}

	light := run(1)
	heavy := run(10)
	if heavy >= light {
		t.Errorf("heavy scrap advanced %g, light %g: mass should slow the drag", heavy, light)
	}
}

func TestShakeBreakageHook(t *testing.T) {
	s := newTestDrag()
	var fired int
	var gotMutator string
	s.SetBreakageHook(func(scrapID, mutatorID string, speed float64) {
		fired++
		gotMutator = mutatorID
	})

	spec := GrabSpec{
		ScrapID:        "fragile-one",
		Pos:            r2.Vec{X: 5, Y: 5},
		Mass:           0.3,
		SpeedMult:      1,
		SizePx:         r2.Vec{X: 48, Y: 48},
		ShakeThreshold: 1.0,
		ShakeMutator:   "fragile",
	}
	if err := s.Grab(spec, r2.Vec{X: 5, Y: 5}); err != nil {
		t.Fatalf("Grab: %v", err)
	}

	const dt = 1.0 / 60
	// Violent alternating pointer movement produces large per-tick velocity
	// deltas on a light object.
	for i := 0; i < 60; i++ {
		x := 2.0
		if i%2 == 0 {
			x = 18.0
		}
		s.SetPointer(r2.Vec{X: x, Y: 5})
		s.Update(dt, nil)
	}
	if fired == 0 {
		t.Fatal("shake hook never fired under violent dragging")
	}
	if gotMutator != "fragile" {
		t.Errorf("hook mutator = %q, want fragile", gotMutator)
	}
}

func TestUpdateNoGrabIsNoop(t *testing.T) {
	s := newTestDrag()
	if ev := s.Update(1.0/60, nil); ev != nil {
		t.Errorf("Update without grab returned %v", ev)
	}
}
