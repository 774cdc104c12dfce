package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/corvid-works/scrapyard/components"
	"github.com/corvid-works/scrapyard/config"
)

// AirborneSystem integrates gravity-driven ballistic motion for released
// scrap. Horizontal motion is not gravity-affected.
type AirborneSystem struct {
	filter ecs.Filter2[components.Position, components.Airborne]
	cfg    config.PhysicsConfig
}

// NewAirborneSystem creates the airborne integrator.
func NewAirborneSystem(w *ecs.World, cfg config.PhysicsConfig) *AirborneSystem {
	return &AirborneSystem{
		filter: *ecs.NewFilter2[components.Position, components.Airborne](w),
		cfg:    cfg,
	}
}

// Launch puts a scrap into ballistic flight. velPx is the release velocity
// in screen pixels/s (screen y down); zoom converts it to world units/s.
func (s *AirborneSystem) Launch(air *components.Airborne, velPx r2.Vec, zoom, startY float64) {
	if air.GravityMult <= 0 {
		air.GravityMult = 1.0
	}
	if air.MomentumMult <= 0 {
		air.MomentumMult = 1.0
	}

	vx := velPx.X / zoom * air.MomentumMult
	vy := -velPx.Y / zoom * air.MomentumMult

	air.Active = true
	air.VX = clampFloat(vx, -s.cfg.MaxLaunchVX, s.cfg.MaxLaunchVX)
	air.VY = clampFloat(vy, -s.cfg.MaxDownSpeed, s.cfg.MaxUpSpeed)
	air.Y = startY
	air.PrevY = startY
	air.ClearHistory()
	air.PushHistory(air.VX, air.VY)
}

// Update advances every airborne scrap by dt seconds. Scrap crossing the
// baseline stay active with their velocity intact until Settle, so the
// collision resolver can still sweep the final descent.
func (s *AirborneSystem) Update(w *ecs.World, dt float64) {
	query := s.filter.Query()
	for query.Next() {
		pos, air := query.Get()
		if !air.Active {
			// PrevY held the pre-landing height for one frame; settle it.
			air.PrevY = air.Y
			continue
		}

		air.PrevY = air.Y
		air.VY += s.cfg.Gravity * air.GravityMult * dt
		air.VY = clampFloat(air.VY, -s.cfg.MaxDownSpeed, s.cfg.MaxUpSpeed)
		air.Y += air.VY * dt
		pos.X += air.VX * dt
		air.PushHistory(air.VX, air.VY)
	}
}

// Settle grounds every airborne scrap that ended the frame at or below the
// baseline. Runs after collision resolution; a bounce that lifted the scrap
// back above the baseline keeps it airborne.
func (s *AirborneSystem) Settle(w *ecs.World) {
	query := s.filter.Query()
	for query.Next() {
		_, air := query.Get()
		if air.Active && air.Y <= 0 {
			air.Ground()
		}
	}
}

// AverageVelocity returns the rolling-history mean velocity, falling back to
// the instantaneous velocity when no samples exist.
func AverageVelocity(air *components.Airborne) r2.Vec {
	vx, vy := air.History()
	if len(vx) == 0 {
		return r2.Vec{X: air.VX, Y: air.VY}
	}
	return r2.Vec{X: stat.Mean(vx, nil), Y: stat.Mean(vy, nil)}
}
