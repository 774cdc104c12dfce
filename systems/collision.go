package systems

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/corvid-works/scrapyard/catalog"
	"github.com/corvid-works/scrapyard/components"
	"github.com/corvid-works/scrapyard/config"
)

// Barrier is a static rotated-rectangle obstacle. The engine only reads
// barrier configuration; ownership stays with the caller.
type Barrier struct {
	ID          string  `yaml:"id"`
	X           float64 `yaml:"x"`           // center, world units
	Y           float64 `yaml:"y"`           // center height above baseline
	Width       float64 `yaml:"width"`       // world units
	Height      float64 `yaml:"height"`      // world units
	Rotation    float64 `yaml:"rotation"`    // degrees, counter-clockwise
	Restitution float64 `yaml:"restitution"` // [0,1]
	Friction    float64 `yaml:"friction"`    // [0,1]
	Enabled     bool    `yaml:"enabled"`
	Visual      string  `yaml:"visual"` // optional render override
}

// Validate rejects malformed barrier entries so a corrupt layout cannot halt
// the tick loop.
func (b *Barrier) Validate() error {
	switch {
	case b.Width <= 0 || b.Height <= 0:
		return fmt.Errorf("barrier %q: non-positive extent %gx%g", b.ID, b.Width, b.Height)
	case b.Restitution < 0 || b.Restitution > 1:
		return fmt.Errorf("barrier %q: restitution %g outside [0,1]", b.ID, b.Restitution)
	case b.Friction < 0 || b.Friction > 1:
		return fmt.Errorf("barrier %q: friction %g outside [0,1]", b.ID, b.Friction)
	case math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsNaN(b.Rotation):
		return fmt.Errorf("barrier %q: non-finite placement", b.ID)
	}
	return nil
}

// aabb returns the axis-aligned bounding box of the rotated barrier.
func (b *Barrier) aabb() (minX, minY, maxX, maxY float64) {
	rad := b.Rotation * math.Pi / 180
	cos, sin := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	hw := (b.Width*cos + b.Height*sin) / 2
	hh := (b.Width*sin + b.Height*cos) / 2
	return b.X - hw, b.Y - hh, b.X + hw, b.Y + hh
}

// contact is a resolved narrow-phase hit against one barrier.
type contact struct {
	corrected   r2.Vec // scrap center pushed out of the barrier
	normal      r2.Vec // unit, from barrier surface toward scrap center
	penetration float64
	restitution float64
	friction    float64
}

// BreakageHook receives breakage-threshold crossings from fragile mutators.
// Gameplay side effects are an extension point; the default hook is a no-op.
type BreakageHook func(scrapID, mutatorID string, speed float64)

// CollisionSystem resolves circular scrap against oriented rectangular
// barriers, with swept sub-stepping to prevent tunneling.
type CollisionSystem struct {
	filter ecs.Filter3[components.Scrap, components.Position, components.Airborne]
	cfg    config.PhysicsConfig
	radius float64

	barriers []Barrier
	reg      *catalog.Registry
	breakage BreakageHook
}

// NewCollisionSystem creates the barrier collision resolver.
func NewCollisionSystem(w *ecs.World, cfg config.PhysicsConfig, radius float64, reg *catalog.Registry) *CollisionSystem {
	return &CollisionSystem{
		filter: *ecs.NewFilter3[components.Scrap, components.Position, components.Airborne](w),
		cfg:    cfg,
		radius: radius,
		reg:    reg,
	}
}

// SetBarriers replaces the barrier list. Entries are assumed validated.
func (s *CollisionSystem) SetBarriers(barriers []Barrier) {
	s.barriers = barriers
}

// Barriers returns the current barrier list (read-only by convention).
func (s *CollisionSystem) Barriers() []Barrier {
	return s.barriers
}

// SetBreakageHook installs the impact-breakage extension point.
func (s *CollisionSystem) SetBreakageHook(h BreakageHook) {
	s.breakage = h
}

// Update resolves barrier collisions for every airborne scrap.
func (s *CollisionSystem) Update(w *ecs.World, dt float64) {
	if len(s.barriers) == 0 {
		return
	}
	query := s.filter.Query()
	for query.Next() {
		scrap, pos, air := query.Get()
		if !air.Active || scrap.Collected {
			continue
		}
		s.resolveScrap(scrap, pos, air, dt)
	}
}

// resolveScrap sub-steps the scrap's path since the previous frame and
// resolves at the first colliding sub-step. Sub-steps never exceed one
// radius, so the scrap cannot tunnel through barriers thinner than one
// frame's travel.
func (s *CollisionSystem) resolveScrap(scrap *components.Scrap, pos *components.Position, air *components.Airborne, dt float64) {
	cur := r2.Vec{X: pos.X, Y: air.Y}
	prev := r2.Vec{X: pos.X - air.VX*dt, Y: air.PrevY}

	travel := r2.Norm(r2.Sub(cur, prev))
	steps := 1
	if travel > s.radius {
		steps = int(math.Ceil(travel / s.radius))
	}

	for i := 1; i <= steps; i++ {
		p := lerp(prev, cur, float64(i)/float64(steps))
		contacts := s.contactsAt(p)
		if len(contacts) == 0 {
			continue
		}
		s.applyContacts(scrap, pos, air, contacts)
		return
	}
}

// contactsAt collects narrow-phase contacts against all enabled barriers.
func (s *CollisionSystem) contactsAt(center r2.Vec) []contact {
	var contacts []contact
	for i := range s.barriers {
		b := &s.barriers[i]
		if !b.Enabled {
			continue
		}
		// Broad phase: AABB vs the scrap's circular bounding box.
		minX, minY, maxX, maxY := b.aabb()
		if center.X+s.radius < minX || center.X-s.radius > maxX ||
			center.Y+s.radius < minY || center.Y-s.radius > maxY {
			continue
		}
		if c, ok := circleVsBarrier(center, s.radius, b); ok {
			contacts = append(contacts, c)
		}
	}
	return contacts
}

// circleVsBarrier is the narrow phase: transform the circle center into the
// barrier's local frame, clamp to the half-extents for the closest point, and
// compare against the radius.
func circleVsBarrier(center r2.Vec, radius float64, b *Barrier) (contact, bool) {
	rad := b.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	d := r2.Sub(center, r2.Vec{X: b.X, Y: b.Y})
	// Rotate by -rotation into the unrotated frame.
	lx := d.X*cos + d.Y*sin
	ly := -d.X*sin + d.Y*cos

	hw, hh := b.Width/2, b.Height/2
	cx := clampFloat(lx, -hw, hw)
	cy := clampFloat(ly, -hh, hh)

	dx, dy := lx-cx, ly-cy
	distSq := dx*dx + dy*dy
	if distSq > radius*radius {
		return contact{}, false
	}

	var nLocal r2.Vec
	var dist float64
	if distSq > 1e-12 {
		dist = math.Sqrt(distSq)
		nLocal = r2.Vec{X: dx / dist, Y: dy / dist}
	} else {
		// Center inside the rectangle: fall back to the direction from the
		// barrier center so the normal still points toward the scrap.
		nLocal = normalize(r2.Vec{X: lx, Y: ly})
		if nLocal == (r2.Vec{}) {
			nLocal = r2.Vec{X: 0, Y: 1}
		}
	}

	// Rotate the normal back into world space.
	n := r2.Vec{X: nLocal.X*cos - nLocal.Y*sin, Y: nLocal.X*sin + nLocal.Y*cos}
	pen := radius - dist
	return contact{
		corrected:   r2.Add(center, r2.Scale(pen, n)),
		normal:      n,
		penetration: pen,
		restitution: b.Restitution,
		friction:    b.Friction,
	}, true
}

// applyContacts mutates position and velocity for one or more simultaneous
// barrier contacts.
func (s *CollisionSystem) applyContacts(scrap *components.Scrap, pos *components.Position, air *components.Airborne, contacts []contact) {
	// Averaged velocity gives a stable response under variable frame timing.
	v := AverageVelocity(air)

	var corrected, navg r2.Vec
	maxNormalSpeed := 0.0
	maxFriction := 0.0
	for _, c := range contacts {
		corrected = r2.Add(corrected, c.corrected)
		navg = r2.Add(navg, c.normal)
		if ns := math.Abs(r2.Dot(v, c.normal)); ns > maxNormalSpeed {
			maxNormalSpeed = ns
		}
		if c.friction > maxFriction {
			maxFriction = c.friction
		}
	}
	corrected = r2.Scale(1/float64(len(contacts)), corrected)

	var out r2.Vec
	if len(contacts) == 1 {
		out = s.bounce(v, contacts[0])
	} else {
		// Wedged in a crease: kill all motion below the resting threshold,
		// otherwise slide along the tangent of the averaged normal with the
		// most restrictive friction.
		if maxNormalSpeed < s.cfg.RestThreshold {
			out = r2.Vec{}
		} else {
			n := normalize(navg)
			out = r2.Sub(v, r2.Scale(r2.Dot(v, n), n))
			out = r2.Scale(1-maxFriction*0.5, out)
		}
	}

	s.checkImpactBreakage(scrap, maxNormalSpeed)

	pos.X = corrected.X
	air.Y = math.Max(corrected.Y, 0)
	air.VX = out.X
	air.VY = out.Y
	// History restarts from the post-impact velocity.
	air.ClearHistory()
	air.PushHistory(out.X, out.Y)
}

// bounce resolves a single contact: resting contact below the threshold,
// restitution-scaled reflection above it. Only approaching velocity is
// reflected; a contact already separating keeps its velocity and relies on
// the positional push-out alone.
func (s *CollisionSystem) bounce(v r2.Vec, c contact) r2.Vec {
	vn := r2.Dot(v, c.normal)
	if vn > 0 {
		return v
	}
	vt := r2.Sub(v, r2.Scale(vn, c.normal))

	if -vn < s.cfg.RestThreshold {
		// No micro-bounce: drop the normal component, damp the rest.
		return r2.Scale(s.cfg.TangentDamp, vt)
	}

	vt = r2.Scale(1-c.friction*0.5, vt)
	reflected := r2.Scale(-vn*c.restitution, c.normal)
	return r2.Add(vt, reflected)
}

// checkImpactBreakage feeds fragile-mutator impact thresholds into the
// breakage hook.
func (s *CollisionSystem) checkImpactBreakage(scrap *components.Scrap, impactSpeed float64) {
	if s.breakage == nil || s.reg == nil {
		return
	}
	for _, id := range scrap.Mutators {
		m := s.reg.Mutator(id)
		if m.ImpactThreshold > 0 && impactSpeed >= m.ImpactThreshold {
			s.breakage(scrap.ID, id, impactSpeed)
		}
	}
}
