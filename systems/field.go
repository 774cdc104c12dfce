// Package systems contains the simulation systems for the scrap engine.
package systems

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/corvid-works/scrapyard/config"
)

// pointFieldDeadZone is the radius around a point source inside which its
// contribution is zero, avoiding the singularity at the source.
const pointFieldDeadZone = 1.0

// minCardinalLoad is the floor applied to every cardinal load.
const minCardinalLoad = 0.1

// Field is an ambient force field acting on scrap.
type Field interface {
	// LoadAt returns the field's load contribution at pos as a vector
	// pointing in the direction the field assists movement.
	LoadAt(pos r2.Vec) r2.Vec
	// ForceAt returns the world-space force on a body of the given mass.
	ForceAt(pos r2.Vec, mass float64) r2.Vec
}

// GlobalField is a uniform directional field (gravity-like).
type GlobalField struct {
	Dir      r2.Vec // unit direction the field pushes toward
	Strength float64
}

// LoadAt implements Field.
func (f GlobalField) LoadAt(r2.Vec) r2.Vec {
	return r2.Scale(f.Strength, f.Dir)
}

// ForceAt implements Field. Uniform fields scale with mass.
func (f GlobalField) ForceAt(_ r2.Vec, mass float64) r2.Vec {
	return r2.Scale(f.Strength*mass, f.Dir)
}

// PointSourceField is an attractor (or repulsor, with negative strength) at a
// fixed world position with inverse-power-law falloff.
type PointSourceField struct {
	Pos      r2.Vec
	Strength float64
	Falloff  float64 // falloff exponent
	MaxRange float64 // 0 = unlimited
}

// LoadAt implements Field.
func (f PointSourceField) LoadAt(pos r2.Vec) r2.Vec {
	d := r2.Sub(f.Pos, pos)
	dist := math.Hypot(d.X, d.Y)
	if dist < pointFieldDeadZone {
		return r2.Vec{}
	}
	if f.MaxRange > 0 && dist > f.MaxRange {
		return r2.Vec{}
	}
	mag := f.Strength / math.Pow(dist, f.Falloff)
	return r2.Scale(mag/dist, d)
}

// ForceAt implements Field. Point sources act on the material, not the mass.
func (f PointSourceField) ForceAt(pos r2.Vec, _ float64) r2.Vec {
	return f.LoadAt(pos)
}

// FieldForce sums the force of all fields on a body at pos.
func FieldForce(fields []Field, pos r2.Vec, mass float64) r2.Vec {
	var sum r2.Vec
	for _, f := range fields {
		sum = r2.Add(sum, f.ForceAt(pos, mass))
	}
	return sum
}

// LoadResult holds the four cardinal loads, the effective load for the
// current drag direction, and the manipulator effectiveness.
type LoadResult struct {
	Up, Down, Left, Right float64

	Effective     float64
	Effectiveness float64 // in [0,1], non-increasing in Effective
}

// LoadModel resolves field contributions and manipulator limits into a
// per-direction effective load. Results are recomputed every frame while
// dragging and never persisted.
type LoadModel struct {
	Strength float64 // load moved at full effectiveness
	MaxLoad  float64 // load at which effectiveness reaches zero
}

// Resolve computes cardinal loads for a scrap of the given mass at pos under
// fields, and if dragDir is non-nil, the effective load and effectiveness for
// dragging in that (unit) direction.
func (m LoadModel) Resolve(fields []Field, mass float64, pos r2.Vec, dragDir *r2.Vec) LoadResult {
	res := LoadResult{Up: mass, Down: mass, Left: mass, Right: mass}

	for _, f := range fields {
		v := f.LoadAt(pos)
		// A field assisting movement toward a cardinal direction lowers that
		// load and raises the opposite one by the same amount.
		res.Right -= v.X
		res.Left += v.X
		res.Up -= v.Y
		res.Down += v.Y
	}

	res.Up = math.Max(res.Up, minCardinalLoad)
	res.Down = math.Max(res.Down, minCardinalLoad)
	res.Left = math.Max(res.Left, minCardinalLoad)
	res.Right = math.Max(res.Right, minCardinalLoad)

	res.Effectiveness = 1.0
	if dragDir == nil {
		return res
	}

	d := *dragDir
	h := res.Right
	if d.X < 0 {
		h = res.Left
	}
	v := res.Up
	if d.Y < 0 {
		v = res.Down
	}
	// Diagonal movement is only as hard as its hardest axis, not the sum.
	res.Effective = math.Max(math.Abs(d.X)*h, math.Abs(d.Y)*v)
	res.Effectiveness = m.effectiveness(res.Effective)
	return res
}

// effectiveness maps an effective load to the [0,1] responsiveness scalar.
func (m LoadModel) effectiveness(load float64) float64 {
	switch {
	case load <= m.Strength:
		return 1.0
	case load >= m.MaxLoad:
		return 0.0
	default:
		return clamp01(1.0 - (load-m.Strength)/(m.MaxLoad-m.Strength))
	}
}

// FieldsFromConfig builds the field list from configuration, skipping
// malformed entries so one bad definition cannot halt the simulation.
func FieldsFromConfig(fc config.FieldsConfig) []Field {
	var fields []Field
	for _, g := range fc.Global {
		n := math.Hypot(g.DirX, g.DirY)
		if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			slog.Warn("ignoring global field with invalid direction", "dir_x", g.DirX, "dir_y", g.DirY)
			continue
		}
		fields = append(fields, GlobalField{
			Dir:      r2.Scale(1/n, r2.Vec{X: g.DirX, Y: g.DirY}),
			Strength: g.Strength,
		})
	}
	for _, p := range fc.Point {
		if p.Falloff < 0 || math.IsNaN(p.Strength) {
			slog.Warn("ignoring point field with invalid parameters", "x", p.X, "y", p.Y, "falloff", p.Falloff)
			continue
		}
		fields = append(fields, PointSourceField{
			Pos:      r2.Vec{X: p.X, Y: p.Y},
			Strength: p.Strength,
			Falloff:  p.Falloff,
			MaxRange: p.MaxRange,
		})
	}
	return fields
}
