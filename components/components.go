// Package components defines ECS components for the scrap simulation.
package components

import "time"

// Position is a scrap's horizontal world position along the baseline, in
// world units. Vertical position lives in Airborne.Y (height above baseline).
type Position struct {
	X float64
}

// Scrap is the identity component of an active scrap object.
type Scrap struct {
	ID         string   // unique instance id
	TypeID     string   // displayed type
	TrueTypeID string   // real type behind a deceptive display; empty = TypeID
	Mutators   []string // ordered mutator ids
	CreatedAt  time.Time

	Collected bool
	OffScreen bool
}

// EffectiveTypeID returns the type that drives mass and value.
func (s *Scrap) EffectiveTypeID() string {
	if s.TrueTypeID != "" {
		return s.TrueTypeID
	}
	return s.TypeID
}
