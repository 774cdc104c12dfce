// Package catalog holds the static scrap type and mutator registries and the
// value model derived from them. Registries are immutable after loading.
package catalog

import (
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/gocarina/gocsv"
)

//go:embed scrap_types.csv
var scrapTypesCSV []byte

//go:embed mutators.csv
var mutatorsCSV []byte

// ScrapType is a static registry entry describing a spawnable scrap kind.
type ScrapType struct {
	ID             string  `csv:"id"`
	Name           string  `csv:"name"`
	BaseValue      float64 `csv:"base_value"`
	BaseMass       float64 `csv:"base_mass"`
	SpawnWeight    float64 `csv:"spawn_weight"`
	Glyph          string  `csv:"glyph"`
	AlwaysMutators string  `csv:"always_mutators"` // semicolon-separated mutator ids
	NeverMutators  string  `csv:"never_mutators"`  // semicolon-separated mutator ids
}

// Always returns the parsed always-mutator id list.
func (t *ScrapType) Always() []string { return splitIDs(t.AlwaysMutators) }

// Never returns the parsed never-mutator id list.
func (t *ScrapType) Never() []string { return splitIDs(t.NeverMutators) }

// Mutator is a static registry entry describing a composable scrap modifier.
type Mutator struct {
	ID                 string  `csv:"id"`
	Name               string  `csv:"name"`
	CreditMultiplier   float64 `csv:"credit_multiplier"`
	MassModifier       float64 `csv:"mass_modifier"`
	DragSpeedMult      float64 `csv:"drag_speed_multiplier"`
	GravityMult        float64 `csv:"gravity_multiplier"`
	MomentumMult       float64 `csv:"momentum_multiplier"`
	ProtectionRequired string  `csv:"protection_required"` // hazard tag, empty = none
	ImpactThreshold    float64 `csv:"impact_threshold"`    // wu/s, 0 = unbreakable
	ShakeThreshold     float64 `csv:"shake_threshold"`     // wu/s, 0 = unbreakable
	Deceptive          bool    `csv:"deceptive"`           // displays as a different type
	Glyph              string  `csv:"glyph"`               // appearance overlay
	Rarity             float64 `csv:"rarity"`              // spawn probability in [0,1]
}

// MinMass is the floor applied to scrap mass after mutator modifiers.
const MinMass = 0.1

// Registry provides lookup over the loaded scrap type and mutator tables.
type Registry struct {
	types    map[string]*ScrapType
	mutators map[string]*Mutator

	// insertion order, for deterministic sampling
	typeOrder    []string
	mutatorOrder []string
}

// fallback entries keep unknown ids in play instead of dropping the scrap.
var (
	fallbackType    = ScrapType{ID: "unknown", Name: "Unknown Scrap", BaseValue: 0, BaseMass: 1.0, Glyph: "?"}
	fallbackMutator = Mutator{ID: "unknown", Name: "Unknown Mutator", CreditMultiplier: 1.0, DragSpeedMult: 1.0, GravityMult: 1.0, MomentumMult: 1.0}
)

// Load parses the embedded registry tables.
func Load() (*Registry, error) {
	var types []*ScrapType
	if err := gocsv.UnmarshalBytes(scrapTypesCSV, &types); err != nil {
		return nil, fmt.Errorf("parsing scrap types: %w", err)
	}
	var mutators []*Mutator
	if err := gocsv.UnmarshalBytes(mutatorsCSV, &mutators); err != nil {
		return nil, fmt.Errorf("parsing mutators: %w", err)
	}

	r := &Registry{
		types:    make(map[string]*ScrapType, len(types)),
		mutators: make(map[string]*Mutator, len(mutators)),
	}
	for _, t := range types {
		r.types[t.ID] = t
		r.typeOrder = append(r.typeOrder, t.ID)
	}
	for _, m := range mutators {
		// Multipliers default to identity when the column is empty.
		if m.CreditMultiplier == 0 {
			m.CreditMultiplier = 1.0
		}
		if m.DragSpeedMult == 0 {
			m.DragSpeedMult = 1.0
		}
		if m.GravityMult == 0 {
			m.GravityMult = 1.0
		}
		if m.MomentumMult == 0 {
			m.MomentumMult = 1.0
		}
		r.mutators[m.ID] = m
		r.mutatorOrder = append(r.mutatorOrder, m.ID)
	}
	return r, nil
}

// MustLoad is like Load but panics on error. The tables are embedded, so a
// failure here is a build defect.
func MustLoad() *Registry {
	r, err := Load()
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return r
}

// ScrapType returns the registry entry for id, or a zero-value fallback entry
// with a logged warning when the id is unknown.
func (r *Registry) ScrapType(id string) *ScrapType {
	if t, ok := r.types[id]; ok {
		return t
	}
	slog.Warn("unknown scrap type, using fallback", "type_id", id)
	return &fallbackType
}

// Mutator returns the registry entry for id, or an identity fallback entry
// with a logged warning when the id is unknown.
func (r *Registry) Mutator(id string) *Mutator {
	if m, ok := r.mutators[id]; ok {
		return m
	}
	slog.Warn("unknown mutator, using fallback", "mutator_id", id)
	return &fallbackMutator
}

// TypeIDs returns all scrap type ids in table order.
func (r *Registry) TypeIDs() []string { return r.typeOrder }

// MutatorIDs returns all mutator ids in table order.
func (r *Registry) MutatorIDs() []string { return r.mutatorOrder }

// Mass returns the scrap mass for a type and mutator set, floored at MinMass.
func (r *Registry) Mass(typeID string, mutators []string) float64 {
	mass := r.ScrapType(typeID).BaseMass
	for _, id := range mutators {
		mass += r.Mutator(id).MassModifier
	}
	return math.Max(mass, MinMass)
}

// Value returns the credit value for a type and mutator set:
// round(baseValue * product of credit multipliers). Pure in its inputs.
func (r *Registry) Value(typeID string, mutators []string) int {
	v := r.ScrapType(typeID).BaseValue
	for _, id := range mutators {
		v *= r.Mutator(id).CreditMultiplier
	}
	return int(math.Round(v))
}

// Appearance returns the base glyph with all mutator glyphs concatenated.
func (r *Registry) Appearance(typeID string, mutators []string) string {
	var sb strings.Builder
	sb.WriteString(r.ScrapType(typeID).Glyph)
	for _, id := range mutators {
		sb.WriteString(r.Mutator(id).Glyph)
	}
	return sb.String()
}

// DragSpeedMult returns the product of the mutator drag-speed multipliers.
func (r *Registry) DragSpeedMult(mutators []string) float64 {
	mult := 1.0
	for _, id := range mutators {
		mult *= r.Mutator(id).DragSpeedMult
	}
	return mult
}

// AirborneMults returns the combined gravity and momentum multipliers.
func (r *Registry) AirborneMults(mutators []string) (gravity, momentum float64) {
	gravity, momentum = 1.0, 1.0
	for _, id := range mutators {
		m := r.Mutator(id)
		gravity *= m.GravityMult
		momentum *= m.MomentumMult
	}
	return gravity, momentum
}

// splitIDs parses a semicolon-separated id list column.
func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
