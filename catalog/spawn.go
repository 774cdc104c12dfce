package catalog

import (
	"math/rand"
	"slices"
)

// Spawn is the result of a spawn roll: the display type, the optional true
// type behind a deceptive display, and the ordered mutator set.
type Spawn struct {
	TypeID     string
	TrueTypeID string // empty unless the display type is deceptive
	Mutators   []string
}

// Spawner samples scrap types by spawn weight and mutators by rarity.
type Spawner struct {
	reg         *Registry
	rng         *rand.Rand
	maxMutators int
}

// NewSpawner creates a spawner over the given registry.
func NewSpawner(reg *Registry, rng *rand.Rand, maxMutators int) *Spawner {
	return &Spawner{reg: reg, rng: rng, maxMutators: maxMutators}
}

// Roll samples one scrap. Always-mutators of the rolled type are included
// first; remaining slots are filled by rarity rolls, skipping never-mutators.
func (s *Spawner) Roll() Spawn {
	typeID := s.rollType()
	t := s.reg.ScrapType(typeID)

	never := t.Never()
	mutators := make([]string, 0, s.maxMutators)
	for _, id := range t.Always() {
		if len(mutators) < s.maxMutators {
			mutators = append(mutators, id)
		}
	}
	for _, id := range s.reg.MutatorIDs() {
		if len(mutators) >= s.maxMutators {
			break
		}
		if slices.Contains(mutators, id) || slices.Contains(never, id) {
			continue
		}
		if s.rng.Float64() < s.reg.Mutator(id).Rarity {
			mutators = append(mutators, id)
		}
	}

	spawn := Spawn{TypeID: typeID, Mutators: mutators}

	// A deceptive mutator makes the scrap display as some other type while
	// the true type keeps driving mass and value.
	for _, id := range mutators {
		if s.reg.Mutator(id).Deceptive {
			spawn.TrueTypeID = typeID
			spawn.TypeID = s.rollOtherType(typeID)
			break
		}
	}
	return spawn
}

// rollType picks a type id weighted by SpawnWeight.
func (s *Spawner) rollType() string {
	total := 0.0
	for _, id := range s.reg.TypeIDs() {
		total += s.reg.ScrapType(id).SpawnWeight
	}
	if total <= 0 {
		return fallbackType.ID
	}
	pick := s.rng.Float64() * total
	for _, id := range s.reg.TypeIDs() {
		pick -= s.reg.ScrapType(id).SpawnWeight
		if pick <= 0 {
			return id
		}
	}
	return s.reg.TypeIDs()[len(s.reg.TypeIDs())-1]
}

// rollOtherType picks a uniformly random type different from exclude.
func (s *Spawner) rollOtherType(exclude string) string {
	ids := s.reg.TypeIDs()
	if len(ids) < 2 {
		return exclude
	}
	for {
		id := ids[s.rng.Intn(len(ids))]
		if id != exclude {
			return id
		}
	}
}
