package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/corvid-works/scrapyard/catalog"
	"github.com/corvid-works/scrapyard/components"
	"github.com/corvid-works/scrapyard/config"
)

// CreditCallback receives the summed value of all scrap collected in one
// tick. Invoked at most once per tick to avoid redundant downstream updates.
type CreditCallback func(credits int)

// CollectSystem removes scrap that overlaps the bin and reports their value.
type CollectSystem struct {
	filter ecs.Filter3[components.Scrap, components.Position, components.Airborne]
	bin    config.BinConfig
	radius float64
	reg    *catalog.Registry

	onCredits CreditCallback
	pending   int
}

// NewCollectSystem creates the bin collection system.
func NewCollectSystem(w *ecs.World, bin config.BinConfig, radius float64, reg *catalog.Registry) *CollectSystem {
	return &CollectSystem{
		filter: *ecs.NewFilter3[components.Scrap, components.Position, components.Airborne](w),
		bin:    bin,
		radius: radius,
		reg:    reg,
	}
}

// SetCreditCallback installs the credits-earned callback.
func (s *CollectSystem) SetCreditCallback(cb CreditCallback) {
	s.onCredits = cb
}

// Deposit adds value collected outside the bin sweep (a drop released
// directly over the bin) into the current tick's credit sum, keeping the
// callback at one invocation per tick.
func (s *CollectSystem) Deposit(value int) {
	s.pending += value
}

// Update collects every active, uncollected scrap overlapping the bin.
// The held entity is exempt; while dragged, collection is the drop handler's
// decision. Returns the entities collected this tick for removal.
func (s *CollectSystem) Update(w *ecs.World, held ecs.Entity, haveHeld bool) []ecs.Entity {
	var collected []ecs.Entity
	total := s.pending
	s.pending = 0

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		scrap, pos, air := query.Get()
		if scrap.Collected {
			continue
		}
		if haveHeld && entity == held {
			continue
		}
		if !s.Overlaps(pos.X, air.Y) {
			continue
		}
		scrap.Collected = true
		total += s.reg.Value(scrap.EffectiveTypeID(), scrap.Mutators)
		collected = append(collected, entity)
	}

	if total > 0 && s.onCredits != nil {
		s.onCredits(total)
	}
	return collected
}

// Overlaps reports whether a scrap circle at (x, y) touches the bin
// rectangle, by the closest-point-on-rectangle test.
func (s *CollectSystem) Overlaps(x, y float64) bool {
	hw, hh := s.bin.Width/2, s.bin.Height/2
	cx := clampFloat(x, s.bin.X-hw, s.bin.X+hw)
	cy := clampFloat(y, s.bin.Y-hh, s.bin.Y+hh)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= s.radius*s.radius
}
