// Package game wires the scrap simulation together: the ECS world, the
// physics systems, input plumbing, and the demo renderer.
package game

import (
	"log/slog"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/corvid-works/scrapyard/camera"
	"github.com/corvid-works/scrapyard/catalog"
	"github.com/corvid-works/scrapyard/components"
	"github.com/corvid-works/scrapyard/config"
	"github.com/corvid-works/scrapyard/systems"
)

// Options configures a new game instance.
type Options struct {
	Seed      int64
	Headless  bool
	OnCredits systems.CreditCallback // external credit sink, may be nil
}

// Game owns the simulation state. The active scrap collection and barrier
// list are owned here and exposed read-only; the renderer never mutates
// physics state directly.
type Game struct {
	world *ecs.World
	rng   *rand.Rand
	cfg   *config.Config
	reg   *catalog.Registry

	scrapMapper *ecs.Map3[components.Scrap, components.Position, components.Airborne]
	scrapFilter *ecs.Filter3[components.Scrap, components.Position, components.Airborne]

	cam     *camera.Camera
	fields  []systems.Field
	spawner *catalog.Spawner

	drag      *systems.DragSystem
	airborne  *systems.AirborneSystem
	collision *systems.CollisionSystem
	collect   *systems.CollectSystem

	layout *LayoutWatcher

	onCredits systems.CreditCallback
	credits   int
	collected int

	tick       int64
	paused     bool
	spawnTimer float64
}

// NewGame creates a game instance from the global configuration.
func NewGame(opts Options) *Game {
	cfg := config.Cfg()
	world := ecs.NewWorld()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	reg := catalog.MustLoad()
	rng := rand.New(rand.NewSource(seed))

	g := &Game{
		world:       world,
		rng:         rng,
		cfg:         cfg,
		reg:         reg,
		scrapMapper: ecs.NewMap3[components.Scrap, components.Position, components.Airborne](world),
		scrapFilter: ecs.NewFilter3[components.Scrap, components.Position, components.Airborne](world),
		cam:         camera.New(float64(cfg.Screen.Width), float64(cfg.Screen.Height), cfg.World.Width, cfg.World.Height),
		fields:      systems.FieldsFromConfig(cfg.Fields),
		spawner:     catalog.NewSpawner(reg, rng, cfg.Scrap.MaxMutators),
		onCredits:   opts.OnCredits,
	}

	load := systems.LoadModel{Strength: cfg.Manipulator.Strength, MaxLoad: cfg.Manipulator.MaxLoad}
	g.drag = systems.NewDragSystem(cfg.Drag, load, g.cam)
	g.airborne = systems.NewAirborneSystem(world, cfg.Physics)
	g.collision = systems.NewCollisionSystem(world, cfg.Physics, cfg.Scrap.Radius, reg)
	g.collect = systems.NewCollectSystem(world, cfg.Bin, cfg.Scrap.Radius, reg)

	g.collect.SetCreditCallback(g.addCredits)
	hook := g.logBreakage
	g.drag.SetBreakageHook(hook)
	g.collision.SetBreakageHook(hook)

	barriers, err := LoadBarriers(cfg.Barriers.Path)
	if err != nil {
		slog.Warn("barrier layout unavailable, running without barriers", "error", err)
	}
	g.collision.SetBarriers(barriers)

	if cfg.Barriers.HotReload && cfg.Barriers.Path != "" && !opts.Headless {
		w, err := WatchBarriers(cfg.Barriers.Path)
		if err != nil {
			slog.Warn("barrier hot reload disabled", "error", err)
		} else {
			g.layout = w
		}
	}

	return g
}

// Update runs one graphical frame: input, then a simulation step with the
// real frame delta.
func (g *Game) Update() {
	g.handleInput()
	if g.paused {
		return
	}
	dt := float64(rl.GetFrameTime())
	// A dropped frame must not become a physics explosion.
	if dt > 0.1 {
		dt = 0.1
	}
	g.step(dt)
}

// UpdateHeadless runs one fixed-dt simulation step.
func (g *Game) UpdateHeadless() {
	g.step(g.cfg.Physics.DT)
}

// step advances the whole simulation by dt seconds. All physics for all
// scrap runs synchronously in here; input handlers only set shared state.
func (g *Game) step(dt float64) {
	g.consumeLayoutReload()
	g.updateSpawn(dt)

	if ev := g.drag.Update(dt, g.fields); ev != nil {
		g.handleDrop(ev)
	}

	g.airborne.Update(g.world, dt)
	g.collision.Update(g.world, dt)
	g.airborne.Settle(g.world)

	held, haveHeld := g.drag.Held()
	collected := g.collect.Update(g.world, held, haveHeld)
	for _, e := range collected {
		g.scrapMapper.Remove(e)
		g.collected++
	}

	g.updateOffScreen()
	g.tick++
}

// addCredits is the per-tick summed credit callback.
func (g *Game) addCredits(credits int) {
	g.credits += credits
	if g.onCredits != nil {
		g.onCredits(credits)
	}
	slog.Info("scrap collected", "credits", credits, "total", g.credits)
}

// logBreakage is the default breakage hook. The gameplay side effect of
// fragile and hazard mutators is an extension point; only the crossing is
// recorded.
func (g *Game) logBreakage(scrapID, mutatorID string, speed float64) {
	slog.Info("breakage threshold crossed", "scrap", scrapID, "mutator", mutatorID, "speed", speed)
}

// updateSpawn rolls new scrap on a fixed interval while under the cap.
func (g *Game) updateSpawn(dt float64) {
	if g.cfg.Spawn.Interval <= 0 {
		return
	}
	g.spawnTimer += dt
	if g.spawnTimer < g.cfg.Spawn.Interval {
		return
	}
	g.spawnTimer = 0
	if g.activeCount() >= g.cfg.Spawn.MaxActive {
		return
	}
	g.SpawnScrap()
}

// SpawnScrap creates one scrap from a spawn roll at a random baseline
// position and returns its entity.
func (g *Game) SpawnScrap() ecs.Entity {
	roll := g.spawner.Roll()
	margin := g.cfg.Scrap.Radius * 2
	x := margin + g.rng.Float64()*(g.cfg.World.Width-2*margin)

	gravityMult, momentumMult := g.reg.AirborneMults(roll.Mutators)
	scrap := components.Scrap{
		ID:         uuid.NewString(),
		TypeID:     roll.TypeID,
		TrueTypeID: roll.TrueTypeID,
		Mutators:   roll.Mutators,
		CreatedAt:  time.Now(),
	}
	pos := components.Position{X: x}
	air := components.Airborne{GravityMult: gravityMult, MomentumMult: momentumMult}

	return g.scrapMapper.NewEntity(&scrap, &pos, &air)
}

// activeCount returns the number of uncollected scrap.
func (g *Game) activeCount() int {
	n := 0
	query := g.scrapFilter.Query()
	for query.Next() {
		scrap, _, _ := query.Get()
		if !scrap.Collected {
			n++
		}
	}
	return n
}

// handleDrop routes a release: into the bin collects the scrap, free space
// above the baseline launches it, at the baseline it just settles.
func (g *Game) handleDrop(ev *systems.DropEvent) {
	scrap, pos, air := g.scrapMapper.Get(ev.Entity)
	if scrap == nil {
		return
	}
	pos.X = ev.ReleasePos.X

	if g.collect.Overlaps(ev.ReleasePos.X, ev.ReleasePos.Y) {
		scrap.Collected = true
		// Joins the same per-tick credit sum as the bin sweep.
		g.collect.Deposit(g.reg.Value(scrap.EffectiveTypeID(), scrap.Mutators))
		g.scrapMapper.Remove(ev.Entity)
		g.collected++
		return
	}

	if ev.ReleasePos.Y > 0 || r2.Norm(ev.ReleaseVel) > 0 {
		g.airborne.Launch(air, ev.VelocityPx, g.cam.Zoom, ev.ReleasePos.Y)
		return
	}
	air.Ground()
	air.PrevY = 0
}

// updateOffScreen maintains the off-screen flag for scrap whose x left the
// world bounds.
func (g *Game) updateOffScreen() {
	slack := g.cfg.Scrap.Radius * 4
	query := g.scrapFilter.Query()
	for query.Next() {
		scrap, pos, _ := query.Get()
		scrap.OffScreen = !g.cam.InWorld(pos.X, slack)
	}
}

// Credits returns the total credits earned this session.
func (g *Game) Credits() int { return g.credits }

// Tick returns the current simulation tick.
func (g *Game) Tick() int64 { return g.tick }

// Camera exposes the coordinate mapper for collaborators (read-only use).
func (g *Game) Camera() *camera.Camera { return g.cam }

// IsAirborne reports the airborne flag for an entity, for rendering bounce
// height.
func (g *Game) IsAirborne(e ecs.Entity) bool {
	_, _, air := g.scrapMapper.Get(e)
	return air != nil && air.Active
}

// Unload releases background resources.
func (g *Game) Unload() {
	if g.layout != nil {
		g.layout.Close()
	}
}

// consumeLayoutReload applies a hot-reloaded barrier layout, if one arrived.
func (g *Game) consumeLayoutReload() {
	if g.layout == nil {
		return
	}
	select {
	case barriers := <-g.layout.Layouts:
		g.collision.SetBarriers(barriers)
		slog.Info("barrier layout reloaded", "count", len(barriers))
	default:
	}
}
