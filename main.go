package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/corvid-works/scrapyard/config"
	"github.com/corvid-works/scrapyard/game"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config overriding the built-in defaults")
	headless := flag.Bool("headless", false, "run the simulation without a window")
	seed := flag.Int64("seed", 0, "random seed, 0 picks one from the clock")
	maxTicks := flag.Int64("max-ticks", 0, "stop after this many ticks in headless mode, 0 runs forever")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	setupLogging(*logLevel)

	if err := config.Init(*configPath); err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *headless {
		runHeadless(*seed, *maxTicks)
		return
	}

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "scrapyard")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.NewGame(game.Options{Seed: *seed})
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()

		rl.BeginDrawing()
		g.Draw()
		rl.EndDrawing()
	}
}

// runHeadless steps the simulation on the fixed tick with no renderer, for
// soak runs and profiling.
func runHeadless(seed, maxTicks int64) {
	g := game.NewGame(game.Options{Seed: seed, Headless: true})
	defer g.Unload()

	slog.Info("headless run", "seed", seed, "max_ticks", maxTicks)
	for maxTicks <= 0 || g.Tick() < maxTicks {
		g.UpdateHeadless()
	}
	slog.Info("headless run finished", "ticks", g.Tick(), "credits", g.Credits())
}

func setupLogging(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
}
