// Command worldsim runs the Tradewinds settlement trade simulation.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/tradewinds/internal/api"
	"github.com/talgya/tradewinds/internal/config"
	"github.com/talgya/tradewinds/internal/eco"
	"github.com/talgya/tradewinds/internal/economy"
	"github.com/talgya/tradewinds/internal/engine"
	"github.com/talgya/tradewinds/internal/persistence"
	"github.com/talgya/tradewinds/internal/social"
	"github.com/talgya/tradewinds/internal/trade"
	"github.com/talgya/tradewinds/internal/weather"
	"github.com/talgya/tradewinds/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Tradewinds — settlement trade network simulation")

	// ── Tuning ────────────────────────────────────────────────────────
	cfgPath := "configs/tuning.yaml"
	if v := os.Getenv("TRADEWINDS_CONFIG"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("failed to load tuning", "path", cfgPath, "error", err)
			os.Exit(1)
		}
		cfg = config.Default()
		slog.Info("no tuning file found, using defaults", "path", cfgPath)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	worldID, err := db.EnsureWorldID()
	if err != nil {
		slog.Error("failed to resolve world id", "error", err)
		os.Exit(1)
	}

	// The seed is pinned on first run so restarts regenerate the same
	// map layout.
	seed := cfg.World.Seed
	if s, err := db.GetMeta("seed"); err == nil {
		if v, perr := strconv.ParseInt(s, 10, 64); perr == nil {
			seed = v
		}
	} else if err := db.SaveMeta("seed", strconv.FormatInt(seed, 10)); err != nil {
		slog.Error("failed to persist seed", "error", err)
	}

	var startTick uint64
	if s, err := db.GetMeta("last_tick"); err == nil {
		if v, perr := strconv.ParseUint(s, 10, 64); perr == nil {
			startTick = v
		}
	}

	// ── World (always regenerated — deterministic from seed) ──────────
	slog.Info("generating world", "seed", seed, "width", cfg.World.Width, "height", cfg.World.Height)
	grid := world.Generate(world.GenConfig{
		Width:             cfg.World.Width,
		Height:            cfg.World.Height,
		Seed:              seed,
		Continents:        cfg.World.Continents,
		NoiseScale:        cfg.World.NoiseScale,
		SettlementChance:  cfg.World.SettlementChance,
		SettlementMinDist: cfg.World.SettlementMinDist,
	})
	ix := world.NewIndex(grid)

	rng := rand.New(rand.NewSource(seed))
	towns := economy.Seed(ix, rng)
	social.SeedRelations(ix)
	patches := eco.Seed(ix, rng)
	slog.Info("world ready",
		"world_id", worldID,
		"settlements", towns,
		"eco_patches", patches,
		"tiles", grid.Width*grid.Height,
	)

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(grid, ix, weather.NewModel(seed), rng)
	sim.Params = trade.Params{
		SearchRadius:  cfg.Trade.PartnerRadius,
		MaxPartners:   cfg.Trade.MaxPartners,
		MaxExpansions: cfg.Trade.MaxExpansions,
	}
	sim.DB = db
	sim.LastTick = startTick

	tradeLog := persistence.NewTradeLog(cfg.TradeLogDir)
	defer tradeLog.Close()
	sim.TradeLog = tradeLog

	// Synthesize once at startup so routes exist before the first
	// weekly boundary.
	initial := trade.Synthesize(grid, ix, sim.Params)
	sim.Store.Replace(initial)
	slog.Info("initial trade network", "links", initial.TotalLinks())

	eng := engine.NewEngine()
	eng.Tick = startTick
	eng.Speed = 1
	eng.Interval = time.Duration(cfg.TickMS) * time.Millisecond

	eng.OnTick = sim.TickMinute
	eng.OnHour = sim.TickHour
	eng.OnDay = func(tick uint64) {
		sim.TickDay(tick)
		if err := db.SaveMeta("last_tick", strconv.FormatUint(tick, 10)); err != nil {
			slog.Error("daily meta save failed", "error", err)
		}
	}
	eng.OnWeek = sim.TickWeek

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("WORLDSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("WORLDSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Addr:     cfg.ListenAddr,
		WorldID:  worldID,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nTradewinds is alive: %d settlements trading across a %dx%d world.\n",
		towns, grid.Width, grid.Height)
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.ListenAddr)
	if startTick > 0 {
		fmt.Printf("Resuming from tick %d (%s)\n", startTick, engine.SimTime(startTick))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	day := int(eng.Tick / engine.TicksPerSimDay)
	if err := db.SaveSnapshots(eng.Tick, day, ix.WithSystem(world.SystemEconomy)); err != nil {
		slog.Error("final snapshot failed", "error", err)
	}
	if err := db.SaveMeta("last_tick", strconv.FormatUint(eng.Tick, 10)); err != nil {
		slog.Error("final meta save failed", "error", err)
	}

	fmt.Println("Simulation stopped. World history saved.")
}
