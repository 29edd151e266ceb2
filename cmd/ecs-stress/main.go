package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/sceneworld/ecs"
	"github.com/plus3/sceneworld/ecs/components"
	"github.com/plus3/sceneworld/ecs/scene"
	"github.com/plus3/sceneworld/internal/config"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "Path to a TOML config file.")
	duration := flag.Duration("duration", 0, "Overrides stress.duration.")
	entityCount := flag.Int("entities", -1, "Overrides stress.entities.")
	snapshot := flag.String("snapshot", "", "Overrides stress.snapshot.")
	seed := flag.Int64("seed", 1, "Seed for the random population and churn.")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
	if *duration > 0 {
		cfg.Stress.Duration = *duration
	}
	if *entityCount >= 0 {
		cfg.Stress.Entities = *entityCount
	}
	if *snapshot != "" {
		cfg.Stress.Snapshot = *snapshot
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg.Stress, log, rand.New(rand.NewSource(*seed))); err != nil {
		log.Fatal("stress test failed", zap.Error(err))
	}
}

func run(cfg config.StressConfig, log *zap.Logger, rng *rand.Rand) error {
	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	log.Info("starting ECS stress test")

	registry := ecs.NewRegistry()
	components.Register(registry)

	pool := ecs.NewPool(cfg.Parallelism)
	world := ecs.NewWorld(ecs.WithLogger(log), ecs.WithTaskScheduler(pool))
	world.AddLogicSystem(components.NewMovementSystem(world, pool.Concurrency() > 1))
	world.AddLogicSystem(components.NewFollowSystem(world))
	scheduler := ecs.NewScheduler(world)

	log.Info("populating world", zap.Int("entities", cfg.Entities), zap.Int("depth", cfg.HierarchyDepth))
	populate(world, rng, cfg.Entities, cfg.HierarchyDepth)
	world.Tick(0)
	log.Info("population complete", zap.Int("live", world.EntityCount()))

	report := &Report{
		Duration:       cfg.Duration,
		Entities:       world.EntityCount(),
		Parallelism:    pool.Concurrency(),
		GCPauseMetrics: cfg.GCPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var ticker <-chan time.Time
	if cfg.TickRate > 0 {
		t := time.NewTicker(cfg.TickRate)
		defer t.Stop()
		ticker = t.C
	}

	world.BroadcastStart()
	startTime := time.Now()
	lastFrameTime := startTime
	var frame int

Loop:
	for {
		if ticker != nil {
			select {
			case <-ctx.Done():
				break Loop
			case <-ticker:
			}
		} else if ctx.Err() != nil {
			break Loop
		}

		churn(world, rng, frame, cfg, report)

		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		updateStart := time.Now()
		scheduler.Once(deltaTime.Seconds())
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		frame++
	}
	world.BroadcastStop()

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = int64(frame)
	report.FinalEntities = world.EntityCount()
	report.CachedQueries = world.CachedQueryCount()
	report.UpdateTime.Finalize()
	report.Systems = scheduler.GetStats().Systems
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("simulation finished", zap.Int("frames", frame), zap.Duration("elapsed", report.TotalTime))

	if cfg.Snapshot != "" {
		codec := scene.NewCodec(registry, log)
		if err := codec.SaveFile(world, cfg.Snapshot); err != nil {
			return eris.Wrap(err, "failed to write snapshot")
		}
		log.Info("wrote snapshot", zap.String("path", cfg.Snapshot))
	}

	if err := report.Generate(os.Stdout); err != nil {
		return eris.Wrap(err, "failed to generate report")
	}
	return nil
}

// populate spawns n entities as trees of the given depth. Every entity moves;
// roughly a third of them follow an earlier entity and a tenth carry a light.
func populate(w *ecs.World, rng *rand.Rand, n, depth int) {
	var spawned []ecs.Entity
	var parent ecs.Entity
	for i := 0; i < n; i++ {
		e := w.NewEntity(fmt.Sprintf("entity-%d", i)).
			AddComponent(components.NewTransform(components.Vec2{X: rng.Float64() * 1000, Y: rng.Float64() * 1000})).
			AddComponent(&components.Velocity{
				Linear:  components.Vec2{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1},
				Angular: rng.Float64() - 0.5,
			})

		if len(spawned) > 0 && rng.Intn(3) == 0 {
			target := spawned[rng.Intn(len(spawned))]
			e.AddComponent(&components.Follow{Target: target.ID(), Speed: 1 + rng.Float64()*4, Distance: 5})
		}
		if rng.Intn(10) == 0 {
			e.AddComponent(components.NewLight(rng.Float64(), 10+rng.Float64()*90))
		}

		// depth d means every chain holds d+1 entities before a new root starts
		if depth > 0 && i%(depth+1) != 0 && !parent.IsNull() {
			e.SetParent(parent)
		}
		parent = e
		spawned = append(spawned, e)
	}
}

// churn duplicates and removes whole subtrees on the configured intervals.
func churn(w *ecs.World, rng *rand.Rand, frame int, cfg config.StressConfig, report *Report) {
	if frame == 0 {
		return
	}
	if cfg.DuplicateEvery > 0 && frame%cfg.DuplicateEvery == 0 {
		if root, ok := pickRoot(w, rng); ok {
			root.Duplicate(ecs.Entity{})
			report.Duplications++
		}
	}
	if cfg.RemoveEvery > 0 && frame%cfg.RemoveEvery == 0 {
		if root, ok := pickRoot(w, rng); ok {
			root.Remove()
			report.Removals++
		}
	}
}

func pickRoot(w *ecs.World, rng *rand.Rand) (ecs.Entity, bool) {
	roots := w.Roots()
	for range 8 {
		if len(roots) == 0 {
			return ecs.Entity{}, false
		}
		root := roots[rng.Intn(len(roots))]
		if !w.IsRemoving(root.ID()) {
			return root, true
		}
	}
	return ecs.Entity{}, false
}
