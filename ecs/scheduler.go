package ecs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SchedulerStats provides statistics about system execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          uint64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Kind           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStats struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *systemStats) record(d time.Duration) {
	if s.executionCount == 0 || d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
}

func (s *systemStats) snapshot(name, kind string) SystemStats {
	var avg time.Duration
	if s.executionCount > 0 {
		avg = s.totalDuration / time.Duration(s.executionCount)
	}
	return SystemStats{
		Name:           name,
		Kind:           kind,
		ExecutionCount: s.executionCount,
		MinDuration:    s.minDuration,
		MaxDuration:    s.maxDuration,
		AvgDuration:    avg,
		LastDuration:   s.lastDuration,
		TotalDuration:  s.totalDuration,
	}
}

// Scheduler drives a World: each step ticks it and then runs the frame hooks.
type Scheduler struct {
	world  *World
	frames uint64
	target any
}

// NewScheduler creates a new scheduler for the given world.
func NewScheduler(w *World) *Scheduler {
	return &Scheduler{world: w}
}

// SetRenderTarget sets the value handed to render hooks as RenderContext.Target.
func (s *Scheduler) SetRenderTarget(target any) {
	s.target = target
}

// Once ticks the world with the given delta time and runs one frame.
func (s *Scheduler) Once(dt float64) {
	s.world.Tick(dt)

	ctx := RenderContext{FrameIndex: s.frames, DeltaTime: dt, Target: s.target}
	s.world.SetupCamera(ctx)
	s.world.OnFrame(ctx)
	s.frames++
}

// Run steps the world repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.world.BroadcastStart()
	defer s.world.BroadcastStop()

	s.world.log.Info("scheduler started", zap.Duration("interval", interval))
	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			s.world.log.Info("scheduler stopped", zap.Uint64("frames", s.frames))
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution, logic systems first.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{Frames: s.frames}

	collect := func(systems []System, kind string) {
		for _, sys := range systems {
			st := sys.base().stats.snapshot(SystemName(sys), kind)
			stats.Systems = append(stats.Systems, st)
			stats.TotalExecutions += st.ExecutionCount
		}
	}
	collect(s.world.logicSystems, "logic")
	collect(s.world.renderSystems, "render")

	stats.SystemCount = len(stats.Systems)
	return stats
}
