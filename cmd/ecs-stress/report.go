package main

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/plus3/sceneworld/ecs"
)

// Report is everything the stress run prints once it finishes.
type Report struct {
	Duration    time.Duration
	Entities    int
	Parallelism int

	TotalUpdates  int64
	TotalTime     time.Duration
	UpdateTime    Stats
	FinalEntities int
	CachedQueries int
	Duplications  int
	Removals      int
	Systems       []ecs.SystemStats

	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// Stats summarizes frame durations.
type Stats struct {
	Samples []time.Duration

	Min, Max, Avg time.Duration
	P50, P99      time.Duration
}

// Finalize sorts the samples and fills in the summary fields.
func (s *Stats) Finalize() {
	n := len(s.Samples)
	if n == 0 {
		return
	}

	slices.Sort(s.Samples)
	var total time.Duration
	for _, sample := range s.Samples {
		total += sample
	}

	s.Min = s.Samples[0]
	s.Max = s.Samples[n-1]
	s.Avg = total / time.Duration(n)
	s.P50 = s.Samples[(n-1)*50/100]
	s.P99 = s.Samples[(n-1)*99/100]
}

// FPS is the number of frames per second implied by the average frame time.
func (r *Report) FPS() float64 {
	if r.TotalTime <= 0 {
		return 0
	}
	return float64(r.TotalUpdates) / r.TotalTime.Seconds()
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"mib": func(v int64) string {
		return fmt.Sprintf("%.2f MiB", float64(v)/(1<<20))
	},
	"delta": func(end, start uint64) int64 {
		return int64(end) - int64(start)
	},
	"count": func(end, start uint32) uint32 {
		return end - start
	},
	"dur": func(ns int64) time.Duration {
		return time.Duration(ns)
	},
	"i64": func(v uint64) int64 {
		return int64(v)
	},
}).Parse(`
# ECS Stress Test Report

## Setup
- Duration: {{.Duration}}
- Initial entities: {{.Entities}}
- Workers: {{.Parallelism}}

## Frames
- Updates: {{.TotalUpdates}} in {{.TotalTime}} ({{printf "%.1f" .FPS}} FPS)
- Frame time: avg {{.UpdateTime.Avg}}, p50 {{.UpdateTime.P50}}, p99 {{.UpdateTime.P99}}, min {{.UpdateTime.Min}}, max {{.UpdateTime.Max}}

## World
- Final entities: {{.FinalEntities}}
- Cached queries: {{.CachedQueries}}
- Subtrees duplicated: {{.Duplications}}
- Subtrees removed: {{.Removals}}

## Systems
| System | Kind | Runs | Avg | Max |
|--------|------|------|-----|-----|
{{- range .Systems}}
| {{.Name}} | {{.Kind}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MaxDuration}} |
{{- end}}

## Memory
- Heap: {{mib (i64 .MemStatsStart.HeapAlloc)}} -> {{mib (i64 .MemStatsEnd.HeapAlloc)}} ({{mib (delta .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc)}})
- Allocated: {{mib (delta .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}}
- Sys: {{mib (i64 .MemStatsEnd.Sys)}}
- GC cycles: {{count .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{- if .GCPauseMetrics}}
- GC pause total: {{dur (delta .MemStatsEnd.PauseTotalNs .MemStatsStart.PauseTotalNs)}}
{{- end}}
`))

func (r *Report) Generate(w io.Writer) error {
	return reportTemplate.Execute(w, r)
}
