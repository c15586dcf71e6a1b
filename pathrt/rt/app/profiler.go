package app

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// profilerSmoothing is the weight of the newest run in StageTiming.Avg.
const profilerSmoothing = 0.1

// StageTiming is the CPU time spent in one frame stage.
type StageTiming struct {
	Last time.Duration
	Avg  time.Duration
	Runs int
}

// Profiler times the frame stages in the order they first run and keeps a
// few scene counters. A nil *Profiler ignores every call.
type Profiler struct {
	stages  []string
	timings map[string]*StageTiming
	started map[string]time.Time
	counts  map[string]int
}

func NewProfiler() *Profiler {
	return &Profiler{
		timings: make(map[string]*StageTiming),
		started: make(map[string]time.Time),
		counts:  make(map[string]int),
	}
}

func (p *Profiler) BeginScope(stage string) {
	if p == nil {
		return
	}
	if _, ok := p.timings[stage]; !ok {
		p.timings[stage] = &StageTiming{}
		p.stages = append(p.stages, stage)
	}
	p.started[stage] = time.Now()
}

// EndScope closes a stage opened by BeginScope. Unmatched calls are ignored.
func (p *Profiler) EndScope(stage string) {
	if p == nil {
		return
	}
	start, ok := p.started[stage]
	if !ok {
		return
	}
	delete(p.started, stage)

	t := p.timings[stage]
	t.Last = time.Since(start)
	if t.Runs == 0 {
		t.Avg = t.Last
	} else {
		t.Avg += time.Duration(float64(t.Last-t.Avg) * profilerSmoothing)
	}
	t.Runs++
}

func (p *Profiler) SetCount(name string, count int) {
	if p == nil {
		return
	}
	p.counts[name] = count
}

func (p *Profiler) Count(name string) int {
	if p == nil {
		return 0
	}
	return p.counts[name]
}

// Stages lists the stage names in first-run order.
func (p *Profiler) Stages() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.stages)
}

func (p *Profiler) Timing(stage string) (StageTiming, bool) {
	if p == nil {
		return StageTiming{}, false
	}
	t, ok := p.timings[stage]
	if !ok {
		return StageTiming{}, false
	}
	return *t, true
}

// Millis returns the smoothed stage timings in milliseconds.
func (p *Profiler) Millis() map[string]float64 {
	if p == nil {
		return nil
	}
	out := make(map[string]float64, len(p.timings))
	for stage, t := range p.timings {
		out[stage] = millis(t.Avg)
	}
	return out
}

func (p *Profiler) String() string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Timings (CPU, last/avg):\n")
	for _, stage := range p.stages {
		t := p.timings[stage]
		fmt.Fprintf(&sb, "  %-10s %6.2f / %6.2f ms\n", stage, millis(t.Last), millis(t.Avg))
	}

	names := make([]string, 0, len(p.counts))
	for name := range p.counts {
		names = append(names, name)
	}
	slices.Sort(names)
	sb.WriteString("Counters:\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "  %-12s %d\n", name, p.counts[name])
	}
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
