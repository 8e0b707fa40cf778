// Package observ measures how long the analysis phases take.
package observ

import (
	"fmt"
	"strings"
	"time"
)

type phase struct {
	name  string
	total time.Duration
	runs  int
}

// Timer accumulates durations per phase name, keeping phases in the order
// they first appeared. It is not safe for concurrent use: every worker owns
// a Timer and the results are folded with Merge.
type Timer struct {
	phases []phase
	byName map[string]int
}

func NewTimer() *Timer {
	return &Timer{byName: make(map[string]int)}
}

// Measure starts timing name; calling the returned func records the run.
func (t *Timer) Measure(name string) (stop func()) {
	start := time.Now()
	return func() { t.Add(name, time.Since(start)) }
}

// Add records one run of name lasting d.
func (t *Timer) Add(name string, d time.Duration) {
	t.add(name, d, 1)
}

// Merge folds every phase of other into t.
func (t *Timer) Merge(other *Timer) {
	if other == nil {
		return
	}
	for _, p := range other.phases {
		t.add(p.name, p.total, p.runs)
	}
}

func (t *Timer) add(name string, d time.Duration, runs int) {
	i, ok := t.byName[name]
	if !ok {
		i = len(t.phases)
		t.byName[name] = i
		t.phases = append(t.phases, phase{name: name})
	}
	t.phases[i].total += d
	t.phases[i].runs += runs
}

// PhaseReport is one phase of a Report.
type PhaseReport struct {
	Name string  `json:"name"`
	MS   float64 `json:"ms"`
	Runs int     `json:"runs"`
}

// Report is the serializable view of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	for _, p := range t.phases {
		ms := millis(p.total)
		r.TotalMS += ms
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, MS: ms, Runs: p.runs})
	}
	return r
}

// Summary renders the report as an aligned table for --timings.
func (t *Timer) Summary() string {
	r := t.Report()
	width := len("total")
	for _, p := range r.Phases {
		width = max(width, len(p.Name))
	}
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&b, "  %-*s %9.2f ms", width, p.Name, p.MS)
		if p.Runs > 1 {
			fmt.Fprintf(&b, "  x%d", p.Runs)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-*s %9.2f ms\n", width, "total", r.TotalMS)
	return b.String()
}

func millis(d time.Duration) float64 {
	return d.Seconds() * 1000
}
