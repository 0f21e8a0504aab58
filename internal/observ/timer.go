package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type phase struct {
	name string
	took time.Duration
	note string
	done bool
}

// Timer collects phase durations in the order the phases were started.
// Phases may run concurrently.
type Timer struct {
	mu     sync.Mutex
	phases []phase
	now    func() time.Time
}

func NewTimer() *Timer { return &Timer{now: time.Now} }

// Phase starts timing name. The returned func stops it and attaches note;
// only its first call counts.
func (t *Timer) Phase(name string) func(note string) {
	t.mu.Lock()
	t.phases = append(t.phases, phase{name: name})
	i := len(t.phases) - 1
	t.mu.Unlock()

	start := t.now()
	return func(note string) {
		took := t.now().Sub(start)
		t.mu.Lock()
		defer t.mu.Unlock()
		if p := &t.phases[i]; !p.done {
			p.took, p.note, p.done = took, note, true
		}
	}
}

func (t *Timer) Summary() string { return t.Report().Summary() }

type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is a snapshot of a Timer, in milliseconds.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the finished phases.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	var total time.Duration
	for _, p := range t.phases {
		if !p.done {
			continue
		}
		total += p.took
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: millis(p.took), Note: p.note})
	}
	if len(r.Phases) > 0 {
		r.TotalMS = millis(total)
	}
	return r
}

func (r Report) Summary() string {
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&b, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-20s %7.2f ms\n", "total", r.TotalMS)
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
