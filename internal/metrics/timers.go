// Package metrics keeps wall clock timers of the stages of a run.
package metrics

import (
	"sort"
	"time"
)

// Timers holds named timers. Calling Add twice with the same name stops it.
type Timers struct {
	Timers map[string]*Timer `json:"timers,omitempty"`
	last   string
	now    func() time.Time
}

func NewTimers() *Timers {
	return &Timers{Timers: make(map[string]*Timer), now: time.Now}
}

// set starts a timer, or stops it when already started.
func (ts *Timers) set(k string) {
	if t, ok := ts.Timers[k]; !ok {
		ts.Timers[k] = &Timer{start: ts.now()}
	} else {
		t.Total = ts.now().Sub(t.start).Seconds()
	}
}

// Lap stops the last timer started with Lap and starts k.
func (ts *Timers) Lap(k string) {
	if ts.last != "" {
		ts.set(ts.last)
	}
	ts.set(k)
	ts.last = k
}

// Stop stops the timer started by the last Lap.
func (ts *Timers) Stop() {
	if ts.last != "" {
		ts.set(ts.last)
		ts.last = ""
	}
}

// Add starts or stops the timer k.
func (ts *Timers) Add(k string) {
	ts.set(k)
}

// Names returns the timer names, sorted.
func (ts *Timers) Names() []string {
	names := make([]string, 0, len(ts.Timers))
	for k := range ts.Timers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type Timer struct {
	start time.Time

	// Total time in seconds
	Total float64 `json:"seconds"`
}
