// Package lowpower models a power-down primitive that only accepts a fixed
// menu of watchdog periods, as on small AVR/RP2040 nodes.
package lowpower

import (
	"sync"
	"time"
)

// Period is one entry of the watchdog menu.
type Period uint8

const (
	Sleep15ms Period = iota
	Sleep30ms
	Sleep60ms
	Sleep120ms
	Sleep250ms
	Sleep500ms
	Sleep1s
	Sleep2s
	Sleep4s
	Sleep8s
)

// Chunk is the longest period; intervals are built from repeats of it.
const Chunk = Sleep8s

var periodDur = [...]time.Duration{
	Sleep15ms:  15 * time.Millisecond,
	Sleep30ms:  30 * time.Millisecond,
	Sleep60ms:  60 * time.Millisecond,
	Sleep120ms: 120 * time.Millisecond,
	Sleep250ms: 250 * time.Millisecond,
	Sleep500ms: 500 * time.Millisecond,
	Sleep1s:    time.Second,
	Sleep2s:    2 * time.Second,
	Sleep4s:    4 * time.Second,
	Sleep8s:    8 * time.Second,
}

func (p Period) Duration() time.Duration {
	if int(p) < len(periodDur) {
		return periodDur[p]
	}
	return 0
}

// Peripherals is a set of blocks switched off for the duration of a nap.
type Peripherals uint8

const (
	ADCOff Peripherals = 1 << iota // analog-to-digital converter
	BODOff                         // brown-out detector
)

// Idle keeps only what is needed to wake up.
const Idle = ADCOff | BODOff

// Sleeper powers the MCU down for exactly one period. It blocks and has no
// failure path.
type Sleeper interface {
	PowerDown(p Period, off Peripherals)
}

// Split appends to dst the periods that add up to d, largest first.
// Anything below the shortest period is dropped.
func Split(d time.Duration, dst []Period) []Period {
	for p := Chunk; ; p-- {
		pd := p.Duration()
		for d >= pd {
			dst = append(dst, p)
			d -= pd
		}
		if p == Sleep15ms {
			return dst
		}
	}
}

// Timed sleeps with time.Sleep. On TinyGo targets the scheduler idles the
// core while sleeping; peripheral flags are recorded for the log only.
type Timed struct {
	// OnWake, when set, is called after each nap.
	OnWake func(p Period, off Peripherals)
}

func (t Timed) PowerDown(p Period, off Peripherals) {
	time.Sleep(p.Duration())
	if t.OnWake != nil {
		t.OnWake(p, off)
	}
}

// Nap is one recorded PowerDown call.
type Nap struct {
	Period Period
	Off    Peripherals
}

// Recorder is a Sleeper that returns immediately and remembers each call.
// Advance, when set, receives the nap length so a fake clock can follow.
type Recorder struct {
	mu      sync.Mutex
	naps    []Nap
	Advance func(time.Duration)
}

func (r *Recorder) PowerDown(p Period, off Peripherals) {
	r.mu.Lock()
	r.naps = append(r.naps, Nap{Period: p, Off: off})
	r.mu.Unlock()
	if r.Advance != nil {
		r.Advance(p.Duration())
	}
}

// Naps returns a copy of the recorded calls.
func (r *Recorder) Naps() []Nap {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Nap(nil), r.naps...)
}

// Total sums the recorded nap lengths.
func (r *Recorder) Total() time.Duration {
	var d time.Duration
	for _, n := range r.Naps() {
		d += n.Period.Duration()
	}
	return d
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.naps = nil
	r.mu.Unlock()
}
