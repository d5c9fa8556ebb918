package node

import (
	"testing"
	"time"

	"loranode-go/drivers/lowpower"
	"loranode-go/services/mac"
	"loranode-go/types"
)

func TestDecompose_Identity(t *testing.T) {
	chunk := lowpower.Chunk.Duration()
	for i := uint32(0); i < 1000; i++ {
		whole, rem := Decompose(i, chunk)
		if whole != i/8 || rem != i%8 || whole*8+rem != i {
			t.Fatalf("Decompose(%d) = (%d,%d)", i, whole, rem)
		}
	}
}

func newSchedHarness(mode types.RemainderMode) (*Scheduler, *lowpower.Recorder, *fakeMAC) {
	m := newFakeMAC()
	rec := &lowpower.Recorder{Advance: m.clk.Advance}
	return NewScheduler(rec, mode, nil), rec, m
}

func TestCycle_TwoChunksThenRemainder(t *testing.T) {
	s, rec, m := newSchedHarness(types.RemainderSleep)
	var job mac.Job
	r := s.Cycle(20, m, &job, func() {})

	if r.Whole != 2 || r.Remainder != 4 {
		t.Fatalf("report = %+v, want whole=2 remainder=4", r)
	}
	naps := rec.Naps()
	want := []lowpower.Period{lowpower.Sleep8s, lowpower.Sleep8s, lowpower.Sleep4s}
	if len(naps) != len(want) {
		t.Fatalf("naps = %+v, want %v", naps, want)
	}
	for i, n := range naps {
		if n.Period != want[i] || n.Off != lowpower.ADCOff|lowpower.BODOff {
			t.Fatalf("nap %d = %+v", i, n)
		}
	}
	if len(m.scheduled) != 1 {
		t.Fatalf("scheduled %d jobs, want 1", len(m.scheduled))
	}
	if got := m.scheduled[0]; got.job != &job || !got.at.Equal(t0.Add(20*time.Second)) {
		t.Fatalf("armed %v at %v, want t0+20s", got.job, got.at)
	}
}

func TestCycle_TimerModeLeavesRemainderToClock(t *testing.T) {
	s, rec, m := newSchedHarness(types.RemainderTimer)
	var job mac.Job
	r := s.Cycle(20, m, &job, func() {})

	if rec.Total() != 16*time.Second || r.Naps != 2 {
		t.Fatalf("slept %v in %d naps, want 16s in 2", rec.Total(), r.Naps)
	}
	// Armed 4s after waking at t0+16s.
	if got := m.scheduled[0].at; !got.Equal(t0.Add(20 * time.Second)) {
		t.Fatalf("armed at %v, want t0+20s", got)
	}
}

func TestCycle_ExactMultipleHasNoRemainderNap(t *testing.T) {
	s, rec, m := newSchedHarness(types.RemainderSleep)
	var job mac.Job
	s.Cycle(16, m, &job, func() {})
	if len(rec.Naps()) != 2 {
		t.Fatalf("naps = %+v, want two chunks only", rec.Naps())
	}
}

func TestCycle_ShortIntervalOnlyRemainder(t *testing.T) {
	s, rec, m := newSchedHarness(types.RemainderSleep)
	var job mac.Job
	r := s.Cycle(7, m, &job, func() {})
	if r.Whole != 0 || r.Remainder != 7 || rec.Total() != 7*time.Second {
		t.Fatalf("report %+v slept %v", r, rec.Total())
	}
}

func TestCycle_ArmedCallbackRuns(t *testing.T) {
	s, _, m := newSchedHarness(types.RemainderSleep)
	var job mac.Job
	ran := false
	s.Cycle(1, m, &job, func() { ran = true })
	m.scheduled[0].fn()
	if !ran {
		t.Fatal("armed callback is not the one passed to Cycle")
	}
}
