package node

import (
	"time"

	"loranode-go/drivers/lowpower"
	"loranode-go/services/mac"
	"loranode-go/types"
	"loranode-go/x/logx"
	"loranode-go/x/mathx"
	"loranode-go/x/timex"
)

// Decompose splits an interval into whole sleep chunks and leftover seconds:
// whole*chunk + remainder == interval.
func Decompose(intervalS uint32, chunk time.Duration) (whole, remainder uint32) {
	return mathx.DivMod(intervalS, uint32(chunk/time.Second))
}

// CycleReport describes one sleep cycle.
type CycleReport struct {
	Whole     uint32
	Remainder uint32
	Naps      int
	Due       time.Time
}

// Scheduler builds an interval out of fixed power-down chunks and then arms
// the next send. Sleeping blocks the whole process, MAC timers included.
type Scheduler struct {
	sleeper lowpower.Sleeper
	chunk   lowpower.Period
	off     lowpower.Peripherals
	mode    types.RemainderMode
	log     logx.Logger

	naps [8]lowpower.Period
}

func NewScheduler(s lowpower.Sleeper, mode types.RemainderMode, log logx.Logger) *Scheduler {
	if log == nil {
		log = logx.Discard
	}
	return &Scheduler{
		sleeper: s,
		chunk:   lowpower.Chunk,
		off:     lowpower.Idle,
		mode:    mode,
		log:     log,
	}
}

// Cycle sleeps for intervalS and arms job to call next. In timer mode the
// remainder is left to the MAC clock instead of being slept.
func (s *Scheduler) Cycle(intervalS uint32, m MAC, job *mac.Job, next func()) CycleReport {
	whole, rem := Decompose(intervalS, s.chunk.Duration())
	s.log.Infof("sleeping %d x %ds, rest %ds", whole, int(s.chunk.Duration()/time.Second), rem)

	r := CycleReport{Whole: whole, Remainder: rem}
	for i := uint32(0); i < whole; i++ {
		s.sleeper.PowerDown(s.chunk, s.off)
		r.Naps++
	}

	var offset time.Duration
	if s.mode == types.RemainderTimer {
		offset = timex.Seconds(rem)
	} else {
		for _, p := range lowpower.Split(timex.Seconds(rem), s.naps[:0]) {
			s.sleeper.PowerDown(p, s.off)
			r.Naps++
		}
	}

	r.Due = m.Now().Add(offset)
	m.ScheduleAt(job, r.Due, next)
	return r
}
