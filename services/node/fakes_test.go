package node

import (
	"time"

	"loranode-go/errcode"
	"loranode-go/services/mac"
	"loranode-go/types"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type queuedUplink struct {
	port      uint8
	data      []byte
	confirmed bool
}

type scheduled struct {
	job *mac.Job
	at  time.Time
	fn  func()
}

// fakeMAC records every call the node makes.
type fakeMAC struct {
	clk *mac.FakeClock

	pending  bool
	queueErr error

	inits, resets, steps int
	clockErr             uint8
	linkCheck            []bool
	uplinks              []queuedUplink
	scheduled            []scheduled
	onEvent              func(types.Event)
}

func newFakeMAC() *fakeMAC { return &fakeMAC{clk: mac.NewFakeClock(t0)} }

func (f *fakeMAC) Init()                        { f.inits++ }
func (f *fakeMAC) Reset()                       { f.resets++; f.pending = false }
func (f *fakeMAC) SetClockError(pct uint8)      { f.clockErr = pct }
func (f *fakeMAC) SetLinkCheck(on bool)         { f.linkCheck = append(f.linkCheck, on) }
func (f *fakeMAC) Pending() bool                { return f.pending }
func (f *fakeMAC) Now() time.Time               { return f.clk.Now() }
func (f *fakeMAC) RunStep()                     { f.steps++ }
func (f *fakeMAC) OnEvent(fn func(types.Event)) { f.onEvent = fn }

func (f *fakeMAC) QueueUplink(port uint8, data []byte, confirmed bool) error {
	if f.pending {
		return errcode.Busy
	}
	if f.queueErr != nil {
		return f.queueErr
	}
	f.uplinks = append(f.uplinks, queuedUplink{port, append([]byte(nil), data...), confirmed})
	f.pending = true
	return nil
}

func (f *fakeMAC) ScheduleAt(j *mac.Job, t time.Time, fn func()) {
	f.scheduled = append(f.scheduled, scheduled{j, t, fn})
}

// countingSampler counts reads.
type countingSampler struct {
	mv    int32
	reads int
}

func (c *countingSampler) MilliVolts() int32 { c.reads++; return c.mv }
