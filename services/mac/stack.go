// Package mac is a cooperative LoRaWAN MAC runtime: a timed-job queue pumped
// by RunStep, an opmode with a transmit/receive pending flag, and a join and
// uplink engine that reports every transition through one event callback.
// Radio work is delegated to a Link.
package mac

import (
	"time"

	"loranode-go/errcode"
	"loranode-go/types"
	"loranode-go/x/logx"
)

// MaxFrame bounds a queued application payload (EU868 DR0 limit).
const MaxFrame = 51

type opmode uint8

const (
	opJoining  opmode = 1 << iota // join in progress or being retried
	opTxData                      // uplink queued, not yet on air
	opTxRxPend                    // uplink on air or waiting for RX windows
)

type Options struct {
	JoinBackoff    time.Duration // first retry delay after a failed join
	MaxJoinBackoff time.Duration
	LinkDeadAfter  int           // uplinks without any downlink before link_dead
	MaxIdle        time.Duration // longest RunStep idle when nothing is due
}

func (o *Options) defaults() {
	if o.JoinBackoff <= 0 {
		o.JoinBackoff = 10 * time.Second
	}
	if o.MaxJoinBackoff <= 0 {
		o.MaxJoinBackoff = 10 * time.Minute
	}
	if o.LinkDeadAfter <= 0 {
		o.LinkDeadAfter = 64
	}
	if o.MaxIdle <= 0 {
		o.MaxIdle = 100 * time.Millisecond
	}
}

type Stack struct {
	clock Clock
	link  Link
	log   logx.Logger
	opt   Options

	onEvent func(types.Event)

	jobs   jobQueue
	engine Job

	op        opmode
	joined    bool
	linkCheck bool
	clockErr  uint8

	joinFails int
	silent    int // uplinks since the last downlink
	dead      bool
	fcnt      uint32

	tx struct {
		port      uint8
		confirmed bool
		n         int
		buf       [MaxFrame]byte
	}
}

func New(clock Clock, link Link, log logx.Logger, opt Options) *Stack {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = logx.Discard
	}
	opt.defaults()
	return &Stack{clock: clock, link: link, log: log, opt: opt}
}

// OnEvent installs the single event callback. It is always invoked from
// RunStep, never from inside another Stack call.
func (s *Stack) OnEvent(fn func(types.Event)) { s.onEvent = fn }

// Init clears the job queue.
func (s *Stack) Init() {
	for len(s.jobs) > 0 {
		s.jobs.remove(s.jobs[0])
	}
}

// Reset drops the session and any pending transfer.
func (s *Stack) Reset() {
	s.jobs.remove(&s.engine)
	s.op = 0
	s.joined = false
	s.linkCheck = false
	s.joinFails = 0
	s.silent = 0
	s.dead = false
	s.fcnt = 0
	s.tx.n = 0
}

// driftTolerant links widen their receive windows for a drifting clock.
type driftTolerant interface {
	SetClockError(pct uint8)
}

// SetClockError sets the tolerated clock drift in percent and passes it on
// to the link when the link can use it.
func (s *Stack) SetClockError(pct uint8) {
	s.clockErr = pct
	if l, ok := s.link.(driftTolerant); ok {
		l.SetClockError(pct)
	}
}

func (s *Stack) ClockError() uint8 { return s.clockErr }

// SetLinkCheck toggles link validation. It is switched on by every
// successful join.
func (s *Stack) SetLinkCheck(on bool) { s.linkCheck = on }
func (s *Stack) LinkCheck() bool      { return s.linkCheck }

func (s *Stack) Joined() bool       { return s.joined }
func (s *Stack) Pending() bool      { return s.op&(opTxData|opTxRxPend) != 0 }
func (s *Stack) FrameCount() uint32 { return s.fcnt }

func (s *Stack) Now() time.Time { return s.clock.Now() }

// ScheduleAt arms j to run fn at t, replacing any earlier arming of j.
func (s *Stack) ScheduleAt(j *Job, t time.Time, fn func()) { s.jobs.insert(j, t, fn) }

// Cancel disarms j if it is queued.
func (s *Stack) Cancel(j *Job) { s.jobs.remove(j) }

// QueueUplink copies data and starts the join/transmit engine. It returns
// errcode.Busy while a previous uplink is still pending.
func (s *Stack) QueueUplink(port uint8, data []byte, confirmed bool) error {
	if s.Pending() {
		return errcode.Busy
	}
	if len(data) > MaxFrame {
		return &errcode.E{C: errcode.PayloadOverflow, Op: "queue_uplink"}
	}
	s.tx.port = port
	s.tx.confirmed = confirmed
	s.tx.n = copy(s.tx.buf[:], data)
	s.op |= opTxData
	if !s.joined {
		s.op |= opJoining
	}
	s.ScheduleAt(&s.engine, s.clock.Now(), s.step)
	return nil
}

// RunStep runs at most one due job. With nothing due it idles until the
// next job or MaxIdle, whichever comes first.
func (s *Stack) RunStep() {
	now := s.clock.Now()
	if j := s.jobs.popDue(now); j != nil {
		j.fn()
		return
	}
	wake := now.Add(s.opt.MaxIdle)
	if next, ok := s.jobs.next(); ok && next.Before(wake) {
		wake = next
	}
	s.clock.SleepUntil(wake)
}

func (s *Stack) emit(ev types.Event) {
	ev.At = s.clock.Now()
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}

// step is the engine job: one join attempt or one uplink per run.
func (s *Stack) step() {
	switch {
	case s.op&opJoining != 0:
		s.join()
	case s.op&opTxData != 0:
		s.transmit()
	}
}

func (s *Stack) join() {
	if s.link == nil {
		s.log.Errorf("join: no link")
		return
	}
	if s.joinFails == 0 {
		s.emit(types.Event{Kind: types.EvJoining})
	}
	if err := s.link.Join(); err != nil {
		s.joinFails++
		delay := s.backoff()
		s.log.Warnf("join attempt %d failed: %v, retry in %dms", s.joinFails, err, delay.Milliseconds())
		s.ScheduleAt(&s.engine, s.clock.Now().Add(delay), s.step)
		s.emit(types.Event{Kind: types.EvJoinFailed})
		return
	}
	s.joined = true
	s.joinFails = 0
	s.fcnt = 0
	s.op &^= opJoining
	s.linkCheck = true
	if s.op&opTxData != 0 {
		s.ScheduleAt(&s.engine, s.clock.Now(), s.step)
	}
	s.emit(types.Event{Kind: types.EvJoined})
}

func (s *Stack) backoff() time.Duration {
	d := s.opt.JoinBackoff
	for i := 1; i < s.joinFails && d < s.opt.MaxJoinBackoff; i++ {
		d *= 2
	}
	if d > s.opt.MaxJoinBackoff {
		d = s.opt.MaxJoinBackoff
	}
	return d
}

func (s *Stack) transmit() {
	s.op = s.op&^opTxData | opTxRxPend
	dl, err := s.link.Uplink(s.tx.port, s.tx.buf[:s.tx.n], s.tx.confirmed)
	s.op &^= opTxRxPend
	s.fcnt++
	if err != nil {
		s.log.Warnf("uplink %d failed: %v", s.fcnt, err)
	}

	ev := types.Event{Kind: types.EvTxComplete, Port: dl.Port, Data: dl.Data}
	if s.tx.confirmed {
		if dl.Ack {
			ev.Flags |= types.TxRxAck
		} else {
			ev.Flags |= types.TxRxNack
		}
	}
	if len(dl.Data) > 0 {
		ev.Flags |= types.TxRxPort
	}
	switch dl.Window {
	case 1:
		ev.Flags |= types.TxRxDnw1
	case 2:
		ev.Flags |= types.TxRxDnw2
	}

	if s.linkCheck {
		s.trackLink(dl.Window != 0 || dl.Ack)
	}
	s.emit(ev)
}

// trackLink reports link_dead after LinkDeadAfter silent uplinks and
// link_alive on the first downlink after that.
func (s *Stack) trackLink(heard bool) {
	if heard {
		s.silent = 0
		if s.dead {
			s.dead = false
			s.emit(types.Event{Kind: types.EvLinkAlive})
		}
		return
	}
	s.silent++
	if !s.dead && s.silent >= s.opt.LinkDeadAfter {
		s.dead = true
		s.emit(types.Event{Kind: types.EvLinkDead})
	}
}
