package node

import (
	"loranode-go/bus"
	"loranode-go/services/mac"
	"loranode-go/types"
	"loranode-go/x/logx"
)

type handler func(ev types.Event)

// Reactor is the MAC event callback. Each event kind maps to at most one
// handler; kinds without one are logged and published only.
type Reactor struct {
	mac       MAC
	sched     *Scheduler
	submit    *Submitter
	job       *mac.Job
	intervalS uint32
	linkCheck bool
	downlink  DownlinkHandler
	conn      *bus.Connection
	log       logx.Logger
	changed   func()

	state     types.NodeState
	joinFails uint16
	last      CycleReport

	table [types.NumEventKinds]handler
}

func NewReactor(m MAC, sched *Scheduler, submit *Submitter, job *mac.Job, cfg types.NodeConfig) *Reactor {
	r := &Reactor{
		mac:       m,
		sched:     sched,
		submit:    submit,
		job:       job,
		intervalS: cfg.IntervalS,
		linkCheck: cfg.LinkCheck,
		log:       logx.Discard,
		state:     types.StateIdle,
	}
	r.table[types.EvJoining] = r.onJoining
	r.table[types.EvJoined] = r.onJoined
	r.table[types.EvJoinFailed] = r.onJoinFailed
	r.table[types.EvRejoinFailed] = r.onJoinFailed
	r.table[types.EvTxComplete] = r.onTxComplete
	return r
}

// Handle is installed with MAC.OnEvent.
func (r *Reactor) Handle(ev types.Event) {
	k := ev.Kind
	if !k.Known() {
		k = types.EvUnknown
		r.log.Infof("unknown event %d", int(ev.Kind))
	} else {
		r.log.Infof("%s", k)
	}
	if r.conn != nil {
		r.conn.Publish(r.conn.NewMessage(eventTopic(k), types.LinkEventInfo{
			Kind:    k.String(),
			Ack:     ev.Acked(),
			Port:    ev.Port,
			DataLen: ev.DataLen(),
			TSms:    ev.At.UnixMilli(),
		}, false))
	}
	if h := r.table[k]; h != nil {
		h(ev)
	}
}

func (r *Reactor) onJoining(types.Event) {
	r.setState(types.StateJoining)
}

func (r *Reactor) onJoined(types.Event) {
	// The MAC turns link validation on while joining; keep the configured
	// setting instead.
	r.mac.SetLinkCheck(r.linkCheck)
	r.joinFails = 0
	r.setState(types.StateJoined)
}

func (r *Reactor) onJoinFailed(ev types.Event) {
	r.joinFails++
	r.log.Warnf("%s, %d consecutive failures", ev.Kind, r.joinFails)
	r.notify()
}

func (r *Reactor) onTxComplete(ev types.Event) {
	if ev.Acked() {
		r.log.Infof("received ack")
	}
	if n := ev.DataLen(); n > 0 {
		r.log.Infof("received %d bytes of payload on port %d", n, ev.Port)
		if r.downlink != nil {
			r.downlink(ev.Port, ev.Data)
		}
	}
	r.setState(types.StateSleeping)
	r.last = r.sched.Cycle(r.intervalS, r.mac, r.job, r.sendNext)
	r.setState(types.StateJoined)
}

func (r *Reactor) sendNext() { r.submit.Submit() }

func (r *Reactor) setState(s types.NodeState) {
	if r.state == s {
		return
	}
	r.state = s
	r.notify()
}

func (r *Reactor) notify() {
	if r.changed != nil {
		r.changed()
	}
}

func (r *Reactor) State() types.NodeState { return r.state }
func (r *Reactor) JoinFailures() uint16   { return r.joinFails }
func (r *Reactor) LastCycle() CycleReport { return r.last }
