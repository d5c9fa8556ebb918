// Package node is the uplink loop of a battery telemetry node: sample the
// supply, queue an uplink when the MAC is free, and on every completed
// transmission power down for the configured interval before arming the
// next send.
package node

import (
	"context"

	"github.com/google/uuid"

	"loranode-go/bus"
	"loranode-go/drivers/lowpower"
	"loranode-go/services/mac"
	"loranode-go/types"
	"loranode-go/x/logx"
)

type Deps struct {
	MAC      MAC
	Battery  BatterySampler
	Sleeper  lowpower.Sleeper
	Conn     *bus.Connection // optional; status and events are published here
	Log      logx.Logger
	Downlink DownlinkHandler // optional
}

type Node struct {
	cfg    types.NodeConfig
	mac    MAC
	conn   *bus.Connection
	log    logx.Logger
	bootID string

	payload Payload
	sendJob mac.Job

	submitter *Submitter
	scheduler *Scheduler
	reactor   *Reactor
}

func New(cfg types.NodeConfig, d Deps) *Node {
	if d.Log == nil {
		d.Log = logx.Discard
	}
	n := &Node{
		cfg:    cfg,
		mac:    d.MAC,
		conn:   d.Conn,
		log:    d.Log,
		bootID: uuid.NewString(),
	}
	n.submitter = NewSubmitter(d.MAC, d.Battery, builderFor(cfg.Format), &n.payload, cfg.Port, cfg.Confirmed, d.Log)
	n.scheduler = NewScheduler(d.Sleeper, cfg.Remainder, d.Log)
	n.reactor = NewReactor(d.MAC, n.scheduler, n.submitter, &n.sendJob, cfg)
	n.reactor.log = d.Log
	n.reactor.conn = d.Conn
	n.reactor.downlink = d.Downlink
	n.reactor.changed = n.publishStatus
	return n
}

// Setup resets the MAC and sends the first uplink, which also starts the
// join since there is no session yet.
func (n *Node) Setup() {
	n.log.Infof("starting, boot %s", n.bootID)
	n.mac.OnEvent(n.reactor.Handle)
	n.mac.Init()
	n.mac.Reset()
	n.mac.SetClockError(n.cfg.ClockErrorPct)
	n.submitter.Submit()
	n.publishStatus()
}

// Run pumps the MAC until ctx is done.
func (n *Node) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			n.log.Infof("stopping: %v", ctx.Err())
			return
		default:
			n.mac.RunStep()
		}
	}
}

func (n *Node) Status() types.NodeStatus {
	return types.NodeStatus{
		BootID:        n.bootID,
		State:         n.reactor.State(),
		Uplinks:       n.submitter.Queued(),
		Skipped:       n.submitter.Skipped(),
		JoinFailures:  n.reactor.JoinFailures(),
		BatteryMilliV: n.submitter.LastMilliV(),
		TSms:          n.mac.Now().UnixMilli(),
	}
}

func (n *Node) publishStatus() {
	if n.conn == nil {
		return
	}
	n.conn.Publish(n.conn.NewMessage(topicStatus, n.Status(), true))
}

// Payload exposes the uplink buffer for inspection.
func (n *Node) Payload() *Payload { return &n.payload }

func (n *Node) LastCycle() CycleReport { return n.reactor.LastCycle() }
