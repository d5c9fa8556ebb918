//go:build !tinygo

// nodesim runs the node against a simulated network on the host. By default
// time is simulated so a day of uplinks takes milliseconds; -realtime uses
// the wall clock and really sleeps.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"loranode-go/bus"
	"loranode-go/drivers/lowpower"
	"loranode-go/drivers/vcc"
	"loranode-go/services/config"
	"loranode-go/services/mac"
	"loranode-go/services/monitor"
	"loranode-go/services/node"
	"loranode-go/types"
)

func main() {
	device := flag.String("device", "sim", "embedded config to load")
	uplinks := flag.Int("uplinks", 5, "stop after this many completed uplinks")
	joinFails := flag.Int("join-failures", 0, "joins the network refuses before accepting")
	milliV := flag.Int("battery", 3700, "simulated battery reading in mV")
	realtime := flag.Bool("realtime", false, "use the wall clock")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(16)
	nodeConn := b.NewConnection("node")
	config.NewConfigService(log.WithField("svc", "config")).Start(
		context.WithValue(ctx, config.CtxDeviceKey, *device), b.NewConnection("config"))

	nodeCfg, err := load(ctx, nodeConn, config.KeyNode, types.ParseNodeConfig)
	if err != nil {
		log.Fatalf("node config: %v", err)
	}

	var (
		clock   mac.Clock        = mac.SystemClock{}
		sleeper lowpower.Sleeper = lowpower.Timed{}
	)
	sim := &mac.Sim{JoinFailures: *joinFails, AckConfirmed: true}
	if !*realtime {
		fc := mac.NewFakeClock(time.Now())
		clock = fc
		sleeper = &lowpower.Recorder{Advance: fc.Advance}
		sim.Airtime = 1500 * time.Millisecond
		sim.Advance = fc.Advance
	}
	sim.QueueDownlink(nodeCfg.Port, []byte{0x01})

	stack := mac.New(clock, sim, log.WithField("svc", "mac"), mac.Options{})

	_ = monitor.New(log.WithField("svc", "monitor")).Start(ctx, b.NewConnection("monitor"))

	nodeLog := log.WithField("svc", "node")
	n := node.New(nodeCfg, node.Deps{
		MAC:     stack,
		Battery: vcc.Fixed(*milliV),
		Sleeper: sleeper,
		Conn:    nodeConn,
		Log:     nodeLog,
		Downlink: func(port uint8, data []byte) {
			nodeLog.WithField("port", port).Infof("downlink % X", data)
		},
	})

	done := b.NewConnection("sim").Subscribe(bus.T("node", "event", types.EvTxComplete.String()))
	go func() {
		for i := 0; i < *uplinks; i++ {
			if _, ok := <-done.Channel(); !ok {
				return
			}
		}
		cancel()
	}()

	n.Setup()
	n.Run(ctx)

	st := n.Status()
	log.WithFields(logrus.Fields{
		"boot":     st.BootID,
		"uplinks":  st.Uplinks,
		"skipped":  st.Skipped,
		"frames":   stack.FrameCount(),
		"sim_sent": len(sim.Uplinks()),
	}).Info("done")
}

func load[T any](ctx context.Context, conn *bus.Connection, key string, parse func(any) (T, error)) (T, error) {
	wait, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	raw, err := config.Await(wait, conn, key)
	if err != nil {
		var zero T
		return zero, err
	}
	return parse(raw)
}
