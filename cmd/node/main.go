//go:build tinygo && rp2040

package main

import (
	"context"
	"time"

	"loranode-go/bus"
	"loranode-go/drivers/lowpower"
	"loranode-go/drivers/vcc"
	"loranode-go/services/config"
	"loranode-go/services/mac"
	"loranode-go/services/monitor"
	"loranode-go/services/node"
	"loranode-go/types"
	"loranode-go/x/fmtx"
	"loranode-go/x/logx"
	"loranode-go/x/timex"
)

const deviceID = "pico"

func main() {
	// Give a USB/UART console time to attach.
	time.Sleep(2 * time.Second)

	console, err := openConsole()
	if err != nil {
		// No UART: report through the runtime's USB serial output.
		for {
			println("[main] console:", err.Error())
			time.Sleep(10 * time.Second)
		}
	}
	fmtx.DefaultOutput = console
	log := logx.NewConsole(console, "main")
	// Lines carry MAC time once the stack exists.
	var stack *mac.Stack
	log.SetClock(func() int64 {
		if stack == nil {
			return timex.NowMs()
		}
		return stack.Now().UnixMilli()
	})
	ctx := context.Background()

	b := bus.NewBus(4)
	cfgConn := b.NewConnection("config")
	nodeConn := b.NewConnection("node")

	config.NewConfigService(log.With("config")).Start(
		context.WithValue(ctx, config.CtxDeviceKey, deviceID), cfgConn)

	nodeCfg := mustConfig(ctx, nodeConn, config.KeyNode, log, types.ParseNodeConfig)
	lwCfg := mustConfig(ctx, nodeConn, config.KeyLoRaWAN, log, types.ParseLoRaWANConfig)

	radio, err := setupRadio()
	if err != nil {
		halt(log, "radio", err)
	}
	link, err := mac.NewLoRaWAN(radio, lwCfg)
	if err != nil {
		halt(log, "lorawan", err)
	}
	stack = mac.New(mac.SystemClock{}, link, log.With("mac"), mac.Options{})

	mon := monitor.New(log.With("monitor"))
	_ = mon.Start(ctx, b.NewConnection("monitor"))

	nodeLog := log.With("node")
	n := node.New(nodeCfg, node.Deps{
		MAC:     stack,
		Battery: vcc.NewVSYS(),
		Sleeper: lowpower.Timed{OnWake: func(p lowpower.Period, _ lowpower.Peripherals) {
			nodeLog.Debugf("woke after %dms", p.Duration().Milliseconds())
		}},
		Conn: nodeConn,
		Log:  nodeLog,
	})
	n.Setup()
	n.Run(ctx)
}

func mustConfig[T any](ctx context.Context, conn *bus.Connection, key string, log logx.Logger, parse func(any) (T, error)) T {
	wait, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	raw, err := config.Await(wait, conn, key)
	if err != nil {
		halt(log, key, err)
	}
	v, err := parse(raw)
	if err != nil {
		halt(log, key, err)
	}
	return v
}

// halt parks the MCU; there is nothing useful to do without config or radio.
func halt(log logx.Logger, what string, err error) {
	for {
		log.Errorf("%s: %v", what, err)
		time.Sleep(10 * time.Second)
	}
}
