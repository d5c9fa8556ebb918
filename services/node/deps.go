package node

import (
	"time"

	"loranode-go/bus"
	"loranode-go/services/mac"
	"loranode-go/types"
)

// MAC is the slice of the LoRaWAN stack the node drives.
type MAC interface {
	Init()
	Reset()
	SetClockError(pct uint8)
	SetLinkCheck(on bool)
	Pending() bool
	QueueUplink(port uint8, data []byte, confirmed bool) error
	ScheduleAt(j *mac.Job, t time.Time, fn func())
	Now() time.Time
	RunStep()
	OnEvent(fn func(types.Event))
}

var _ MAC = (*mac.Stack)(nil)

// BatterySampler blocks until one supply reading is available.
type BatterySampler interface {
	MilliVolts() int32
}

// DownlinkHandler receives application downlinks after a completed uplink.
// data is only valid during the call.
type DownlinkHandler func(port uint8, data []byte)

var (
	topicStatus = bus.T("node", "status")
)

func eventTopic(k types.EventKind) bus.Topic { return bus.T("node", "event", k.String()) }
