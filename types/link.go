package types

import "time"

// EventKind tags one link-layer transition reported by the MAC.
type EventKind uint8

const (
	EvUnknown EventKind = iota
	EvScanTimeout
	EvBeaconFound
	EvBeaconMissed
	EvBeaconTracked
	EvJoining
	EvJoined
	EvRFU1
	EvJoinFailed
	EvRejoinFailed
	EvTxComplete
	EvLostTSync
	EvReset
	EvRxComplete
	EvLinkDead
	EvLinkAlive

	numEventKinds
)

// NumEventKinds sizes dispatch tables indexed by EventKind.
const NumEventKinds = int(numEventKinds)

var eventNames = [...]string{
	EvUnknown:       "unknown",
	EvScanTimeout:   "scan_timeout",
	EvBeaconFound:   "beacon_found",
	EvBeaconMissed:  "beacon_missed",
	EvBeaconTracked: "beacon_tracked",
	EvJoining:       "joining",
	EvJoined:        "joined",
	EvRFU1:          "rfu1",
	EvJoinFailed:    "join_failed",
	EvRejoinFailed:  "rejoin_failed",
	EvTxComplete:    "tx_complete",
	EvLostTSync:     "lost_tsync",
	EvReset:         "reset",
	EvRxComplete:    "rx_complete",
	EvLinkDead:      "link_dead",
	EvLinkAlive:     "link_alive",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return eventNames[EvUnknown]
}

// Known reports whether k is one of the defined kinds other than EvUnknown.
func (k EventKind) Known() bool { return k > EvUnknown && k < numEventKinds }

// TxRxFlags describe how a transmit/receive cycle ended.
type TxRxFlags uint8

const (
	TxRxAck  TxRxFlags = 1 << iota // confirmed uplink was acknowledged
	TxRxNack                       // confirmed uplink got no ack
	TxRxPort                       // downlink carried a port byte
	TxRxDnw1                       // downlink arrived in RX1
	TxRxDnw2                       // downlink arrived in RX2
)

// Event is what the MAC hands to the reactor. Data belongs to the MAC and
// is only valid for the duration of the callback.
type Event struct {
	Kind  EventKind
	Flags TxRxFlags
	Port  uint8
	Data  []byte
	At    time.Time
}

func (e Event) Acked() bool  { return e.Flags&TxRxAck != 0 }
func (e Event) DataLen() int { return len(e.Data) }

// ---- Bus payloads ----

// LinkEventInfo is published (not retained) on node/event/<kind>.
type LinkEventInfo struct {
	Kind    string `json:"kind"`
	Ack     bool   `json:"ack,omitempty"`
	Port    uint8  `json:"port,omitempty"`
	DataLen int    `json:"data_len,omitempty"`
	TSms    int64  `json:"ts_ms"`
}

// NodeState is the node's coarse view of the link, derived from events.
type NodeState string

const (
	StateIdle     NodeState = "idle"
	StateJoining  NodeState = "joining"
	StateJoined   NodeState = "joined"
	StateSleeping NodeState = "sleeping"
)

func (s NodeState) String() string { return string(s) }

// NodeStatus is retained on node/status.
type NodeStatus struct {
	BootID        string    `json:"boot_id"`
	State         NodeState `json:"state"`
	Uplinks       uint32    `json:"uplinks"`
	Skipped       uint32    `json:"skipped"`
	JoinFailures  uint16    `json:"join_failures"`
	BatteryMilliV int32     `json:"battery_mV"`
	TSms          int64     `json:"ts_ms"`
}

// NodeAlert is retained on node/alert while an operator condition holds.
// A nil payload on the same topic clears it.
type NodeAlert struct {
	Code  string `json:"code"`
	Count uint16 `json:"count"`
	TSms  int64  `json:"ts_ms"`
}
