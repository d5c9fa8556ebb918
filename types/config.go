package types

import (
	"math"

	"loranode-go/errcode"
	"loranode-go/x/conv"
	"loranode-go/x/mathx"
	"loranode-go/x/strx"
)

// Node configuration supplied on topic "config/node".

type PayloadFormat string

const (
	FormatRaw PayloadFormat = "raw" // battery mV, big endian
	FormatLPP PayloadFormat = "lpp" // Cayenne LPP analog input
)

func (f PayloadFormat) String() string { return string(f) }

// RemainderMode selects how the sub-chunk part of the interval is spent.
type RemainderMode string

const (
	RemainderSleep RemainderMode = "sleep" // power down, then arm immediately
	RemainderTimer RemainderMode = "timer" // stay awake, arm at now+remainder
)

func (r RemainderMode) String() string { return string(r) }

type NodeConfig struct {
	IntervalS      uint32        `json:"interval_s"`
	Port           uint8         `json:"port"`
	Confirmed      bool          `json:"confirmed"`
	ClockErrorPct  uint8         `json:"clock_error_pct"`
	LinkCheck      bool          `json:"link_check"`
	Format         PayloadFormat `json:"format"`
	Remainder      RemainderMode `json:"remainder"`
	JoinAlertAfter uint16        `json:"join_alert_after"`
}

func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		IntervalS:      20,
		Port:           1,
		ClockErrorPct:  1,
		Format:         FormatRaw,
		Remainder:      RemainderSleep,
		JoinAlertAfter: 3,
	}
}

// ParseNodeConfig reads a decoded JSON object over the defaults.
// A nil value yields the defaults.
func ParseNodeConfig(v any) (NodeConfig, error) {
	c := DefaultNodeConfig()
	if v == nil {
		return c, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return c, &errcode.E{C: errcode.InvalidConfig, Op: "node", Msg: "not an object"}
	}

	if n, ok, err := num(m, "interval_s"); err != nil {
		return c, err
	} else if ok {
		if !mathx.Between(n, 1, 86400) {
			return c, &errcode.E{C: errcode.InvalidConfig, Op: "node", Msg: "interval_s out of range"}
		}
		c.IntervalS = uint32(n)
	}
	if n, ok, err := num(m, "port"); err != nil {
		return c, err
	} else if ok {
		// 0 is MAC-only, 224+ reserved.
		if !mathx.Between(n, 1, 223) {
			return c, &errcode.E{C: errcode.InvalidConfig, Op: "node", Msg: "port out of range"}
		}
		c.Port = uint8(n)
	}
	if n, ok, err := num(m, "clock_error_pct"); err != nil {
		return c, err
	} else if ok {
		if !mathx.Between(n, 0, 10) {
			return c, &errcode.E{C: errcode.InvalidConfig, Op: "node", Msg: "clock_error_pct out of range"}
		}
		c.ClockErrorPct = uint8(n)
	}
	if n, ok, err := num(m, "join_alert_after"); err != nil {
		return c, err
	} else if ok {
		if !mathx.Between(n, 1, 1000) {
			return c, &errcode.E{C: errcode.InvalidConfig, Op: "node", Msg: "join_alert_after out of range"}
		}
		c.JoinAlertAfter = uint16(n)
	}
	if b, ok := m["confirmed"].(bool); ok {
		c.Confirmed = b
	}
	if b, ok := m["link_check"].(bool); ok {
		c.LinkCheck = b
	}
	if s, ok := m["format"].(string); ok {
		switch f := PayloadFormat(s); f {
		case FormatRaw, FormatLPP:
			c.Format = f
		default:
			return c, &errcode.E{C: errcode.InvalidConfig, Op: "node", Msg: "unknown format " + s}
		}
	}
	if s, ok := m["remainder"].(string); ok {
		switch r := RemainderMode(s); r {
		case RemainderSleep, RemainderTimer:
			c.Remainder = r
		default:
			return c, &errcode.E{C: errcode.InvalidConfig, Op: "node", Msg: "unknown remainder mode " + s}
		}
	}
	return c, nil
}

// LoRaWAN activation supplied on topic "config/lorawan". EUIs and the key
// are written most significant byte first, as shown by network consoles.

type LoRaWANConfig struct {
	Region string
	AppEUI [8]byte
	DevEUI [8]byte
	AppKey [16]byte
	Public bool
}

func ParseLoRaWANConfig(v any) (LoRaWANConfig, error) {
	c := LoRaWANConfig{Region: "EU868", Public: true}
	m, ok := v.(map[string]any)
	if !ok {
		return c, &errcode.E{C: errcode.InvalidConfig, Op: "lorawan", Msg: "not an object"}
	}
	s, _ := m["region"].(string)
	c.Region = strx.Coalesce(s, c.Region)
	if b, ok := m["public"].(bool); ok {
		c.Public = b
	}
	for _, f := range []struct {
		key string
		dst []byte
	}{
		{"app_eui", c.AppEUI[:]},
		{"dev_eui", c.DevEUI[:]},
		{"app_key", c.AppKey[:]},
	} {
		hex, _ := m[f.key].(string)
		if err := conv.DecodeHex(f.dst, hex); err != nil {
			return c, &errcode.E{C: errcode.InvalidConfig, Op: "lorawan", Msg: "bad " + f.key, Err: err}
		}
	}
	return c, nil
}

// num reads a whole JSON number; tinyjson decodes all numbers as float64.
// ok is false when the key is absent. A present value that is not a whole
// number is an error.
func num(m map[string]any, key string) (n float64, ok bool, err error) {
	v, present := m[key]
	if !present {
		return 0, false, nil
	}
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	default:
		return 0, false, &errcode.E{C: errcode.InvalidConfig, Op: "node", Msg: key + " is not a number"}
	}
	if n != math.Trunc(n) {
		return 0, false, &errcode.E{C: errcode.InvalidConfig, Op: "node", Msg: key + " is not a whole number"}
	}
	return n, true, nil
}
