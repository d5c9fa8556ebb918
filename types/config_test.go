package types

import (
	"testing"

	"loranode-go/errcode"
)

func TestParseNodeConfig_Defaults(t *testing.T) {
	c, err := ParseNodeConfig(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != DefaultNodeConfig() {
		t.Fatalf("nil config = %+v, want defaults", c)
	}
	if c.IntervalS != 20 || c.Port != 1 || c.Confirmed || c.ClockErrorPct != 1 {
		t.Fatalf("defaults drifted: %+v", c)
	}
}

func TestParseNodeConfig_Overrides(t *testing.T) {
	c, err := ParseNodeConfig(map[string]any{
		"interval_s": float64(900),
		"port":       float64(2),
		"format":     "lpp",
		"remainder":  "timer",
		"link_check": true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.IntervalS != 900 || c.Port != 2 || c.Format != FormatLPP || c.Remainder != RemainderTimer || !c.LinkCheck {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.JoinAlertAfter != 3 {
		t.Fatalf("untouched field lost its default: %+v", c)
	}
}

func TestParseNodeConfig_Rejects(t *testing.T) {
	for _, m := range []map[string]any{
		{"interval_s": float64(0)},
		{"port": float64(0)},
		{"port": float64(224)},
		{"clock_error_pct": float64(50)},
		{"format": "cbor"},
		{"remainder": "spin"},
		{"interval_s": 20.5},
		{"interval_s": "20"},
		{"port": true},
		{"join_alert_after": nil},
	} {
		if _, err := ParseNodeConfig(m); errcode.Of(err) != errcode.InvalidConfig {
			t.Fatalf("ParseNodeConfig(%v) err = %v, want invalid_config", m, err)
		}
	}
	if _, err := ParseNodeConfig("nope"); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("non-object err = %v", err)
	}
}

func TestParseLoRaWANConfig(t *testing.T) {
	c, err := ParseLoRaWANConfig(map[string]any{
		"app_eui": "70B3D57ED001C00C",
		"dev_eui": "23F3F33F45433453",
		"app_key": "73998EFD719CBBFE74BBB3210A229757",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Region != "EU868" || !c.Public {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if c.AppEUI[0] != 0x70 || c.AppEUI[7] != 0x0C || c.DevEUI[0] != 0x23 || c.AppKey[15] != 0x57 {
		t.Fatalf("keys decoded wrong: %+v", c)
	}

	_, err = ParseLoRaWANConfig(map[string]any{"app_eui": "70B3", "dev_eui": "", "app_key": ""})
	if errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("short EUI err = %v, want invalid_config", err)
	}
}

func TestEventKindNames(t *testing.T) {
	if EvTxComplete.String() != "tx_complete" || EvJoined.String() != "joined" {
		t.Fatal("event names drifted")
	}
	if EventKind(200).String() != "unknown" || EventKind(200).Known() || EvUnknown.Known() {
		t.Fatal("out-of-range kinds must read as unknown")
	}
	for k := EventKind(1); int(k) < NumEventKinds; k++ {
		if k.String() == "" || k.String() == "unknown" {
			t.Fatalf("kind %d has no name", k)
		}
	}
}
