package config

import (
	"context"
	"testing"
	"time"

	"loranode-go/bus"
	"loranode-go/errcode"
	"loranode-go/types"
)

func TestConfig_PublishEmbedded_RetainedPerKey(t *testing.T) {
	// Override lookup for this test.
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico" {
			return nil, false
		}
		return []byte(`{
			"mode": "dev",
			"debug": true,
			"region": {"code": "eu"}
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService(nil)

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico")
	svc.Start(ctx, conn)

	// Subscribe; retained messages arrive immediately or as they are published.
	sub := conn.Subscribe(bus.T(configPrefix, bus.MultiWild))

	wantCount := 3 // mode, debug, region
	got := map[string]any{}

	deadline := time.Now().Add(600 * time.Millisecond)
	for len(got) < wantCount && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			if m.Topic.Len() != 2 {
				t.Fatalf("unexpected topic length: %#v", m.Topic)
			}
			if prefix, ok := m.Topic.At(0).(string); !ok || prefix != configPrefix {
				t.Fatalf("unexpected prefix: %#v", m.Topic.At(0))
			}
			key, ok := m.Topic.At(1).(string)
			if !ok {
				t.Fatalf("topic[1] type %T, want string", m.Topic.At(1))
			}
			if !m.Retained {
				t.Fatalf("config/%s not retained", key)
			}
			got[key] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(got) != wantCount {
		t.Fatalf("expected %d retained messages, got %d (%v)", wantCount, len(got), got)
	}

	if s, ok := got["mode"].(string); !ok || s != "dev" {
		t.Fatalf("mode payload = %#v, want \"dev\"", got["mode"])
	}
	if bval, ok := got["debug"].(bool); !ok || !bval {
		t.Fatalf("debug payload = %#v, want true", got["debug"])
	}
	if m, ok := got["region"].(map[string]any); !ok {
		t.Fatalf("region payload type = %T, want map[string]any", got["region"])
	} else if code, ok := m["code"].(string); !ok || code != "eu" {
		t.Fatalf("region.code = %#v, want \"eu\"", m["code"])
	}
}

func TestConfig_PublishConfig_MissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-missing-device")
	svc := NewConfigService(nil)

	err := svc.publishConfig(context.Background(), conn)
	if errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err = %v, want invalid_params", err)
	}
}

func TestConfig_PublishConfig_NoConfigFound(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) { return nil, false }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(4)
	conn := b.NewConnection("test-no-config")
	svc := NewConfigService(nil)

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unknown-device")
	if err := svc.publishConfig(ctx, conn); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("err = %v, want invalid_config", err)
	}
}

func TestDecode_RejectsNonObject(t *testing.T) {
	if _, err := Decode([]byte(`[1, 2]`)); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("err = %v", err)
	}
}

// The shipped device documents must parse into valid typed configs.
func TestEmbeddedConfigs_Parse(t *testing.T) {
	for device, raw := range embeddedConfigs {
		m, err := Decode(raw)
		if err != nil {
			t.Fatalf("%s: %v", device, err)
		}
		if _, err := types.ParseNodeConfig(m[KeyNode]); err != nil {
			t.Fatalf("%s node: %v", device, err)
		}
		if _, err := types.ParseLoRaWANConfig(m[KeyLoRaWAN]); err != nil {
			t.Fatalf("%s lorawan: %v", device, err)
		}
	}

	m, _ := Decode(embeddedConfigs["pico"])
	lw, _ := types.ParseLoRaWANConfig(m[KeyLoRaWAN])
	if lw.AppEUI[0] != 0x70 || lw.AppEUI[7] != 0xC0 || lw.AppKey[15] != 0x57 {
		t.Fatalf("pico keys decoded as %X / %X", lw.AppEUI, lw.AppKey)
	}
}

func TestAwait(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-await")
	conn.Publish(conn.NewMessage(Topic(KeyNode), map[string]any{"interval_s": 30.0}, true))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := Await(ctx, conn, KeyNode)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := types.ParseNodeConfig(v)
	if err != nil || cfg.IntervalS != 30 {
		t.Fatalf("cfg = %+v err = %v", cfg, err)
	}

	short, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	if _, err := Await(short, conn, "missing"); errcode.Of(err) != errcode.Timeout {
		t.Fatalf("err = %v, want timeout", err)
	}
}
