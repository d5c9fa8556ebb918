package config

import (
	"context"

	"loranode-go/bus"
	"loranode-go/errcode"
	"loranode-go/x/logx"

	"github.com/andreyvit/tinyjson"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// Keys published under config/<key>.
const (
	KeyNode    = "node"
	KeyLoRaWAN = "lorawan"
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Topic returns the retained topic carrying one top-level config key.
func Topic(key string) bus.Topic { return bus.T(configPrefix, key) }

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
	log  logx.Logger
}

func NewConfigService(log logx.Logger) *ConfigService {
	if log == nil {
		log = logx.Discard
	}
	return &ConfigService{Name: serviceName, log: log}
}

// Decode parses one embedded document into its top-level object.
func Decode(raw []byte) (m map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, &errcode.E{C: errcode.InvalidConfig, Op: "decode", Msg: "malformed JSON"}
		}
	}()
	r := tinyjson.Raw(raw)
	val := r.Value() // should be a map[string]any
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return nil, &errcode.E{C: errcode.InvalidConfig, Op: "decode", Msg: "not a JSON object"}
	}
	return m, nil
}

// publishConfig reads the device config from embedded data and publishes it as retained messages.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: "publish", Msg: "missing device ID in context"}
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return &errcode.E{C: errcode.InvalidConfig, Op: "publish", Msg: "no embedded config for device: " + device}
	}

	m, err := Decode(raw)
	if err != nil {
		return err
	}
	for k, v := range m {
		conn.Publish(conn.NewMessage(Topic(k), v, true))
	}
	s.log.Infof("published %d keys for %s", len(m), device)
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			s.log.Errorf("%v", err)
		}
	}()
}

// Await blocks until config/<key> has a retained value or ctx is done.
func Await(ctx context.Context, conn *bus.Connection, key string) (any, error) {
	sub := conn.Subscribe(Topic(key))
	defer sub.Unsubscribe()
	select {
	case m := <-sub.Channel():
		return m.Payload, nil
	case <-ctx.Done():
		return nil, errcode.Wrap(errcode.Timeout, "await "+key, ctx.Err())
	}
}
