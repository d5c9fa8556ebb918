package node

import (
	"loranode-go/x/logx"
)

// Submitter hands one freshly built payload to the MAC, unless an earlier
// uplink is still in flight. It never queues two transmissions at once.
type Submitter struct {
	mac       MAC
	battery   BatterySampler
	build     Builder
	payload   *Payload
	port      uint8
	confirmed bool
	log       logx.Logger

	queued     uint32
	skipped    uint32
	lastMilliV int32
}

func NewSubmitter(m MAC, battery BatterySampler, build Builder, p *Payload, port uint8, confirmed bool, log logx.Logger) *Submitter {
	if build == nil {
		build = BuildBattery
	}
	if log == nil {
		log = logx.Discard
	}
	return &Submitter{
		mac:       m,
		battery:   battery,
		build:     build,
		payload:   p,
		port:      port,
		confirmed: confirmed,
		log:       log,
	}
}

// Submit reports whether an uplink was queued. A pending MAC makes it a
// no-op: nothing is sampled, built or queued.
func (s *Submitter) Submit() bool {
	if s.mac.Pending() {
		s.skipped++
		s.log.Infof("tx/rx pending, not sending")
		return false
	}

	s.payload.Reset()
	mv := s.battery.MilliVolts()
	n, err := s.build(s.payload, mv)
	if err != nil {
		s.log.Errorf("build payload: %v", err)
		return false
	}
	if err := s.mac.QueueUplink(s.port, s.payload.Bytes(), s.confirmed); err != nil {
		s.log.Warnf("queue uplink: %v", err)
		return false
	}
	s.queued++
	s.lastMilliV = mv
	s.log.Infof("packet queued: %d bytes, battery %d mV", n, mv)
	return true
}

func (s *Submitter) Queued() uint32    { return s.queued }
func (s *Submitter) Skipped() uint32   { return s.skipped }
func (s *Submitter) LastMilliV() int32 { return s.lastMilliV }
