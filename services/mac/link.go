package mac

import (
	"sync"
	"time"

	"loranode-go/errcode"
)

// Downlink is what came back in the receive windows of one uplink.
type Downlink struct {
	Ack    bool
	Port   uint8
	Data   []byte
	Window uint8 // 1 or 2; 0 when nothing was received
}

// Link performs the over-the-air part of a join or an uplink. Both calls
// block until the exchange, receive windows included, is over.
type Link interface {
	Join() error
	Uplink(port uint8, data []byte, confirmed bool) (Downlink, error)
}

// SimUplink is one frame seen by Sim.
type SimUplink struct {
	Port      uint8
	Data      []byte
	Confirmed bool
}

// Sim is a host-side network. It accepts joins after JoinFailures refusals,
// acks confirmed uplinks when AckConfirmed is set, and hands out queued
// downlinks one per uplink in RX1.
type Sim struct {
	mu sync.Mutex

	JoinFailures int
	AckConfirmed bool
	UplinkErr    error

	// Airtime is passed to Advance for every exchange so a fake clock sees
	// the receive windows go by.
	Airtime time.Duration
	Advance func(time.Duration)

	clockErr uint8

	joins     int
	uplinks   []SimUplink
	downlinks []Downlink
}

// QueueDownlink makes the next uplink receive d.
func (s *Sim) QueueDownlink(port uint8, data []byte) {
	s.mu.Lock()
	s.downlinks = append(s.downlinks, Downlink{Port: port, Data: append([]byte(nil), data...), Window: 1})
	s.mu.Unlock()
}

func (s *Sim) Join() error {
	s.mu.Lock()
	s.joins++
	fail := s.joins <= s.JoinFailures
	s.mu.Unlock()
	s.spend()
	if fail {
		return errcode.JoinFailed
	}
	return nil
}

func (s *Sim) Uplink(port uint8, data []byte, confirmed bool) (Downlink, error) {
	s.mu.Lock()
	s.uplinks = append(s.uplinks, SimUplink{Port: port, Data: append([]byte(nil), data...), Confirmed: confirmed})
	err := s.UplinkErr
	var dl Downlink
	if err == nil && len(s.downlinks) > 0 {
		dl = s.downlinks[0]
		s.downlinks = s.downlinks[1:]
	}
	if err == nil && confirmed && s.AckConfirmed {
		dl.Ack = true
		if dl.Window == 0 {
			dl.Window = 1
		}
	}
	s.mu.Unlock()
	s.spend()
	return dl, err
}

// SetClockError widens every simulated exchange by pct percent, the way a
// device keeps its receive windows open longer to cover drift.
func (s *Sim) SetClockError(pct uint8) {
	s.mu.Lock()
	s.clockErr = pct
	s.mu.Unlock()
}

func (s *Sim) spend() {
	s.mu.Lock()
	d := s.Airtime + s.Airtime*time.Duration(s.clockErr)/100
	s.mu.Unlock()
	if s.Advance != nil && d > 0 {
		s.Advance(d)
	}
}

func (s *Sim) Joins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joins
}

func (s *Sim) Uplinks() []SimUplink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SimUplink(nil), s.uplinks...)
}
