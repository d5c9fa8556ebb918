package node

import (
	cayennelpp "github.com/TheThingsNetwork/go-cayenne-lib"

	"loranode-go/errcode"
	"loranode-go/types"
	"loranode-go/x/mathx"
)

// PayloadCap is the fixed size of the uplink buffer.
const PayloadCap = 20

// Payload is a fixed-capacity uplink buffer with a write cursor. Writes
// that would pass the capacity fail before touching the buffer.
type Payload struct {
	buf [PayloadCap]byte
	n   int
}

// Reset rewinds the cursor; the bytes are left as they are.
func (p *Payload) Reset()        { p.n = 0 }
func (p *Payload) Len() int      { return p.n }
func (p *Payload) Bytes() []byte { return p.buf[:p.n] }

func (p *Payload) Append(b ...byte) error {
	if p.n+len(b) > PayloadCap {
		return &errcode.E{C: errcode.PayloadOverflow, Op: "payload"}
	}
	p.n += copy(p.buf[p.n:], b)
	return nil
}

// PutUint16 writes v most significant byte first.
func (p *Payload) PutUint16(v uint16) error {
	return p.Append(byte(v>>8), byte(v))
}

// Builder writes one battery reading into p and returns the cursor.
type Builder func(p *Payload, milliV int32) (int, error)

// BuildBattery writes the supply voltage in millivolts as two bytes, big
// endian, clamped to the uint16 range.
func BuildBattery(p *Payload, milliV int32) (int, error) {
	err := p.PutUint16(uint16(mathx.Clamp(milliV, 0, 0xFFFF)))
	return p.n, err
}

// lppBatteryChannel carries the supply voltage as an LPP analog input.
const lppBatteryChannel = 1

// NewLPPBuilder encodes the reading as Cayenne LPP analog input (volts).
func NewLPPBuilder() Builder {
	enc := cayennelpp.NewEncoder()
	return func(p *Payload, milliV int32) (int, error) {
		enc.Reset()
		enc.AddAnalogInput(lppBatteryChannel, float64(milliV)/1000)
		err := p.Append(enc.Bytes()...)
		return p.n, err
	}
}

func builderFor(f types.PayloadFormat) Builder {
	if f == types.FormatLPP {
		return NewLPPBuilder()
	}
	return BuildBattery
}
