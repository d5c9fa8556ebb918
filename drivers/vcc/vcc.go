// Package vcc turns raw ADC conversions into supply millivolts.
package vcc

import (
	"time"

	"loranode-go/x/mathx"
)

// ADC is a blocking single conversion. machine.ADC satisfies it; TinyGo
// scales every conversion to 16 bits.
type ADC interface {
	Get() uint16
}

// FullScale16 is the top code of a TinyGo ADC reading.
const FullScale16 = 65535

// BandgapMilliV is the nominal internal reference on AVR-class parts.
const BandgapMilliV = 1100

// FromBandgap solves Vcc when the fixed internal reference is measured
// against the supply rail: Vcc = ref * fullScale / raw. raw 0 yields 0.
func FromBandgap(raw, fullScale, refMilliV uint32) int32 {
	if raw == 0 {
		return 0
	}
	return int32(mathx.RoundDiv(uint64(refMilliV)*uint64(fullScale), uint64(raw)))
}

// FromDivider solves Vcc when the rail is measured through a resistor
// divider of the given ratio against vrefMilliV.
func FromDivider(raw, fullScale, ratio, vrefMilliV uint32) int32 {
	if fullScale == 0 {
		return 0
	}
	return int32(mathx.RoundDiv(uint64(raw)*uint64(ratio)*uint64(vrefMilliV), uint64(fullScale)))
}

// Bandgap reads the internal reference through adc.
type Bandgap struct {
	ADC       ADC
	RefMilliV uint32        // 0 means BandgapMilliV
	Settle    time.Duration // wait for the reference before converting
}

func (b Bandgap) MilliVolts() int32 {
	if b.Settle > 0 {
		time.Sleep(b.Settle)
	}
	ref := b.RefMilliV
	if ref == 0 {
		ref = BandgapMilliV
	}
	return FromBandgap(uint32(b.ADC.Get()), FullScale16, ref)
}

// Divider reads the rail through a resistor divider.
type Divider struct {
	ADC        ADC
	Ratio      uint32
	VRefMilliV uint32
}

func (d Divider) MilliVolts() int32 {
	return FromDivider(uint32(d.ADC.Get()), FullScale16, d.Ratio, d.VRefMilliV)
}

// Fixed reports a constant; used on hosts without a supply ADC.
type Fixed int32

func (f Fixed) MilliVolts() int32 { return int32(f) }

// Func adapts a plain function.
type Func func() int32

func (f Func) MilliVolts() int32 { return f() }
