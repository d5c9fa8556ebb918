//go:build rp2040

package vcc

import "machine"

// NewVSYS returns a sampler for the Pico's VSYS/3 tap on ADC3 (GPIO29).
func NewVSYS() Divider {
	machine.InitADC()
	a := machine.ADC{Pin: machine.ADC3}
	a.Configure(machine.ADCConfig{})
	return Divider{ADC: a, Ratio: 3, VRefMilliV: 3300}
}
