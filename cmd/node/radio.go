//go:build tinygo && rp2040

package main

import (
	"machine"

	"loranode-go/errcode"

	"tinygo.org/x/drivers/lora"
	"tinygo.org/x/drivers/sx127x"
)

// RFM95W breakout wired to SPI0.
const (
	pinSCK  = machine.GPIO18
	pinSDO  = machine.GPIO19
	pinSDI  = machine.GPIO16
	pinCS   = machine.GPIO17
	pinRST  = machine.GPIO20
	pinDIO0 = machine.GPIO21
	pinDIO1 = machine.GPIO22
)

func setupRadio() (lora.Radio, error) {
	spi := machine.SPI0
	if err := spi.Configure(machine.SPIConfig{
		Frequency: 500000,
		Mode:      0,
		SCK:       pinSCK,
		SDO:       pinSDO,
		SDI:       pinSDI,
	}); err != nil {
		return nil, errcode.Wrap(errcode.Error, "spi", err)
	}

	d := sx127x.New(spi, pinRST)
	if err := d.SetRadioController(sx127x.NewRadioControl(pinCS, pinDIO0, pinDIO1)); err != nil {
		return nil, errcode.Wrap(errcode.Error, "radio control", err)
	}
	d.Reset()
	if !d.DetectDevice() {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "radio", Msg: "sx127x not detected"}
	}
	return d, nil
}
