//go:build tinygo

package mac

import (
	"loranode-go/errcode"
	"loranode-go/types"

	"tinygo.org/x/drivers/lora"
	"tinygo.org/x/drivers/lora/lorawan"
	"tinygo.org/x/drivers/lora/lorawan/region"
)

// LoRaWAN drives OTAA join and unconfirmed uplinks through the TinyGo
// LoRaWAN stack. That stack always sends on FPort 1 and does not return
// downlinks, so Downlink is always empty.
type LoRaWAN struct {
	otaa    *lorawan.Otaa
	session *lorawan.Session
}

func NewLoRaWAN(radio lora.Radio, cfg types.LoRaWANConfig) (*LoRaWAN, error) {
	lorawan.UseRadio(radio)
	switch cfg.Region {
	case "US915":
		lorawan.UseRegionSettings(region.US915())
	case "EU868", "":
		lorawan.UseRegionSettings(region.EU868())
	default:
		return nil, &errcode.E{C: errcode.Unsupported, Op: "lorawan", Msg: "region " + cfg.Region}
	}
	lorawan.SetPublicNetwork(cfg.Public)

	otaa := &lorawan.Otaa{}
	if err := otaa.SetAppEUI(cfg.AppEUI[:]); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "app_eui", err)
	}
	if err := otaa.SetDevEUI(cfg.DevEUI[:]); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "dev_eui", err)
	}
	if err := otaa.SetAppKey(cfg.AppKey[:]); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "app_key", err)
	}
	return &LoRaWAN{otaa: otaa, session: &lorawan.Session{}}, nil
}

func (l *LoRaWAN) Join() error {
	if err := lorawan.Join(l.otaa, l.session); err != nil {
		return errcode.Wrap(errcode.JoinFailed, "join", err)
	}
	return nil
}

func (l *LoRaWAN) Uplink(port uint8, data []byte, confirmed bool) (Downlink, error) {
	if port != 1 || confirmed {
		return Downlink{}, &errcode.E{C: errcode.Unsupported, Op: "uplink", Msg: "only unconfirmed port 1"}
	}
	return Downlink{}, lorawan.SendUplink(data, l.session)
}
