package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
//
// EUIs and keys are written most significant byte first, as the network
// console shows them.
// -----------------------------------------------------------------------------

const cfgPico = `{
  "node": {
      "interval_s": 20,
      "port": 1,
      "confirmed": false,
      "clock_error_pct": 1,
      "format": "raw",
      "remainder": "sleep",
      "join_alert_after": 3,
      "link_check": false
  },
  "lorawan": {
      "region": "EU868",
      "app_eui": "70B3D57ED0010CC0",
      "dev_eui": "23F3F33F45433453",
      "app_key": "73998EFD719CBBFE74BBB3210A229757",
      "public": true
  }
}`

const cfgSim = `{
  "node": {
      "interval_s": 20,
      "format": "lpp",
      "join_alert_after": 2
  },
  "lorawan": {
      "region": "EU868",
      "app_eui": "0000000000000000",
      "dev_eui": "0000000000000001",
      "app_key": "00000000000000000000000000000000"
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"sim":  []byte(cfgSim),
}
