package station

import (
	"github.com/rs/zerolog/log"

	"github.com/itohio/gophctl/pkg/config"
	"github.com/itohio/gophctl/pkg/eeprom"
	"github.com/itohio/gophctl/pkg/probe"
	"github.com/itohio/gophctl/pkg/sample"
)

// converterBufferSize is large enough to ride out a held result screen.
const converterBufferSize = 500

// OpenStore opens the parameter store described by cfg. An empty path keeps
// parameters in memory. The returned function releases the backing file.
func OpenStore(cfg *config.StoreConfig) (*eeprom.Store, func() error, error) {
	if cfg.Path == "" {
		log.Warn().Str("component", "station").Msg("No store path, parameters will not survive a restart")
		return eeprom.New(eeprom.NewMemory(cfg.Size)), func() error { return nil }, nil
	}

	db, err := eeprom.OpenBolt(cfg.Path, cfg.Size)
	if err != nil {
		return nil, nil, err
	}
	return eeprom.New(db), db.Close, nil
}

// OpenDevice returns the mock probe when enabled, the serial probe otherwise.
// The device is not connected yet.
func OpenDevice(cfg *config.Config) probe.Device {
	if cfg.Mock.Enabled {
		return probe.NewMock(&cfg.Mock, &cfg.Probe)
	}
	return probe.New(cfg.Serial.Port, cfg.Serial.BaudRate, probe.DefaultBufferSize)
}

// Samples chains the converters for raw: ADC conversion, averaged when
// cfg.AverageSamples is positive.
func Samples(cfg *config.ProbeConfig, raw <-chan probe.RawSample) <-chan sample.Sample {
	if cfg.AverageSamples > 0 {
		return sample.NewAveragingConverter(cfg, cfg.AverageSamples, converterBufferSize)(raw)
	}
	return sample.NewConverter(cfg, converterBufferSize)(raw)
}
