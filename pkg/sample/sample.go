package sample

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/itohio/gophctl/pkg/config"
	"github.com/itohio/gophctl/pkg/probe"
)

// Sample represents a probe measurement in physical units.
type Sample struct {
	Timestamp   time.Time
	Millivolts  float32 // probe output (mV)
	Temperature float32
	Dosing      bool
}

// Converter is a function type that converts RawSample channel to Sample channel.
type Converter func(in <-chan probe.RawSample) <-chan Sample

// NewConverter creates a converter function that transforms RawSample to Sample.
func NewConverter(cfg *config.ProbeConfig, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}
	logger := log.With().Str("component", "sample").Logger()

	return func(in <-chan probe.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				select {
				case out <- convertSample(raw, cfg):
				case <-time.After(time.Second):
					logger.Warn().Msg("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// convertSample converts a RawSample to Sample using configuration.
func convertSample(raw probe.RawSample, cfg *config.ProbeConfig) Sample {
	return Sample{
		Timestamp:   raw.Timestamp,
		Millivolts:  adcToMillivolts(raw.Reading, cfg.VRefMV, cfg.Resolution),
		Temperature: raw.Temperature,
		Dosing:      raw.Dosing,
	}
}

// adcToMillivolts converts an ADC reading of the given resolution to mV.
func adcToMillivolts(adc uint16, vrefMV float64, resolution int) float32 {
	full := float64(uint32(1)<<resolution - 1)
	return float32(float64(adc) / full * vrefMV)
}
