package sample

import (
	"github.com/rs/zerolog/log"

	"github.com/itohio/gophctl/pkg/config"
	"github.com/itohio/gophctl/pkg/probe"
)

// NewAveragingConverter creates a converter that emits, for every RawSample,
// the average of the last windowSize readings converted to a Sample. This
// reduces noise in the measurements.
func NewAveragingConverter(cfg *config.ProbeConfig, windowSize int, bufSize int) Converter {
	if windowSize <= 0 {
		windowSize = 1 // No averaging if invalid
	}
	if bufSize <= 0 {
		bufSize = 100
	}
	logger := log.With().Str("component", "sample").Logger()

	return func(in <-chan probe.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			buffer := make([]probe.RawSample, 0, windowSize)
			for raw := range in {
				buffer = append(buffer, raw)
				if len(buffer) > windowSize {
					buffer = buffer[1:] // Remove oldest
				}

				select {
				case out <- averageAndConvertSamples(buffer, cfg):
				default:
					logger.Warn().Msg("Averaging converter output channel full")
				}
			}
		}()

		return out
	}
}

// averageAndConvertSamples averages a slice of RawSamples and converts to Sample.
// Uses the most recent sample's timestamp, temperature and dosing flag.
func averageAndConvertSamples(samples []probe.RawSample, cfg *config.ProbeConfig) Sample {
	if len(samples) == 0 {
		return Sample{}
	}

	var sum uint32
	for _, s := range samples {
		sum += uint32(s.Reading)
	}

	avg := samples[len(samples)-1]
	avg.Reading = uint16(float64(sum)/float64(len(samples)) + 0.5) // Round to nearest

	return convertSample(avg, cfg)
}
