package probe

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/itohio/gophctl/pkg/config"
)

// dosingShiftMV is how far the probe output moves per sample while the
// pump adds acid.
const dosingShiftMV = 0.5

// Mock simulates a probe slowly moving between the two calibration
// buffers for testing and development.
type Mock struct {
	cfg   *config.MockConfig
	probe *config.ProbeConfig

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	dosing    bool
	startTime time.Time
	shiftMV   float64
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig, probe *config.ProbeConfig) *Mock {
	def := config.Default()
	if cfg == nil {
		cfg = &def.Mock
	}
	if probe == nil {
		probe = &def.Probe
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		probe:   probe,
		samples: make(chan RawSample, DefaultBufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	m.connected = true
	m.startTime = time.Now()
	m.shiftMV = 0

	go m.generateSamples()

	return nil
}

// Close stops the mocked device. The samples channel is closed once the
// generator stops.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// SetDosing switches the simulated pump.
func (m *Mock) SetDosing(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}

	m.dosing = on
	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generateSamples() {
	defer close(m.samples)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			sample := m.generateSample(now)
			select {
			case m.samples <- sample:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateSample generates a single simulated sample.
func (m *Mock) generateSample(now time.Time) RawSample {
	m.mu.Lock()
	elapsed := now.Sub(m.startTime)
	dosing := m.dosing
	if dosing {
		m.shiftMV += dosingShiftMV
	} else {
		m.shiftMV *= 0.99
	}
	shift := m.shiftMV
	m.mu.Unlock()

	mv := m.millivolts(elapsed) + shift

	return RawSample{
		Timestamp:   now,
		Reading:     m.counts(mv),
		Temperature: float32(m.cfg.Temperature),
		Dosing:      dosing,
	}
}

// millivolts returns the noisy probe output after elapsed time. The output
// starts in the neutral buffer and reaches the acid buffer after half a
// period.
func (m *Mock) millivolts(elapsed time.Duration) float64 {
	phase := 0.0
	if m.cfg.Period > 0 {
		phase = 2 * math.Pi * elapsed.Seconds() / m.cfg.Period.Seconds()
	}
	swing := (1 - math.Cos(phase)) / 2
	mv := m.cfg.NeutralMV + (m.cfg.AcidMV-m.cfg.NeutralMV)*swing

	noise := (math.Sin(float64(elapsed.Nanoseconds())*0.001) +
		math.Cos(float64(elapsed.Nanoseconds())*0.0013)) *
		m.cfg.NoiseMV * 0.5
	return mv + noise
}

// counts converts millivolts to clamped ADC counts.
func (m *Mock) counts(mv float64) uint16 {
	full := float64(uint32(1)<<m.probe.Resolution - 1)
	val := mv / m.probe.VRefMV * full
	if val < 0 {
		val = 0
	} else if val > full {
		val = full
	}
	return uint16(val + 0.5)
}
