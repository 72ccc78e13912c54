package monitor

import (
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/gophctl/pkg/config"
)

var _ PHMonitor = (*Monitor)(nil)

// Reading is a single estimated pH value together with the probe values it
// was computed from.
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	PH          float32   `json:"ph"`
	Millivolts  float32   `json:"mv"`
	Temperature float32   `json:"temperature"`
	Dosing      bool      `json:"dosing"`

	// Window summary at the time of the reading, filled in by the caller
	// that added it.
	Drift  float32 `json:"drift"`
	Stable bool    `json:"stable"`
}

// Dose is a period during which the dosing pump was running.
type Dose struct {
	StartIndex int       // Start reading index in buffer
	EndIndex   int       // End reading index in buffer (updated while the pump runs)
	StartTime  time.Time
	EndTime    time.Time
	StartPH    float32 // pH when the pump started
	EndPH      float32 // pH at the last reading of the dose, or right after it stopped
	Active     bool
}

// Stats summarizes the readings within the window.
type Stats struct {
	Count int
	Mean  float32
	Min   float32
	Max   float32
	Drift float32 // pH per minute between the first and last reading
}

// PHMonitor keeps a time window of readings and tracks drift and dosing.
type PHMonitor interface {
	Readings() []Reading // Current readings (ordered first to last)
	Drifts() []float32   // pH per minute, n-1 drifts for n readings
	Doses() []Dose
	Stats() Stats
	Stable() bool
	OnUpdate(func(readings []Reading, drifts []float32, doses []Dose))
}

// Monitor implements PHMonitor.
//
// Drifts correspond exactly to reading pairs: drift[i] is the change from
// reading[i] to reading[i+1]. Removal is based on timestamp, not count.
type Monitor struct {
	readings []Reading
	drifts   []float32
	doses    []Dose

	mu sync.RWMutex

	callbacks []func(readings []Reading, drifts []float32, doses []Dose)
	cbMu      sync.RWMutex

	windowDuration time.Duration
	stableDrift    float32
}

// New creates a new Monitor.
func New(cfg *config.MonitorConfig) *Monitor {
	if cfg == nil {
		cfg = &config.Default().Monitor
	}
	return &Monitor{
		readings:       make([]Reading, 0),
		drifts:         make([]float32, 0),
		doses:          make([]Dose, 0),
		windowDuration: time.Duration(cfg.WindowSeconds * float64(time.Second)),
		stableDrift:    float32(cfg.StableDrift),
	}
}

// Add appends a reading and notifies the callbacks.
func (m *Monitor) Add(r Reading) {
	m.mu.Lock()
	m.add(r)
	m.mu.Unlock()

	m.notifyCallbacks()
}

func (m *Monitor) add(r Reading) {
	m.readings = append(m.readings, r)

	cutoffTime := r.Timestamp.Add(-m.windowDuration)
	cutoffIndex := 0
	for i, reading := range m.readings {
		if reading.Timestamp.After(cutoffTime) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex > 0 {
		m.readings = m.readings[cutoffIndex:]
		if cutoffIndex <= len(m.drifts) {
			m.drifts = m.drifts[cutoffIndex:]
		} else {
			m.drifts = m.drifts[:0]
		}

		valid := m.doses[:0]
		for _, d := range m.doses {
			d.StartIndex -= cutoffIndex
			d.EndIndex -= cutoffIndex
			if d.EndIndex < 0 {
				continue
			}
			d.StartIndex = max(d.StartIndex, 0)
			valid = append(valid, d)
		}
		m.doses = valid
	}

	if len(m.readings) >= 2 {
		last := len(m.readings) - 1
		prev := m.readings[last-1]
		dt := r.Timestamp.Sub(prev.Timestamp).Minutes()
		var drift float32
		if dt > 0 {
			drift = (r.PH - prev.PH) / float32(dt)
		}
		m.drifts = append(m.drifts, drift)
		if len(m.drifts) > len(m.readings)-1 {
			m.drifts = m.drifts[1:]
		}
	}

	m.updateDoses()
}

// updateDoses follows the dosing flag of the latest reading.
func (m *Monitor) updateDoses() {
	idx := len(m.readings) - 1
	r := m.readings[idx]

	var active *Dose
	if n := len(m.doses); n > 0 && m.doses[n-1].Active {
		active = &m.doses[n-1]
	}

	switch {
	case r.Dosing && active == nil:
		m.doses = append(m.doses, Dose{
			StartIndex: idx,
			EndIndex:   idx,
			StartTime:  r.Timestamp,
			EndTime:    r.Timestamp,
			StartPH:    r.PH,
			EndPH:      r.PH,
			Active:     true,
		})
	case active != nil:
		active.EndIndex = idx
		active.EndTime = r.Timestamp
		active.EndPH = r.PH
		active.Active = r.Dosing
	}
}

// Readings returns a copy of the current readings buffer.
func (m *Monitor) Readings() []Reading {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Reading, len(m.readings))
	copy(result, m.readings)
	return result
}

// Drifts returns a copy of the current drift buffer.
func (m *Monitor) Drifts() []float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]float32, len(m.drifts))
	copy(result, m.drifts)
	return result
}

// Doses returns a copy of the doses within the window.
func (m *Monitor) Doses() []Dose {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Dose, len(m.doses))
	copy(result, m.doses)
	return result
}

// Stats summarizes the current window.
func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return summarize(m.readings)
}

// Stable reports whether the pH has settled: at least two readings and a
// window drift below the configured threshold.
func (m *Monitor) Stable() bool {
	st := m.Stats()
	return st.Count >= 2 && math32.Abs(st.Drift) < m.stableDrift
}

func summarize(readings []Reading) Stats {
	if len(readings) == 0 {
		return Stats{}
	}

	st := Stats{
		Count: len(readings),
		Min:   math32.Inf(1),
		Max:   math32.Inf(-1),
	}
	var sum float32
	for _, r := range readings {
		sum += r.PH
		st.Min = min(st.Min, r.PH)
		st.Max = max(st.Max, r.PH)
	}
	st.Mean = sum / float32(len(readings))

	first, last := readings[0], readings[len(readings)-1]
	if dt := last.Timestamp.Sub(first.Timestamp).Minutes(); dt > 0 {
		st.Drift = (last.PH - first.PH) / float32(dt)
	}
	return st
}

// OnUpdate registers a callback invoked after each reading.
// The callback should copy data quickly and return as fast as possible.
func (m *Monitor) OnUpdate(callback func(readings []Reading, drifts []float32, doses []Dose)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

func (m *Monitor) notifyCallbacks() {
	readings := m.Readings()
	drifts := m.Drifts()
	doses := m.Doses()

	m.cbMu.RLock()
	callbacks := make([]func([]Reading, []float32, []Dose), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(readings, drifts, doses)
		}
	}
}
