package panel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/gophctl/pkg/monitor"
)

func TestPHRange(t *testing.T) {
	now := time.Now()
	readings := []monitor.Reading{
		{Timestamp: now, PH: 6.0},
		{Timestamp: now.Add(time.Second), PH: 6.5},
	}

	tests := []struct {
		name     string
		readings []monitor.Reading
		target   float32
		band     float32
		lo, hi   float32
	}{
		{name: "no data", lo: 0, hi: 14},
		{name: "readings and target", readings: readings, target: 6.3, band: 0.1, lo: 5.95, hi: 6.55},
		{name: "band outside readings", readings: readings, target: 6.6, band: 0.2, lo: 5.92, hi: 6.88},
		{name: "target only", target: 6.3, band: 0.1, lo: 6.18, hi: 6.42},
		{name: "flat reading", readings: readings[:1], lo: 5.94, hi: 6.06},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := phRange(tt.readings, tt.target, tt.band)
			assert.InDelta(t, tt.lo, lo, 1e-4)
			assert.InDelta(t, tt.hi, hi, 1e-4)
		})
	}
}

func TestTimeRange(t *testing.T) {
	now := time.Now()

	lo, hi := timeRange(nil, time.Minute, now)
	assert.Equal(t, now, lo)
	assert.Equal(t, now.Add(time.Minute), hi)

	short := []monitor.Reading{{Timestamp: now}, {Timestamp: now.Add(10 * time.Second)}}
	lo, hi = timeRange(short, time.Minute, now)
	assert.Equal(t, now, lo)
	assert.Equal(t, now.Add(time.Minute), hi, "range is never shorter than the window")

	long := []monitor.Reading{{Timestamp: now}, {Timestamp: now.Add(2 * time.Minute)}}
	lo, hi = timeRange(long, time.Minute, now)
	assert.Equal(t, now, lo)
	assert.Equal(t, now.Add(2*time.Minute), hi)
}

func TestPlotMapping(t *testing.T) {
	now := time.Now()
	p := plot{x: 10, y: 20, w: 100, h: 50, yMin: 6, yMax: 8, xMin: now, xMax: now.Add(10 * time.Second)}

	assert.InDelta(t, 10, p.timeX(now), 1e-4)
	assert.InDelta(t, 60, p.timeX(now.Add(5*time.Second)), 1e-4)
	assert.InDelta(t, 70, p.valueY(6), 1e-4)
	assert.InDelta(t, 20, p.valueY(8), 1e-4)
	assert.InDelta(t, 45, p.valueY(7), 1e-4)

	p.xMax = now
	assert.InDelta(t, 10, p.timeX(now.Add(time.Second)), 1e-4, "empty time span maps to the left edge")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "6.30", formatPH(6.3))
	assert.Equal(t, "14.00", formatPH(14))
	assert.Equal(t, "0.50s", formatTime(500*time.Millisecond))
	assert.Equal(t, "12s", formatTime(12*time.Second))
}
