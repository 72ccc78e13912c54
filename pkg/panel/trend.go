package panel

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gophctl/pkg/monitor"
	"github.com/itohio/gophctl/pkg/sample"
)

// TrendWidget plots recent pH readings together with the target, the
// buffer band around it and the dosing periods.
type TrendWidget struct {
	widget.BaseWidget

	window time.Duration

	// Data (protected by mu)
	mu         sync.RWMutex
	readings   []monitor.Reading
	doses      []monitor.Dose
	target     float32
	bufferBand float32

	// Display buffer (reused for downsampling)
	displayReadings []monitor.Reading

	yMin, yMax float32
	xMin, xMax time.Time

	maxDisplayPoints int
}

// NewTrend creates a new TrendWidget showing at least window of history.
func NewTrend(window time.Duration) *TrendWidget {
	t := &TrendWidget{
		window:           window,
		displayReadings:  make([]monitor.Reading, 0, 1000),
		maxDisplayPoints: 1000,
	}
	t.ExtendBaseWidget(t)
	t.updateAutoScale()
	return t
}

// UpdateData replaces the plotted readings.
// This should be called from the monitor callback using fyne.Do().
func (t *TrendWidget) UpdateData(readings []monitor.Reading, doses []monitor.Dose) {
	t.mu.Lock()
	t.readings = readings
	t.displayReadings = sample.Downsample(t.displayReadings, readings, t.maxDisplayPoints)
	t.doses = doses
	t.updateAutoScale()
	t.mu.Unlock()

	t.Refresh()
}

// SetTarget moves the target line and the band drawn around it.
func (t *TrendWidget) SetTarget(target, bufferBand float32) {
	t.mu.Lock()
	t.target = target
	t.bufferBand = bufferBand
	t.updateAutoScale()
	t.mu.Unlock()

	t.Refresh()
}

func (t *TrendWidget) updateAutoScale() {
	t.yMin, t.yMax = phRange(t.displayReadings, t.target, t.bufferBand)
	t.xMin, t.xMax = timeRange(t.displayReadings, t.window, time.Now())
}

// phRange returns the Y range covering readings and the target band with a
// 10% margin. Without data it falls back to the whole pH scale.
func phRange(readings []monitor.Reading, target, band float32) (float32, float32) {
	if len(readings) == 0 && target == 0 {
		return 0, 14
	}

	lo, hi := float32(14), float32(0)
	for _, r := range readings {
		lo = min(lo, r.PH)
		hi = max(hi, r.PH)
	}
	if target > 0 {
		lo = min(lo, target-band)
		hi = max(hi, target+band)
	}

	span := hi - lo
	if span < 0.1 {
		mid := (hi + lo) / 2
		lo, hi, span = mid-0.05, mid+0.05, 0.1
	}
	margin := span * 0.1
	return lo - margin, hi + margin
}

// timeRange returns the X range of readings, never shorter than window.
func timeRange(readings []monitor.Reading, window time.Duration, now time.Time) (time.Time, time.Time) {
	if len(readings) == 0 {
		return now, now.Add(window)
	}
	xMin := readings[0].Timestamp
	xMax := readings[len(readings)-1].Timestamp
	if xMax.Sub(xMin) < window {
		xMax = xMin.Add(window)
	}
	return xMin, xMax
}

// CreateRenderer creates the widget renderer.
func (t *TrendWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &trendRenderer{
		trend:      t,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}
