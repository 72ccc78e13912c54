package main

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"github.com/itohio/gophctl/pkg/monitor"
)

// updateInterval limits trend redraws to ~60 FPS.
const updateInterval = 16 * time.Millisecond

// throttle lets at most one call through per interval.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func (t *throttle) allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

// registerTrendUpdates pushes monitor updates to the trend widget on the
// main Fyne thread. The widget downsamples internally, so full data is passed.
func registerTrendUpdates(state *appState) {
	limit := &throttle{interval: updateInterval}
	state.monitor.OnUpdate(func(readings []monitor.Reading, _ []float32, doses []monitor.Dose) {
		if !limit.allow(time.Now()) {
			return
		}
		fyne.Do(func() {
			state.trend.UpdateData(readings, doses)
		})
	})
}
