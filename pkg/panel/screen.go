// Package panel contains fyne widgets for the desktop control panel.
package panel

import (
	"image/color"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gophctl/pkg/display"
)

var (
	lcdBackground = color.RGBA{R: 20, G: 60, B: 20, A: 255}
	lcdForeground = color.RGBA{R: 180, G: 255, B: 180, A: 255}
)

const (
	screenRows  = 4
	textSize    = 16
	largeFactor = 1.6
)

var _ display.Display = (*ScreenWidget)(nil)

// ScreenWidget mimics the controller's character display.
type ScreenWidget struct {
	widget.BaseWidget

	width int

	mu     sync.RWMutex
	intent display.Intent
}

// NewScreen creates a screen that wraps lines at width characters.
func NewScreen(width int) *ScreenWidget {
	if width <= 0 {
		width = display.DefaultWidth
	}
	s := &ScreenWidget{width: width}
	s.ExtendBaseWidget(s)
	return s
}

// Render stores the intent and schedules a redraw on the UI goroutine.
func (s *ScreenWidget) Render(intent display.Intent) error {
	s.mu.Lock()
	s.intent = intent
	s.mu.Unlock()

	fyne.Do(s.Refresh)
	return nil
}

// Intent returns the last rendered intent.
func (s *ScreenWidget) Intent() display.Intent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intent
}

// CreateRenderer creates the widget renderer.
func (s *ScreenWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &screenRenderer{
		screen:     s,
		background: canvas.NewRectangle(lcdBackground),
	}
	r.Refresh()
	return r
}

type screenRenderer struct {
	screen *ScreenWidget

	background *canvas.Rectangle
	texts      []*canvas.Text
	objects    []fyne.CanvasObject
}

func (r *screenRenderer) MinSize() fyne.Size {
	w := fyne.MeasureText(strings.Repeat("M", r.screen.width), textSize, fyne.TextStyle{Monospace: true})
	return fyne.NewSize(w.Width+20, w.Height*screenRows*largeFactor+20)
}

func (r *screenRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	y := float32(10)
	for _, t := range r.texts {
		t.Move(fyne.NewPos(10, y))
		y += t.MinSize().Height
	}
}

func (r *screenRenderer) Refresh() {
	r.texts = r.texts[:0]
	r.objects = []fyne.CanvasObject{r.background}

	for _, row := range display.Rows(r.screen.Intent(), r.screen.width) {
		t := canvas.NewText(row.Text, lcdForeground)
		t.TextStyle = fyne.TextStyle{Monospace: true}
		t.TextSize = textSize
		if row.Large {
			t.TextSize = textSize * largeFactor
			t.TextStyle.Bold = true
		}
		r.texts = append(r.texts, t)
		r.objects = append(r.objects, t)
	}

	r.Layout(r.screen.Size())
	canvas.Refresh(r.screen)
}

func (r *screenRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *screenRenderer) Destroy() {}
