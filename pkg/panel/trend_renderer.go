package panel

import (
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/itohio/gophctl/pkg/monitor"
)

var (
	gridColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor  = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	phColor     = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	targetColor = color.RGBA{R: 100, G: 200, B: 255, A: 255}
	bandColor   = color.RGBA{R: 100, G: 200, B: 255, A: 40}
	doseColor   = color.RGBA{R: 0, G: 100, B: 200, A: 255}
)

// trendRenderer renders the trend widget.
type trendRenderer struct {
	trend *TrendWidget

	background *canvas.Rectangle
	objects    []fyne.CanvasObject

	lastSize fyne.Size
}

// plot is the drawing area and the value ranges mapped onto it.
type plot struct {
	x, y, w, h float32
	yMin, yMax float32
	xMin, xMax time.Time
}

func (p plot) pos(ts time.Time, ph float32) fyne.Position {
	return fyne.NewPos(p.timeX(ts), p.valueY(ph))
}

func (p plot) timeX(ts time.Time) float32 {
	span := p.xMax.Sub(p.xMin).Seconds()
	if span <= 0 {
		return p.x
	}
	return p.x + float32(ts.Sub(p.xMin).Seconds()/span)*p.w
}

func (p plot) valueY(v float32) float32 {
	return p.y + p.h - (v-p.yMin)/(p.yMax-p.yMin)*p.h
}

func (r *trendRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 240)
}

func (r *trendRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	if r.lastSize != size {
		r.lastSize = size
		r.trend.BaseWidget.Refresh()
	}
}

func (r *trendRenderer) Refresh() {
	t := r.trend
	t.mu.RLock()
	readings := t.displayReadings
	doses := t.doses
	all := t.readings
	target := t.target
	band := t.bufferBand
	p := plot{yMin: t.yMin, yMax: t.yMax, xMin: t.xMin, xMax: t.xMax}
	t.mu.RUnlock()

	size := t.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.background}

	const marginLeft, marginRight, marginTop, marginBottom = 50, 20, 20, 30
	p.x, p.y = marginLeft, marginTop
	p.w = size.Width - marginLeft - marginRight
	p.h = size.Height - marginTop - marginBottom

	r.drawGrid(p)
	if target > 0 {
		r.drawTarget(p, target, band)
	}
	r.drawDoses(p, doses, all)
	r.drawReadings(p, readings)
}

func (r *trendRenderer) drawGrid(p plot) {
	const rows, cols = 7, 10
	for i := range rows + 1 {
		y := p.y + float32(i)*p.h/rows
		r.line(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))

		value := p.yMax - float32(i)*(p.yMax-p.yMin)/rows
		r.text(formatPH(value), fyne.TextAlignTrailing, fyne.NewPos(p.x-5, y-6))
	}

	span := p.xMax.Sub(p.xMin)
	for i := range cols + 1 {
		x := p.x + float32(i)*p.w/cols
		r.line(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))

		offset := span * time.Duration(i) / cols
		r.text(formatTime(offset), fyne.TextAlignCenter, fyne.NewPos(x-20, p.y+p.h+5))
	}
}

func (r *trendRenderer) drawTarget(p plot, target, band float32) {
	if band > 0 {
		top := p.valueY(target + band)
		rect := canvas.NewRectangle(bandColor)
		rect.Move(fyne.NewPos(p.x, top))
		rect.Resize(fyne.NewSize(p.w, p.valueY(target-band)-top))
		r.objects = append(r.objects, rect)
	}
	y := p.valueY(target)
	r.line(targetColor, 1.5, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))
}

// drawDoses marks each dosing period with vertical lines at its ends.
func (r *trendRenderer) drawDoses(p plot, doses []monitor.Dose, readings []monitor.Reading) {
	for _, d := range doses {
		if d.StartIndex < 0 || d.EndIndex >= len(readings) {
			continue
		}
		for _, ts := range []time.Time{d.StartTime, d.EndTime} {
			x := p.timeX(ts)
			r.line(doseColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))
		}
	}
}

func (r *trendRenderer) drawReadings(p plot, readings []monitor.Reading) {
	for i := 1; i < len(readings); i++ {
		prev, cur := readings[i-1], readings[i]
		r.line(phColor, 1.5, p.pos(prev.Timestamp, prev.PH), p.pos(cur.Timestamp, cur.PH))
	}
}

func (r *trendRenderer) line(c color.Color, width float32, from, to fyne.Position) {
	l := canvas.NewLine(c)
	l.Position1 = from
	l.Position2 = to
	l.StrokeWidth = width
	r.objects = append(r.objects, l)
}

func (r *trendRenderer) text(s string, align fyne.TextAlign, at fyne.Position) {
	t := canvas.NewText(s, labelColor)
	t.TextSize = 10
	t.Alignment = align
	t.Move(at)
	r.objects = append(r.objects, t)
}

func (r *trendRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *trendRenderer) Destroy() {}

func formatPH(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 2, 32)
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 0, 64) + "s"
}
