// Package display describes what the controller wants on screen and
// renders it on simple text devices.
package display

import "strings"

// Size is the emphasis level of a line.
type Size uint8

const (
	Normal Size = 1
	Large  Size = 2
)

// Line is one row of text.
type Line struct {
	Text     string `json:"text"`
	Size     Size   `json:"size,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

// Intent is a full screen.
type Intent struct {
	Screen string `json:"screen"`
	Lines  []Line `json:"lines"`
}

// IsZero reports whether the intent carries nothing to draw.
func (i Intent) IsZero() bool {
	return i.Screen == "" && len(i.Lines) == 0
}

// Text joins all lines with newlines.
func (i Intent) Text() string {
	parts := make([]string, len(i.Lines))
	for n, l := range i.Lines {
		parts[n] = l.Text
	}
	return strings.Join(parts, "\n")
}

// Display renders intents.
type Display interface {
	Render(Intent) error
}

// Func adapts a function to Display.
type Func func(Intent) error

func (f Func) Render(i Intent) error {
	return f(i)
}

// Discard drops every intent.
var Discard Display = Func(func(Intent) error { return nil })

// Multi renders on every display in order and returns the first error.
func Multi(displays ...Display) Display {
	return Func(func(i Intent) error {
		var first error
		for _, d := range displays {
			if err := d.Render(i); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

// Wrap splits text into rows of at most width runes, breaking at spaces
// where possible.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var rows []string
	var row []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			if len(row) > 0 {
				rows = append(rows, string(row))
				row = row[:0]
			}
			rows = append(rows, string(w[:width]))
			w = w[width:]
		}
		if len(w) == 0 {
			continue
		}
		switch {
		case len(row) == 0:
			row = append(row, w...)
		case len(row)+1+len(w) <= width:
			row = append(row, ' ')
			row = append(row, w...)
		default:
			rows = append(rows, string(row))
			row = append(row[:0], w...)
		}
	}
	if len(row) > 0 {
		rows = append(rows, string(row))
	}
	return rows
}

// Row is one wrapped line ready to be drawn.
type Row struct {
	Text  string
	Large bool
}

// Rows lays the intent out for a display width characters wide: selected
// lines get a "> " marker, large lines are upper-cased and long lines wrap.
// Blank lines are kept as empty rows.
func Rows(i Intent, width int) []Row {
	var rows []Row
	for _, l := range i.Lines {
		text := l.Text
		if l.Selected {
			text = "> " + text
		}
		large := l.Size >= Large
		if large {
			text = strings.ToUpper(text)
		}
		wrapped := Wrap(text, width)
		if len(wrapped) == 0 {
			wrapped = []string{""}
		}
		for _, w := range wrapped {
			rows = append(rows, Row{Text: w, Large: large})
		}
	}
	return rows
}
