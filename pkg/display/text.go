package display

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// DefaultWidth matches a 20 column character LCD.
const DefaultWidth = 20

var _ Display = (*Text)(nil)

// Text draws intents as framed text blocks, one per render.
type Text struct {
	mu    sync.Mutex
	w     io.Writer
	width int
}

// NewText creates a text renderer. A width below one selects DefaultWidth.
func NewText(w io.Writer, width int) *Text {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Text{w: w, width: width}
}

// Render writes the intent. Long lines are wrapped, selected rows carry a
// "> " marker and large lines are upper-cased.
func (t *Text) Render(i Intent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bw := bufio.NewWriter(t.w)
	border := "+" + strings.Repeat("-", t.width) + "+"
	fmt.Fprintln(bw, border)
	for _, row := range Rows(i, t.width) {
		fmt.Fprintf(bw, "|%-*s|\n", t.width, row.Text)
	}
	fmt.Fprintln(bw, border)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to render %s: %w", i.Screen, err)
	}
	return nil
}
