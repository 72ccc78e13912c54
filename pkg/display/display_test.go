package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "Calibration Mode", 20, []string{"Calibration Mode"}},
		{"breaks at space", "Move to the next solution", 12, []string{"Move to the", "next", "solution"}},
		{"long word", "ABCDEFGHIJ", 4, []string{"ABCD", "EFGH", "IJ"}},
		{"collapses spaces", "a   b", 10, []string{"a b"}},
		{"empty", "", 10, nil},
		{"no width", "as is", 0, []string{"as is"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.width))
		})
	}
}

func TestWrap_RowsNeverExceedWidth(t *testing.T) {
	text := "Please insert the probe to the 4.0 or 7.0 standard buffer solution, and press 'SET'"
	for _, row := range Wrap(text, 20) {
		assert.LessOrEqual(t, len([]rune(row)), 20, row)
	}
}

func TestText_Render(t *testing.T) {
	var buf bytes.Buffer
	d := NewText(&buf, 10)

	err := d.Render(Intent{
		Screen: "menu",
		Lines: []Line{
			{Text: "Flow", Selected: true},
			{Text: "Amount"},
			{Text: "ph", Size: Large},
			{},
		},
	})
	require.NoError(t, err)

	want := strings.Join([]string{
		"+----------+",
		"|> Flow    |",
		"|Amount    |",
		"|PH        |",
		"|          |",
		"+----------+",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestText_DefaultWidth(t *testing.T) {
	for _, width := range []int{0, -3} {
		var buf bytes.Buffer
		d := NewText(&buf, width)
		require.NoError(t, d.Render(Intent{Screen: "home", Lines: []Line{{Text: "pH"}}}))

		first := strings.SplitN(buf.String(), "\n", 2)[0]
		assert.Equal(t, "+"+strings.Repeat("-", DefaultWidth)+"+", first, "width %d", width)
	}
}

func TestIntent(t *testing.T) {
	assert.True(t, Intent{}.IsZero())
	i := Intent{Screen: "home", Lines: []Line{{Text: "a"}, {Text: "b"}}}
	assert.False(t, i.IsZero())
	assert.Equal(t, "a\nb", i.Text())
}

func TestMulti(t *testing.T) {
	var got []string
	boom := errors.New("boom")
	d := Multi(
		Func(func(i Intent) error { got = append(got, "a:"+i.Screen); return boom }),
		Func(func(i Intent) error { got = append(got, "b:"+i.Screen); return nil }),
	)

	err := d.Render(Intent{Screen: "x"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a:x", "b:x"}, got)
	assert.NoError(t, Discard.Render(Intent{}))
}

func TestRows(t *testing.T) {
	i := Intent{Lines: []Line{
		{Text: "Set pH Target: ", Size: Normal},
		{},
		{Text: "6.30", Size: Large},
		{Text: "Wait time", Selected: true},
		{Text: "   "},
	}}

	assert.Equal(t, []Row{
		{Text: "Set pH"},
		{Text: "Target:"},
		{Text: ""},
		{Text: "6.30", Large: true},
		{Text: "> Wait"},
		{Text: "time"},
		{Text: ""},
	}, Rows(i, 8))
}
