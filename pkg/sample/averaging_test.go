package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gophctl/pkg/probe"
)

func TestNewAveragingConverter_MovingAverage(t *testing.T) {
	converter := NewAveragingConverter(unityProbe(), 3, 10)

	in := make(chan probe.RawSample, 10)
	out := converter(in)

	now := time.Now()
	for i := 0; i < 5; i++ {
		in <- probe.RawSample{
			Timestamp:   now.Add(time.Duration(i) * time.Millisecond),
			Reading:     uint16(1000 + i*100),
			Temperature: float32(20 + i),
			Dosing:      i == 4,
		}
	}
	close(in)

	var samples []Sample
	for s := range out {
		samples = append(samples, s)
	}

	require.Len(t, samples, 5, "One averaged sample per input")
	want := []float32{1000, 1050, 1100, 1200, 1300}
	for i, s := range samples {
		assert.InDelta(t, want[i], s.Millivolts, 1e-3, "sample %d", i)
		assert.Equal(t, now.Add(time.Duration(i)*time.Millisecond), s.Timestamp)
		assert.Equal(t, float32(20+i), s.Temperature)
	}
	assert.True(t, samples[4].Dosing)
}

func TestNewAveragingConverter_InvalidWindowSize(t *testing.T) {
	converter := NewAveragingConverter(unityProbe(), 0, 0)

	in := make(chan probe.RawSample, 2)
	out := converter(in)

	in <- probe.RawSample{Reading: 1000}
	in <- probe.RawSample{Reading: 2000}
	close(in)

	var samples []Sample
	for s := range out {
		samples = append(samples, s)
	}

	require.Len(t, samples, 2)
	assert.InDelta(t, 1000, samples[0].Millivolts, 1e-3)
	assert.InDelta(t, 2000, samples[1].Millivolts, 1e-3, "window of one passes readings through")
}

func TestNewAveragingConverter_EmptyChannel(t *testing.T) {
	converter := NewAveragingConverter(unityProbe(), 5, 10)

	in := make(chan probe.RawSample)
	out := converter(in)
	close(in)

	_, ok := <-out
	assert.False(t, ok, "Output channel should be closed")
}

func TestAverageAndConvertSamples(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		samples []probe.RawSample
		want    float32
	}{
		{
			name: "empty",
			want: 0,
		},
		{
			name:    "single",
			samples: []probe.RawSample{{Timestamp: now, Reading: 1234}},
			want:    1234,
		},
		{
			name: "rounds to nearest count",
			samples: []probe.RawSample{
				{Timestamp: now, Reading: 1000},
				{Timestamp: now, Reading: 1001},
			},
			want: 1001,
		},
		{
			name: "three readings",
			samples: []probe.RawSample{
				{Timestamp: now, Reading: 1500},
				{Timestamp: now, Reading: 1600},
				{Timestamp: now, Reading: 1800},
			},
			want: 1633,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := averageAndConvertSamples(tt.samples, unityProbe())
			assert.InDelta(t, tt.want, got.Millivolts, 1e-3)
		})
	}
}
