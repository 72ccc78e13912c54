package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    RawSample
		wantErr bool
	}{
		{
			name: "valid line - idle",
			line: "1234567890123,1861,24.5,0",
			want: RawSample{
				Timestamp:   time.Unix(0, 1234567890123*1000),
				Reading:     1861,
				Temperature: 24.5,
				Dosing:      false,
			},
		},
		{
			name: "valid line - dosing",
			line: "1234567890123,2522,77.0,1",
			want: RawSample{
				Timestamp:   time.Unix(0, 1234567890123*1000),
				Reading:     2522,
				Temperature: 77,
				Dosing:      true,
			},
		},
		{
			name: "valid line - negative temperature",
			line: "1,0,-3.25,0",
			want: RawSample{
				Timestamp:   time.Unix(0, 1000),
				Reading:     0,
				Temperature: -3.25,
			},
		},
		{
			name:    "invalid - wrong number of fields",
			line:    "1234567890123,2048,24.5",
			wantErr: true,
		},
		{
			name:    "invalid - too many fields",
			line:    "1234567890123,2048,24.5,0,extra",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric timestamp",
			line:    "abc,2048,24.5,0",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric reading",
			line:    "1234567890123,abc,24.5,0",
			wantErr: true,
		},
		{
			name:    "invalid - reading out of range",
			line:    "1234567890123,70000,24.5,0",
			wantErr: true,
		},
		{
			name:    "invalid - temperature",
			line:    "1234567890123,2048,warm,0",
			wantErr: true,
		},
		{
			name:    "invalid - dosing flag",
			line:    "1234567890123,2048,24.5,2",
			wantErr: true,
		},
		{
			name:    "command echo",
			line:    "CALPH",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want.Timestamp.UnixNano(), got.Timestamp.UnixNano())
				assert.Equal(t, tt.want.Reading, got.Reading)
				assert.Equal(t, tt.want.Temperature, got.Temperature)
				assert.Equal(t, tt.want.Dosing, got.Dosing)
			}
		})
	}
}

func TestNew(t *testing.T) {
	dev := New("COM3", 57600, 10)
	assert.NotNil(t, dev)
	assert.Equal(t, "COM3", dev.port)
	assert.Equal(t, 57600, dev.baudRate)
	assert.Equal(t, 10, dev.bufSize)
	assert.NotNil(t, dev.samples)
	assert.False(t, dev.IsConnected())
}

func TestNew_Defaults(t *testing.T) {
	dev := New("COM3", 0, 0)
	assert.Equal(t, DefaultBaudRate, dev.baudRate)
	assert.Equal(t, DefaultBufferSize, dev.bufSize)
	assert.Equal(t, DefaultBufferSize, cap(dev.samples))
}

func TestSerial_NotConnected(t *testing.T) {
	dev := New("COM3", 0, 0)
	assert.ErrorIs(t, dev.SetDosing(true), ErrNotConnected)
	assert.NoError(t, dev.Close())
}

func TestDosingCommand(t *testing.T) {
	assert.Equal(t, "D1\n", dosingCommand(true))
	assert.Equal(t, "D0\n", dosingCommand(false))
}
