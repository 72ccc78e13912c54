package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gophctl/pkg/display"
	"github.com/itohio/gophctl/pkg/eeprom"
)

type recorder struct {
	intents []display.Intent
}

func (r *recorder) Render(i display.Intent) error {
	r.intents = append(r.intents, i)
	return nil
}

func (r *recorder) last() display.Intent {
	if len(r.intents) == 0 {
		return display.Intent{}
	}
	return r.intents[len(r.intents)-1]
}

type failingDevice struct {
	*eeprom.Memory
	fail bool
}

func (d *failingDevice) Commit() error {
	if d.fail {
		return errors.New("flash worn out")
	}
	return d.Memory.Commit()
}

func newTestController(t *testing.T, dev eeprom.Device) (*Controller, *recorder, *[]time.Duration) {
	t.Helper()
	rec := &recorder{}
	c, err := New(eeprom.New(dev), rec)
	require.NoError(t, err)
	c.SetLogger(zerolog.Nop())

	var holds []time.Duration
	c.SetSleep(func(d time.Duration) { holds = append(holds, d) })
	return c, rec, &holds
}

func TestNew_HealsVirginStore(t *testing.T) {
	mem := eeprom.NewMemory(0)
	c, _, _ := newTestController(t, mem)

	assert.Equal(t, Defaults(), c.Session())

	// Every parameter was written back exactly once.
	assert.Equal(t, len(eeprom.Layout()), mem.Commits())
	for _, e := range eeprom.New(mem).Dump() {
		assert.True(t, e.Valid, e.Param.Name)
	}

	// A second boot finds a healthy store and writes nothing.
	_, _, _ = newTestController(t, mem)
	assert.Equal(t, len(eeprom.Layout()), mem.Commits())
}

func TestNew_LoadsStoredValues(t *testing.T) {
	mem := eeprom.NewMemory(0)
	store := eeprom.New(mem)
	require.NoError(t, store.SetFloat32(eeprom.TargetPH, 7.2))
	require.NoError(t, store.SetFloat32(eeprom.BufferBand, 0.05))
	require.NoError(t, store.SetInt32(eeprom.PumpSpeed, 200))
	require.NoError(t, store.SetFlag(eeprom.Units, true))

	c, _, _ := newTestController(t, mem)
	s := c.Session()
	assert.Equal(t, float32(7.2), s.TargetPH)
	assert.Equal(t, float32(0.05), s.BufferBand)
	assert.Equal(t, int32(200), s.PumpSpeed)
	assert.True(t, s.Fahrenheit)
	assert.Equal(t, DefaultFlowRate, s.FlowRate)
}

func TestController_PersistsOnlyOnCommit(t *testing.T) {
	mem := eeprom.NewMemory(0)
	c, rec, holds := newTestController(t, mem)
	commits := mem.Commits()

	for _, token := range []string{"target", "pt", "pt", "pt"} {
		require.NoError(t, c.Handle(token, idle))
	}
	assert.Equal(t, commits, mem.Commits(), "increments must not write")
	assert.Equal(t, "6.60", rec.last().Lines[2].Text)

	require.NoError(t, c.Handle("ST", idle))
	assert.Equal(t, commits+1, mem.Commits())
	assert.Equal(t, []time.Duration{CalibrationHold}, *holds)

	// Survives a power cycle.
	mem.PowerCycle()
	v, ok := eeprom.New(mem).Float32(eeprom.TargetPH)
	assert.True(t, ok)
	assert.InDelta(t, 6.6, v, 1e-4)
}

func TestController_PHCalibration(t *testing.T) {
	mem := eeprom.NewMemory(0)
	c, rec, _ := newTestController(t, mem)

	require.NoError(t, c.Handle("ENTERPH", idle))
	assert.Equal(t, ScreenCalibration, rec.last().Screen)

	require.NoError(t, c.Handle("CALPH", Input{Voltage: 1505, Temperature: 25}))
	require.NoError(t, c.Handle("CALPH", Input{Voltage: 2040, Temperature: 25}))
	require.NoError(t, c.Handle("EXITPH", idle))
	assert.Equal(t, ScreenCalibrationDone, rec.last().Screen)

	mem.PowerCycle()
	store := eeprom.New(mem)
	n, _ := store.Float32(eeprom.NeutralVoltage)
	a, _ := store.Float32(eeprom.AcidVoltage)
	assert.Equal(t, float32(1505), n)
	assert.Equal(t, float32(2040), a)

	// The new anchors drive the estimator.
	v, err := c.ReadPH(Input{Voltage: 2040, Temperature: 25})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 0.01)
	assert.Equal(t, ScreenHome, rec.last().Screen)
}

func TestController_ToggleUnitsPersistsImmediately(t *testing.T) {
	mem := eeprom.NewMemory(0)
	c, _, _ := newTestController(t, mem)

	require.NoError(t, c.Handle("TT", idle))
	mem.PowerCycle()
	units, ok := eeprom.New(mem).Flag(eeprom.Units)
	assert.True(t, ok)
	assert.True(t, units)
}

func TestController_UnknownCommand(t *testing.T) {
	c, rec, _ := newTestController(t, eeprom.NewMemory(0))
	require.NoError(t, c.Handle("HELLO", idle))
	assert.Empty(t, rec.intents)

	require.NoError(t, c.Handle("1GP", idle))
	n := len(rec.intents)
	require.NoError(t, c.Handle("HELLO", idle))
	assert.Len(t, rec.intents, n, "diagnostic leaves the screen alone")
}

func TestController_CommitFailureKeepsSession(t *testing.T) {
	dev := &failingDevice{Memory: eeprom.NewMemory(0)}
	c, _, _ := newTestController(t, dev)

	require.NoError(t, c.Handle("BUFF", idle))
	require.NoError(t, c.Handle("PBUFF", idle))
	dev.fail = true

	err := c.Handle("SBUFF", idle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), eeprom.BufferBand.Name)
	assert.InDelta(t, 0.11, c.Session().BufferBand, 1e-4)
	assert.False(t, c.Session().Active)
}

func TestController_ReadPHHiddenDuringSession(t *testing.T) {
	c, rec, _ := newTestController(t, eeprom.NewMemory(0))
	require.NoError(t, c.Handle("FRATE", idle))
	n := len(rec.intents)

	v, err := c.ReadPH(Input{Voltage: 1500, Temperature: 25})
	require.NoError(t, err)
	assert.InDelta(t, 7.0, v, 0.01)
	assert.Len(t, rec.intents, n)
}
