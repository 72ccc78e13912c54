package station

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gophctl/pkg/command"
	"github.com/itohio/gophctl/pkg/config"
	"github.com/itohio/gophctl/pkg/controller"
	"github.com/itohio/gophctl/pkg/display"
	"github.com/itohio/gophctl/pkg/eeprom"
	"github.com/itohio/gophctl/pkg/monitor"
	"github.com/itohio/gophctl/pkg/probe"
	"github.com/itohio/gophctl/pkg/sample"
)

type fakeDevice struct {
	dosing []bool
	err    error
}

func (d *fakeDevice) Connect() error                  { return nil }
func (d *fakeDevice) Close() error                    { return nil }
func (d *fakeDevice) Samples() <-chan probe.RawSample { return nil }
func (d *fakeDevice) IsConnected() bool               { return true }
func (d *fakeDevice) SetDosing(on bool) error {
	if d.err != nil {
		return d.err
	}
	d.dosing = append(d.dosing, on)
	return nil
}

type recorder struct {
	intents []display.Intent
}

func (r *recorder) Render(i display.Intent) error {
	r.intents = append(r.intents, i)
	return nil
}

func newTestStation(t *testing.T) (*Station, *monitor.Monitor, *recorder) {
	t.Helper()
	rec := &recorder{}
	ctrl, err := controller.New(eeprom.New(eeprom.NewMemory(0)), rec)
	require.NoError(t, err)
	ctrl.SetLogger(zerolog.Nop())
	ctrl.SetSleep(func(time.Duration) {})

	mon := monitor.New(&config.MonitorConfig{WindowSeconds: 60, StableDrift: 0.02})
	s := New(ctrl, mon)
	s.SetLogger(zerolog.Nop())
	return s, mon, rec
}

func TestStation_Sample(t *testing.T) {
	s, mon, rec := newTestStation(t)

	var got []monitor.Reading
	s.OnReading(func(r monitor.Reading) { got = append(got, r) })

	now := time.Now()
	r, err := s.Sample(sample.Sample{Timestamp: now, Millivolts: 1500, Temperature: 25, Dosing: true})
	require.NoError(t, err)

	assert.InDelta(t, 7.0, r.PH, 0.01)
	assert.Equal(t, now, r.Timestamp)
	assert.True(t, r.Dosing)
	assert.Equal(t, []monitor.Reading{r}, got)
	assert.Equal(t, []monitor.Reading{r}, mon.Readings())
	require.NotEmpty(t, rec.intents)
	assert.Equal(t, controller.ScreenHome, rec.intents[len(rec.intents)-1].Screen)
}

func TestStation_SampleConvertsToSessionUnit(t *testing.T) {
	s, _, rec := newTestStation(t)

	now := time.Now()
	_, err := s.Sample(sample.Sample{Timestamp: now, Millivolts: 1500, Temperature: 25})
	require.NoError(t, err)
	require.NoError(t, s.Command("TT"))
	require.True(t, s.Session().Fahrenheit)

	r, err := s.Sample(sample.Sample{Timestamp: now.Add(time.Second), Millivolts: 1500, Temperature: 25})
	require.NoError(t, err)

	assert.InDelta(t, 7.0, r.PH, 1e-3)
	assert.Equal(t, float32(25), r.Temperature, "readings stay in Celsius")
	assert.InDelta(t, 77, s.Session().Temperature, 1e-3)
	home := rec.intents[len(rec.intents)-1]
	assert.Equal(t, controller.ScreenHome, home.Screen)
	assert.Equal(t, "Temperature: 77.0 F", home.Lines[0].Text)
}

func TestStation_SampleStability(t *testing.T) {
	s, _, _ := newTestStation(t)

	now := time.Now()
	r, err := s.Sample(sample.Sample{Timestamp: now, Millivolts: 1500, Temperature: 25})
	require.NoError(t, err)
	assert.False(t, r.Stable, "one reading is never stable")

	r, err = s.Sample(sample.Sample{Timestamp: now.Add(30 * time.Second), Millivolts: 1500, Temperature: 25})
	require.NoError(t, err)
	assert.True(t, r.Stable)
	assert.InDelta(t, 0, r.Drift, 1e-6)

	// 1440 mV reads about 0.34 pH higher than the first sample a minute earlier.
	r, err = s.Sample(sample.Sample{Timestamp: now.Add(time.Minute), Millivolts: 1440, Temperature: 25})
	require.NoError(t, err)
	assert.False(t, r.Stable)
	assert.Greater(t, r.Drift, float32(0.3))
}

func TestStation_CommandUsesLastSample(t *testing.T) {
	s, _, _ := newTestStation(t)

	var sessions []controller.Session
	s.OnSession(func(sess controller.Session) { sessions = append(sessions, sess) })

	_, err := s.Sample(sample.Sample{Timestamp: time.Now(), Millivolts: 1510, Temperature: 25})
	require.NoError(t, err)

	require.NoError(t, s.Command("ENTERPH"))
	require.NoError(t, s.Command("calph"))

	sess := s.Session()
	assert.True(t, sess.NeutralConfirmed)
	assert.Equal(t, float32(1510), sess.NeutralVoltage)
	require.Len(t, sessions, 2)
	assert.Equal(t, controller.GroupPH, sessions[0].Editing)
	assert.True(t, sessions[1].StepComplete)
}

func TestStation_Mode(t *testing.T) {
	s, _, _ := newTestStation(t)

	require.NoError(t, s.Mode(command.MenuBuffer))
	assert.True(t, s.Session().Active)

	require.NoError(t, s.Mode(command.Buffer))
	assert.Equal(t, controller.GroupBuffer, s.Session().Editing)
}

func TestStation_SetDosing(t *testing.T) {
	s, _, _ := newTestStation(t)

	assert.ErrorIs(t, s.SetDosing(true), probe.ErrNotConnected)

	dev := &fakeDevice{}
	s.Attach(dev)
	require.NoError(t, s.SetDosing(true))
	require.NoError(t, s.SetDosing(false))
	assert.Equal(t, []bool{true, false}, dev.dosing)

	dev.err = errors.New("pump stalled")
	err := s.SetDosing(true)
	assert.ErrorIs(t, err, dev.err)
	assert.Contains(t, err.Error(), "failed to set dosing")
}

func TestStation_Run(t *testing.T) {
	s, mon, _ := newTestStation(t)

	samples := make(chan sample.Sample, 3)
	now := time.Now()
	for i := 0; i < 3; i++ {
		samples <- sample.Sample{Timestamp: now.Add(time.Duration(i) * time.Second), Millivolts: 1500, Temperature: 25}
	}
	close(samples)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(context.Background(), samples)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the channel closed")
	}
	assert.Len(t, mon.Readings(), 3)
}

func TestStation_RunCommands(t *testing.T) {
	s, _, _ := newTestStation(t)

	tokens := make(chan string, 2)
	tokens <- "TARGET"
	tokens <- "PT"
	close(tokens)

	s.RunCommands(context.Background(), tokens)

	sess := s.Session()
	assert.Equal(t, controller.GroupTarget, sess.Editing)
	assert.InDelta(t, controller.DefaultTargetPH+0.1, sess.TargetPH, 1e-4)
}

func TestStation_RunCancel(t *testing.T) {
	s, _, _ := newTestStation(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Run(ctx, make(chan sample.Sample))
	s.RunCommands(ctx, make(chan string))
}

func TestOpenStore(t *testing.T) {
	store, closeStore, err := OpenStore(&config.StoreConfig{Size: 256})
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, closeStore())

	path := filepath.Join(t.TempDir(), "phctl.db")
	store, closeStore, err = OpenStore(&config.StoreConfig{Path: path, Size: 256})
	require.NoError(t, err)
	require.NoError(t, store.SetFloat32(eeprom.TargetPH, 6.8))
	require.NoError(t, closeStore())

	store, closeStore, err = OpenStore(&config.StoreConfig{Path: path, Size: 256})
	require.NoError(t, err)
	defer closeStore()
	v, ok := store.Float32(eeprom.TargetPH)
	assert.True(t, ok)
	assert.Equal(t, float32(6.8), v)
}

func TestOpenDevice(t *testing.T) {
	cfg := config.Default()
	_, ok := OpenDevice(cfg).(*probe.Serial)
	assert.True(t, ok)

	cfg.Mock.Enabled = true
	_, ok = OpenDevice(cfg).(*probe.Mock)
	assert.True(t, ok)
}

func TestSamples(t *testing.T) {
	cfg := &config.ProbeConfig{VRefMV: 4095, Resolution: 12, AverageSamples: 2}

	raw := make(chan probe.RawSample, 2)
	raw <- probe.RawSample{Reading: 1000}
	raw <- probe.RawSample{Reading: 2000}
	close(raw)

	var got []float32
	for s := range Samples(cfg, raw) {
		got = append(got, s.Millivolts)
	}
	require.Len(t, got, 2)
	assert.InDelta(t, 1000, got[0], 1e-3)
	assert.InDelta(t, 1500, got[1], 1e-3)
}
