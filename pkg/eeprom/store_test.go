package eeprom

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_NoOverlap(t *testing.T) {
	params := Layout()
	for i, a := range params {
		assert.LessOrEqual(t, a.End(), int64(DefaultSize), "%s outside image", a.Name)
		assert.Greater(t, a.Kind.Width(), int64(0), "%s has no width", a.Name)
		for _, b := range params[i+1:] {
			assert.False(t, a.Overlaps(b), "%s overlaps %s", a.Name, b.Name)
			assert.NotEqual(t, a.Name, b.Name)
		}
	}
}

func TestLayout_FixedAddresses(t *testing.T) {
	assert.Equal(t, int64(0x00), NeutralVoltage.Addr)
	assert.Equal(t, int64(0x04), AcidVoltage.Addr)
	assert.Equal(t, int64(0x08), TargetPH.Addr)
	assert.Equal(t, int64(0x0C), Units.Addr)
	assert.Equal(t, int64(0x24), FlowRate.Addr)
	assert.Equal(t, int64(0x28), PumpSpeed.Addr)
}

func TestLoadFloat32_VirginCellHeals(t *testing.T) {
	mem := NewMemory(0)
	s := New(mem)

	v, err := s.LoadFloat32(TargetPH, 6.3)
	require.NoError(t, err)
	assert.Equal(t, float32(6.3), v)
	assert.Equal(t, 1, mem.Writes(), "default must be written back once")
	assert.Equal(t, 1, mem.Commits())

	// Second load finds the healed value and writes nothing.
	v, err = s.LoadFloat32(TargetPH, 9.9)
	require.NoError(t, err)
	assert.Equal(t, float32(6.3), v)
	assert.Equal(t, 1, mem.Writes())
	assert.Equal(t, 1, mem.Commits())
}

func TestLoadFloat32_NaNHeals(t *testing.T) {
	mem := NewMemory(0)
	s := New(mem)
	require.NoError(t, s.SetFloat32(AcidVoltage, math32.NaN()))

	_, ok := s.Float32(AcidVoltage)
	assert.False(t, ok)

	v, err := s.LoadFloat32(AcidVoltage, 2032.44)
	require.NoError(t, err)
	assert.Equal(t, float32(2032.44), v)

	got, ok := s.Float32(AcidVoltage)
	assert.True(t, ok)
	assert.Equal(t, float32(2032.44), got)
}

func TestLoadInt32_VirginCellHeals(t *testing.T) {
	mem := NewMemory(0)
	s := New(mem)

	v, err := s.LoadInt32(PumpSpeed, 160)
	require.NoError(t, err)
	assert.Equal(t, int32(160), v)
	assert.Equal(t, 1, mem.Commits())
}

func TestLoadFlag_InvalidByteHeals(t *testing.T) {
	mem := NewMemory(0)
	_, err := mem.WriteAt([]byte{7}, Units.Addr)
	require.NoError(t, err)
	s := New(mem)

	_, ok := s.Flag(Units)
	assert.False(t, ok)

	v, err := s.LoadFlag(Units, false)
	require.NoError(t, err)
	assert.False(t, v)
	assert.Equal(t, byte(0), mem.Bytes()[Units.Addr])
}

func TestRoundTrip(t *testing.T) {
	s := New(NewMemory(0))

	floats := map[Param]float32{
		NeutralVoltage: 1487.25,
		AcidVoltage:    2011.5,
		TargetPH:       6.8,
		DoseAmount:     0.07,
		WaitTime:       120,
		TestVolume:     5.9,
		FlowRate:       0.65,
		BufferBand:     0.02,
	}
	for p, want := range floats {
		require.NoError(t, s.SetFloat32(p, want))
	}
	require.NoError(t, s.SetInt32(PumpSpeed, -42))
	require.NoError(t, s.SetFlag(Units, true))

	for p, want := range floats {
		got, ok := s.Float32(p)
		assert.True(t, ok, p.Name)
		assert.Equal(t, want, got, p.Name)
	}
	speed, ok := s.Int32(PumpSpeed)
	assert.True(t, ok)
	assert.Equal(t, int32(-42), speed)
	units, ok := s.Flag(Units)
	assert.True(t, ok)
	assert.True(t, units)
}

func TestSet_KindMismatch(t *testing.T) {
	s := New(NewMemory(0))
	assert.ErrorIs(t, s.SetFloat32(Units, 1), ErrKind)
	assert.ErrorIs(t, s.SetFlag(TargetPH, true), ErrKind)
	assert.ErrorIs(t, s.SetInt32(FlowRate, 1), ErrKind)

	_, ok := s.Float32(PumpSpeed)
	assert.False(t, ok)
}

func TestRead_OutOfRangeTreatedAsErased(t *testing.T) {
	s := New(NewMemory(8))
	_, ok := s.Float32(BufferBand)
	assert.False(t, ok)

	_, err := s.LoadFloat32(BufferBand, 0.1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestMemory_PowerCycleDropsUncommitted(t *testing.T) {
	mem := NewMemory(0)
	s := New(mem)
	require.NoError(t, s.SetFloat32(TargetPH, 7.1))

	var buf [4]byte
	_, err := mem.WriteAt([]byte{1, 2, 3, 4}, TargetPH.Addr)
	require.NoError(t, err)
	mem.PowerCycle()

	_, err = mem.ReadAt(buf[:], TargetPH.Addr)
	require.NoError(t, err)
	got, ok := s.Float32(TargetPH)
	assert.True(t, ok)
	assert.Equal(t, float32(7.1), got)
}

func TestDump(t *testing.T) {
	s := New(NewMemory(0))
	require.NoError(t, s.SetFloat32(TargetPH, 6.5))

	entries := s.Dump()
	require.Len(t, entries, len(Layout()))
	for _, e := range entries {
		if e.Param == TargetPH {
			assert.True(t, e.Valid)
			assert.Equal(t, "6.5", e.Value)
			continue
		}
		assert.False(t, e.Valid, e.Param.Name)
		assert.Equal(t, "erased", e.Value)
	}
}
