package eeprom

// Kind is the encoding of a stored scalar.
type Kind uint8

const (
	Float32 Kind = iota + 1 // IEEE-754 single, little-endian
	Int32                   // two's complement, little-endian
	Flag                    // single byte, 0 or 1
)

// Width returns the number of bytes a value of this kind occupies.
func (k Kind) Width() int64 {
	switch k {
	case Float32, Int32:
		return 4
	case Flag:
		return 1
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Flag:
		return "flag"
	default:
		return "unknown"
	}
}

// Param describes one persisted scalar and its fixed address.
type Param struct {
	Name string
	Addr int64
	Kind Kind
}

// End returns the first address after the parameter.
func (p Param) End() int64 {
	return p.Addr + p.Kind.Width()
}

// Overlaps reports whether two parameters share any byte.
func (p Param) Overlaps(o Param) bool {
	return p.Addr < o.End() && o.Addr < p.End()
}

// Fixed parameter addresses. FlowRate and PumpSpeed sit apart from the
// calibration block so more pumps can be added after them.
var (
	NeutralVoltage = Param{Name: "neutral_voltage", Addr: 0x00, Kind: Float32}
	AcidVoltage    = Param{Name: "acid_voltage", Addr: 0x04, Kind: Float32}
	TargetPH       = Param{Name: "target_ph", Addr: 0x08, Kind: Float32}
	Units          = Param{Name: "units_fahrenheit", Addr: 0x0C, Kind: Flag}
	DoseAmount     = Param{Name: "dose_amount_ml", Addr: 0x10, Kind: Float32}
	WaitTime       = Param{Name: "wait_seconds", Addr: 0x14, Kind: Float32}
	TestVolume     = Param{Name: "test_volume_ml", Addr: 0x18, Kind: Float32}
	FlowRate       = Param{Name: "flow_rate", Addr: 0x24, Kind: Float32}
	PumpSpeed      = Param{Name: "pump_speed", Addr: 0x28, Kind: Int32}
	BufferBand     = Param{Name: "ph_buffer_band", Addr: 0x2C, Kind: Float32}
)

// Layout returns every persisted parameter in address order.
func Layout() []Param {
	return []Param{
		NeutralVoltage,
		AcidVoltage,
		TargetPH,
		Units,
		DoseAmount,
		WaitTime,
		TestVolume,
		FlowRate,
		PumpSpeed,
		BufferBand,
	}
}
