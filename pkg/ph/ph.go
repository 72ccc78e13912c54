// Package ph converts probe voltages to calibrated pH readings.
package ph

const (
	// NeutralPH and AcidPH are the reference pH values of the two
	// calibration buffers.
	NeutralPH float32 = 7.0
	AcidPH    float32 = 4.0

	// DefaultNeutral and DefaultAcid are the factory anchor voltages in mV.
	DefaultNeutral float32 = 1500.0
	DefaultAcid    float32 = 2032.44

	// ReferenceTemperature is the temperature (°C) at which no correction
	// is applied.
	ReferenceTemperature float32 = 25.0
	// TemperatureCoefficient is the pH change per °C.
	TemperatureCoefficient float32 = -0.003

	voltageOffset float32 = 1500.0
	voltageScale  float32 = 3.0
)

// Calibration holds the two anchor voltages (mV).
type Calibration struct {
	Neutral float32
	Acid    float32
}

// DefaultCalibration returns the factory anchors.
func DefaultCalibration() Calibration {
	return Calibration{Neutral: DefaultNeutral, Acid: DefaultAcid}
}

func scale(v float32) float32 {
	return (v - voltageOffset) / voltageScale
}

// Raw returns the uncompensated pH for voltage v (mV) on the line through
// both anchors.
func (c Calibration) Raw(v float32) float32 {
	n := scale(c.Neutral)
	slope := (NeutralPH - AcidPH) / (n - scale(c.Acid))
	intercept := NeutralPH - slope*n
	return slope*scale(v) + intercept
}

// FahrenheitToCelsius converts a temperature reading.
func FahrenheitToCelsius(f float32) float32 {
	return (f - 32) * 5 / 9
}

// CelsiusToFahrenheit converts a temperature reading.
func CelsiusToFahrenheit(c float32) float32 {
	return c*9/5 + 32
}

// Compensate applies the linear temperature correction to a raw pH.
// temperature is in °F when fahrenheit is set.
func Compensate(raw, temperature float32, fahrenheit bool) float32 {
	if fahrenheit {
		temperature = FahrenheitToCelsius(temperature)
	}
	return raw + (temperature-ReferenceTemperature)*TemperatureCoefficient
}

// Estimate returns the calibrated pH. The result is not clamped.
func Estimate(c Calibration, voltage, temperature float32, fahrenheit bool) float32 {
	return Compensate(c.Raw(voltage), temperature, fahrenheit)
}
