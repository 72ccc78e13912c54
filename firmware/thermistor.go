package main

import "github.com/chewxy/math32"

const kelvin = 273.15

// thermistorCelsius converts the divider reading with the Beta equation.
// ok is false for a shorted or open sensor.
func thermistorCelsius(counts uint16) (float32, bool) {
	if counts == 0 || counts >= ADC_MAX {
		return 0, false
	}

	r := THERM_SERIES_OHMS * float32(counts) / float32(ADC_MAX-counts)
	inv := 1/(THERM_NOMINAL_C+kelvin) + math32.Log(r/THERM_NOMINAL_OHMS)/THERM_BETA
	return 1/inv - kelvin, true
}
