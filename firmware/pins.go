package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 10  // ADC read interval in milliseconds (same for both ADCs)
	NUM_SAMPLES        = 100 // Number of samples to average, one output per second

	// Samples right after the pump switches are disturbed by the motor
	IGNORE_SAMPLES_AFTER_CHANGE = 10

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)
	ADC_MAX          = 1<<ADC_RESOLUTION - 1

	// Pump relay
	PIN_PUMP = machine.D7

	// ADC pins
	PIN_PH_ADC   = machine.A1 // pH probe amplifier output
	PIN_TEMP_ADC = machine.A2 // NTC divider, thermistor on the low side

	// NTC thermistor (10k, B=3950) in series with a 10k resistor
	THERM_SERIES_OHMS  = 10000
	THERM_NOMINAL_OHMS = 10000
	THERM_NOMINAL_C    = 25
	THERM_BETA         = 3950

	// 20x4 character LCD on a PCF8574 backpack
	LCD_ADDRESS = 0x27
	LCD_WIDTH   = 20
	LCD_HEIGHT  = 4

	// Serial configuration
	// Format "unix_micros,reading,temperature,dosing\n"
	// Example: "1234567890123456,4095,-12.50,1\n" = ~32 bytes max per line
	// One line per second, the UART also carries logs
	UART_BAUD_RATE = 115200
)
