//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itohio/gophctl/pkg/command"
	"github.com/itohio/gophctl/pkg/controller"
	"github.com/itohio/gophctl/pkg/eeprom"
	"github.com/itohio/gophctl/pkg/ph"
)

// byteSource is implemented by both the USB CDC port and the UART.
type byteSource interface {
	Buffered() int
	ReadByte() (byte, error)
}

type commandSource struct {
	src    byteSource
	reader command.Reader
}

var (
	adcPH   machine.ADC
	adcTemp machine.ADC
	uart    = machine.UART0

	ctrl *controller.Controller
	last controller.Input

	// Pump state
	dosing          bool
	ignoreCountdown int

	// ADC averaging - running sums and count
	phSum       uint32
	tempSum     uint32
	sampleCount int

	// Last valid thermistor reading in Celsius
	temperatureC float32 = THERM_NOMINAL_C

	// Timing
	lastADCRead time.Time

	sources []*commandSource
)

func main() {
	// Configure UART for logs and the second command port
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = zerolog.New(uart).With().Timestamp().Logger()

	PIN_PUMP.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_PUMP.Low()

	// Configure ADC pins and set up ADCs with highest resolution
	machine.InitADC()
	PIN_PH_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_TEMP_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcPH = machine.ADC{Pin: PIN_PH_ADC}
	adcTemp = machine.ADC{Pin: PIN_TEMP_ADC}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	adcPH.Configure(adcConfig)
	adcTemp.Configure(adcConfig)

	machine.I2C0.Configure(machine.I2CConfig{Frequency: 100 * machine.KHz})
	screen, err := newLCD(machine.I2C0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure LCD")
	}

	flash, err := newFlashDevice()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read parameters")
	}

	ctrl, err = controller.New(eeprom.New(flash), screen)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create controller")
	}

	sources = []*commandSource{
		{src: machine.Serial},
		{src: uart},
	}

	lastADCRead = time.Now()

	for {
		now := time.Now()

		for _, s := range sources {
			processSerial(s, now)
		}

		if now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			readADC()
			lastADCRead = now
		}

		if sampleCount >= NUM_SAMPLES {
			outputAveragedValues(now)
			phSum = 0
			tempSum = 0
			sampleCount = 0
		}

		time.Sleep(time.Millisecond)
	}
}

// read returns the ADC value scaled down to ADC_RESOLUTION bits.
func read(adc machine.ADC) uint32 {
	return uint32(adc.Get() >> (16 - ADC_RESOLUTION))
}

func readADC() {
	if ignoreCountdown > 0 {
		ignoreCountdown--
		return
	}

	phSum += read(adcPH)
	tempSum += read(adcTemp)
	sampleCount++
}

func outputAveragedValues(now time.Time) {
	phAvg := uint16(phSum / uint32(sampleCount))
	tempAvg := uint16(tempSum / uint32(sampleCount))

	if c, ok := thermistorCelsius(tempAvg); ok {
		temperatureC = c
	} else {
		log.Warn().Uint16("counts", tempAvg).Msg("Thermistor out of range")
	}

	temperature := temperatureC
	if ctrl.Session().Fahrenheit {
		temperature = ph.CelsiusToFahrenheit(temperatureC)
	}

	last = controller.Input{
		Voltage:     float32(phAvg) * ADC_REFERENCE_MV / ADC_MAX,
		Temperature: temperature,
		Dosing:      dosing,
	}
	if _, err := ctrl.ReadPH(last); err != nil {
		log.Error().Err(err).Msg("Failed to read pH")
	}

	// Output format: "unix_micros,reading,temperature,dosing\n", temperature in °C
	// Example: "1234567890123,1861,24.50,0\n"
	line := make([]byte, 0, 40)
	line = strconv.AppendInt(line, now.UnixMicro(), 10)
	line = append(line, ',')
	line = strconv.AppendUint(line, uint64(phAvg), 10)
	line = append(line, ',')
	line = strconv.AppendFloat(line, float64(temperatureC), 'f', 2, 32)
	line = append(line, ',')
	if dosing {
		line = append(line, '1')
	} else {
		line = append(line, '0')
	}
	line = append(line, '\n')
	machine.Serial.Write(line)
}

func processSerial(s *commandSource, now time.Time) {
	for s.src.Buffered() > 0 {
		data, err := s.src.ReadByte()
		if err != nil {
			break
		}

		token, ok := s.reader.Feed(data, now)
		if !ok {
			continue
		}

		switch token {
		case "D1":
			setDosing(true)
		case "D0":
			setDosing(false)
		default:
			if err := ctrl.Handle(token, last); err != nil {
				log.Error().Err(err).Str("token", token).Msg("Command failed")
			}
		}
	}
}

func setDosing(on bool) {
	if on == dosing {
		return
	}
	dosing = on
	if on {
		PIN_PUMP.High()
	} else {
		PIN_PUMP.Low()
	}

	// The motor disturbs the probe, start averaging afresh
	ignoreCountdown = IGNORE_SAMPLES_AFTER_CHANGE
	phSum = 0
	tempSum = 0
	sampleCount = 0
}
