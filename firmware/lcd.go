package main

import (
	"machine"

	"tinygo.org/x/drivers/hd44780i2c"

	"github.com/itohio/gophctl/pkg/display"
)

type lcd struct {
	dev hd44780i2c.Device
}

func newLCD(bus *machine.I2C) (*lcd, error) {
	dev := hd44780i2c.New(bus, LCD_ADDRESS)
	if err := dev.Configure(hd44780i2c.Config{Width: LCD_WIDTH, Height: LCD_HEIGHT}); err != nil {
		return nil, err
	}
	return &lcd{dev: dev}, nil
}

// Render draws the first LCD_HEIGHT rows; the rest do not fit.
func (l *lcd) Render(i display.Intent) error {
	rows := display.Rows(i, LCD_WIDTH)
	l.dev.ClearDisplay()
	for n, row := range rows {
		if n == LCD_HEIGHT {
			break
		}
		l.dev.SetCursor(0, uint8(n))
		l.dev.Print([]byte(row.Text))
	}
	return nil
}
