package main

import (
	"machine"

	"github.com/itohio/gophctl/pkg/eeprom"
)

// flashDevice keeps the parameter image in the last erase blocks of the
// on-chip flash. Writes go to a RAM copy and reach flash on Commit.
type flashDevice struct {
	image  [eeprom.DefaultSize]byte
	block  int64 // first reserved erase block
	blocks int64
	offset int64
}

func newFlashDevice() (*flashDevice, error) {
	d := &flashDevice{}
	d.block, d.blocks, d.offset = eeprom.Region(machine.Flash.Size(), machine.Flash.EraseBlockSize(), int64(len(d.image)))

	if _, err := machine.Flash.ReadAt(d.image[:], d.offset); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *flashDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(d.image)) {
		return 0, eeprom.ErrOutOfRange
	}
	return copy(p, d.image[off:]), nil
}

func (d *flashDevice) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(d.image)) {
		return 0, eeprom.ErrOutOfRange
	}
	return copy(d.image[off:], p), nil
}

func (d *flashDevice) Commit() error {
	if err := machine.Flash.EraseBlocks(d.block, d.blocks); err != nil {
		return err
	}
	_, err := machine.Flash.WriteAt(d.image[:], d.offset)
	return err
}
