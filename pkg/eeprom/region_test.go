package eeprom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegion(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		blockSize int64
		n         int64
		block     int64
		blocks    int64
		offset    int64
	}{
		{"samd21 rows", 256 * 1024, 256, DefaultSize, 1022, 2, 256*1024 - 512},
		{"one large block", 2 * 1024 * 1024, 4096, DefaultSize, 511, 1, 2*1024*1024 - 4096},
		{"exact fit", 4096, 512, 512, 7, 1, 3584},
		{"partial block", 4096, 512, 513, 6, 2, 3072},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, blocks, offset := Region(tt.size, tt.blockSize, tt.n)
			assert.Equal(t, tt.block, block)
			assert.Equal(t, tt.blocks, blocks)
			assert.Equal(t, tt.offset, offset)
			assert.LessOrEqual(t, offset+tt.n, tt.size, "image must end inside the flash")
			assert.Equal(t, tt.size, (block+blocks)*tt.blockSize, "region must end at the last block")
		})
	}
}
