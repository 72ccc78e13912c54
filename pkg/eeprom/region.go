package eeprom

// Region places an image of n bytes in the last whole erase blocks of a
// flash of the given size. It returns the first block, the number of
// blocks to erase and the byte offset of the image.
func Region(size, blockSize, n int64) (block, blocks, offset int64) {
	blocks = (n + blockSize - 1) / blockSize
	block = size/blockSize - blocks
	return block, blocks, block * blockSize
}
