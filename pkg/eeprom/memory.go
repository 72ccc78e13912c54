package eeprom

import (
	"bytes"
	"sync"
)

var _ Device = (*Memory)(nil)

// Memory is a RAM-backed device. It keeps a working image and the last
// committed image so a power loss can be simulated.
type Memory struct {
	mu        sync.Mutex
	image     []byte
	committed []byte
	writes    int
	commits   int
}

// NewMemory creates an erased image of the given size (DefaultSize when 0).
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultSize
	}
	image := bytes.Repeat([]byte{Erased}, size)
	return &Memory{
		image:     image,
		committed: bytes.Clone(image),
	}
}

// ReadAt reads from the working image.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if off < 0 || off+int64(len(p)) > int64(len(m.image)) {
		return 0, ErrOutOfRange
	}
	return copy(p, m.image[off:]), nil
}

// WriteAt writes into the working image.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if off < 0 || off+int64(len(p)) > int64(len(m.image)) {
		return 0, ErrOutOfRange
	}
	m.writes++
	return copy(m.image[off:], p), nil
}

// Commit makes the working image durable.
func (m *Memory) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.committed, m.image)
	m.commits++
	return nil
}

// PowerCycle drops every uncommitted byte.
func (m *Memory) PowerCycle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.image, m.committed)
}

// Writes returns the number of WriteAt calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Commits returns the number of Commit calls.
func (m *Memory) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// Bytes returns a copy of the committed image.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.committed)
}
