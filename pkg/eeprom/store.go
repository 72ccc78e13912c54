package eeprom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// Erased is the value every byte holds before it is first written.
	Erased byte = 0xFF
	// DefaultSize is the size of the parameter image in bytes.
	DefaultSize = 512
)

var (
	// ErrOutOfRange is returned by devices for accesses past the image end.
	ErrOutOfRange = errors.New("address out of range")
	// ErrKind is returned when a parameter is written with the wrong encoding.
	ErrKind = errors.New("parameter kind mismatch")
)

// Device is the byte-level storage collaborator. Bytes written with WriteAt
// become durable on Commit.
type Device interface {
	io.ReaderAt
	io.WriterAt
	Commit() error
}

// Store reads and writes typed parameters at their fixed addresses.
// Every write is committed before the call returns.
type Store struct {
	dev    Device
	logger zerolog.Logger
}

// New creates a Store on top of a device.
func New(dev Device) *Store {
	return &Store{
		dev:    dev,
		logger: log.With().Str("component", "eeprom").Logger(),
	}
}

// SetLogger replaces the store logger (useful for tests).
func (s *Store) SetLogger(logger zerolog.Logger) {
	s.logger = logger.With().Str("component", "eeprom").Logger()
}

// Float32 decodes a float parameter. ok is false when the cell is erased,
// holds NaN, or cannot be read.
func (s *Store) Float32(p Param) (v float32, ok bool) {
	buf, ok := s.read(p, Float32)
	if !ok {
		return 0, false
	}
	v = math.Float32frombits(binary.LittleEndian.Uint32(buf))
	if math32.IsNaN(v) {
		return v, false
	}
	return v, true
}

// Int32 decodes an integer parameter. ok is false when the cell is erased
// or cannot be read.
func (s *Store) Int32(p Param) (v int32, ok bool) {
	buf, ok := s.read(p, Int32)
	if !ok {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(buf)), true
}

// Flag decodes a boolean parameter. Bytes other than 0 and 1 are treated
// like an erased cell.
func (s *Store) Flag(p Param) (v bool, ok bool) {
	buf, ok := s.read(p, Flag)
	if !ok {
		return false, false
	}
	switch buf[0] {
	case 0:
		return false, true
	case 1:
		return true, true
	default:
		return false, false
	}
}

// SetFloat32 encodes and commits a float parameter.
func (s *Store) SetFloat32(p Param, v float32) error {
	if p.Kind != Float32 {
		return fmt.Errorf("%s is %s: %w", p.Name, p.Kind, ErrKind)
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return s.write(p, buf[:])
}

// SetInt32 encodes and commits an integer parameter.
func (s *Store) SetInt32(p Param, v int32) error {
	if p.Kind != Int32 {
		return fmt.Errorf("%s is %s: %w", p.Name, p.Kind, ErrKind)
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return s.write(p, buf[:])
}

// SetFlag encodes and commits a boolean parameter.
func (s *Store) SetFlag(p Param, v bool) error {
	if p.Kind != Flag {
		return fmt.Errorf("%s is %s: %w", p.Name, p.Kind, ErrKind)
	}
	b := byte(0)
	if v {
		b = 1
	}
	return s.write(p, []byte{b})
}

// LoadFloat32 returns the stored value, or writes def back and returns it
// when the cell is erased or corrupt.
func (s *Store) LoadFloat32(p Param, def float32) (float32, error) {
	if v, ok := s.Float32(p); ok {
		return v, nil
	}
	s.logger.Debug().Str("param", p.Name).Float32("default", def).Msg("Initialising parameter")
	return def, s.SetFloat32(p, def)
}

// LoadInt32 is LoadFloat32 for integer parameters.
func (s *Store) LoadInt32(p Param, def int32) (int32, error) {
	if v, ok := s.Int32(p); ok {
		return v, nil
	}
	s.logger.Debug().Str("param", p.Name).Int32("default", def).Msg("Initialising parameter")
	return def, s.SetInt32(p, def)
}

// LoadFlag is LoadFloat32 for boolean parameters.
func (s *Store) LoadFlag(p Param, def bool) (bool, error) {
	if v, ok := s.Flag(p); ok {
		return v, nil
	}
	s.logger.Debug().Str("param", p.Name).Bool("default", def).Msg("Initialising parameter")
	return def, s.SetFlag(p, def)
}

// Entry is one decoded cell of the parameter image.
type Entry struct {
	Param Param
	Value string
	Valid bool
}

// Dump decodes every parameter in the layout without healing anything.
func (s *Store) Dump() []Entry {
	params := Layout()
	entries := make([]Entry, 0, len(params))
	for _, p := range params {
		e := Entry{Param: p}
		switch p.Kind {
		case Float32:
			v, ok := s.Float32(p)
			e.Value, e.Valid = strconv.FormatFloat(float64(v), 'f', -1, 32), ok
		case Int32:
			v, ok := s.Int32(p)
			e.Value, e.Valid = strconv.FormatInt(int64(v), 10), ok
		case Flag:
			v, ok := s.Flag(p)
			e.Value, e.Valid = strconv.FormatBool(v), ok
		}
		if !e.Valid {
			e.Value = "erased"
		}
		entries = append(entries, e)
	}
	return entries
}

// read fetches the raw bytes of p and reports false for erased cells.
func (s *Store) read(p Param, kind Kind) ([]byte, bool) {
	if p.Kind != kind {
		return nil, false
	}
	buf := make([]byte, kind.Width())
	if _, err := s.dev.ReadAt(buf, p.Addr); err != nil {
		s.logger.Warn().Err(err).Str("param", p.Name).Msg("Read failed, treating cell as erased")
		return nil, false
	}
	if isErased(buf) {
		return nil, false
	}
	return buf, true
}

func (s *Store) write(p Param, buf []byte) error {
	if _, err := s.dev.WriteAt(buf, p.Addr); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.Name, err)
	}
	if err := s.dev.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", p.Name, err)
	}
	return nil
}

func isErased(buf []byte) bool {
	for _, b := range buf {
		if b != Erased {
			return false
		}
	}
	return true
}
