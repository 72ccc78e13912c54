//go:build !tinygo

package eeprom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var _ Device = (*Bolt)(nil)

var bucketName = []byte("eeprom")

// Bolt is a durable device backed by a bbolt database. Each byte of the
// image is stored under its 2-byte big-endian address; erased bytes are
// simply absent.
type Bolt struct {
	db    *bolt.DB
	image []byte
	dirty map[int64]struct{}
}

// OpenBolt opens (or creates) the database at path and loads the image.
func OpenBolt(path string, size int) (*Bolt, error) {
	if size <= 0 {
		size = DefaultSize
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}

	b := &Bolt{
		db:    db,
		image: bytes.Repeat([]byte{Erased}, size),
		dirty: make(map[int64]struct{}),
	}

	err = db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(k, v []byte) error {
			if len(k) != 2 || len(v) != 1 {
				return nil
			}
			addr := int(binary.BigEndian.Uint16(k))
			if addr < len(b.image) {
				b.image[addr] = v[0]
			}
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load store %s: %w", path, err)
	}

	return b, nil
}

// ReadAt reads from the in-memory image.
func (b *Bolt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(b.image)) {
		return 0, ErrOutOfRange
	}
	return copy(p, b.image[off:]), nil
}

// WriteAt updates the image and marks the bytes dirty.
func (b *Bolt) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(b.image)) {
		return 0, ErrOutOfRange
	}
	for i := range p {
		b.dirty[off+int64(i)] = struct{}{}
	}
	return copy(b.image[off:], p), nil
}

// Commit writes every dirty byte in a single transaction.
func (b *Bolt) Commit() error {
	if len(b.dirty) == 0 {
		return nil
	}

	addrs := make([]int64, 0, len(b.dirty))
	for addr := range b.dirty {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		for _, addr := range addrs {
			var key [2]byte
			binary.BigEndian.PutUint16(key[:], uint16(addr))
			if b.image[addr] == Erased {
				if err := bucket.Delete(key[:]); err != nil {
					return err
				}
				continue
			}
			if err := bucket.Put(key[:], []byte{b.image[addr]}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit store: %w", err)
	}

	clear(b.dirty)
	return nil
}

// Close closes the database. Uncommitted bytes are lost.
func (b *Bolt) Close() error {
	return b.db.Close()
}
