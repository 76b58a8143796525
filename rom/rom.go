// Package rom loads CHIP-8 program images.
//
// An image is a raw sequence of bytes, without header, meant to be loaded
// verbatim at address 0x200.
package rom

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// LoadAddr is the address at which images are loaded.
	LoadAddr = 0x200

	// MaxSize is the size of the largest image fitting in memory.
	MaxSize = 0x1000 - LoadAddr
)

var (
	ErrEmpty    = errors.New("empty rom")
	ErrTooLarge = errors.New("rom too large")
)

type Rom struct {
	Name string // base name, without extension
	Data []byte
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := &Rom{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface.
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	// Read one more byte than allowed to detect oversized images without
	// reading them entirely.
	buf, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return int64(len(buf)), err
	}
	switch {
	case len(buf) == 0:
		return 0, ErrEmpty
	case len(buf) > MaxSize:
		return int64(len(buf)), fmt.Errorf("%w: more than %d bytes", ErrTooLarge, MaxSize)
	}

	rom.Data = buf
	return int64(len(buf)), nil
}

// CRC32 returns the IEEE checksum of the rom, used to identify it.
func (rom *Rom) CRC32() uint32 {
	return crc32.ChecksumIEEE(rom.Data)
}
