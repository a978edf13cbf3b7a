// Package romio reads and signs the IPL3 payload inside an N64 ROM image.
package romio

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/oisee/ipl3hasher/internal/apperr"
	"github.com/oisee/ipl3hasher/internal/hash"
)

// ipl3Offset is the byte offset of the 4032-byte IPL3 payload within a
// standard N64 ROM image.
const ipl3Offset = 64

// ipl3Len is the payload size in bytes: 1008 32-bit words.
const ipl3Len = hash.NumWords * 4

// xOffset is the fixed byte offset where the signed X value is written.
const xOffset = 4092

// Load opens the ROM at path, seeks to the IPL3 payload, and decodes it as
// 1008 big-endian 32-bit words.
func Load(path string) ([hash.NumWords]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return [hash.NumWords]uint32{}, fmt.Errorf("%w: open %s: %v", apperr.ErrIO, path, err)
	}
	defer f.Close()

	if _, err := f.Seek(ipl3Offset, 0); err != nil {
		return [hash.NumWords]uint32{}, fmt.Errorf("%w: seek %s: %v", apperr.ErrIO, path, err)
	}

	var raw [ipl3Len]byte
	if _, err := readFull(f, raw[:]); err != nil {
		return [hash.NumWords]uint32{}, fmt.Errorf("%w: read %s: %v", apperr.ErrIO, path, err)
	}

	return hash.Decode(raw), nil
}

// Sign writes a found (Y, X) collision back into the ROM at path. bits is a
// list of file-relative bit indices (not IPL3-relative: bits[i] is a bit
// offset from the start of the file, addressing bit bits[i]%8 of byte
// bits[i]/8, not a bit offset from IPL3's start).
// bits[i] names the bit painted by bit i of y. Each named bit is
// read-modify-written one byte at a time; X is written as four big-endian
// bytes at the fixed offset 4092.
func Sign(path string, bits []uint32, y, x uint32) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", apperr.ErrIO, path, err)
	}
	defer f.Close()

	for i, bit := range bits {
		byteIndex := int64(bit / 8)
		bitOffset := bit % 8

		var b [1]byte
		if _, err := f.Seek(byteIndex, 0); err != nil {
			return fmt.Errorf("%w: seek %s: %v", apperr.ErrIO, path, err)
		}
		if _, err := readFull(f, b[:]); err != nil {
			return fmt.Errorf("%w: read %s: %v", apperr.ErrIO, path, err)
		}

		mask := byte(1) << bitOffset
		if (y>>uint(i))&1 == 1 {
			b[0] |= mask
		} else {
			b[0] &^= mask
		}

		if _, err := f.Seek(byteIndex, 0); err != nil {
			return fmt.Errorf("%w: seek %s: %v", apperr.ErrIO, path, err)
		}
		if _, err := f.Write(b[:]); err != nil {
			return fmt.Errorf("%w: write %s: %v", apperr.ErrIO, path, err)
		}
	}

	if _, err := f.Seek(xOffset, 0); err != nil {
		return fmt.Errorf("%w: seek %s: %v", apperr.ErrIO, path, err)
	}
	var xb [4]byte
	binary.BigEndian.PutUint32(xb[:], x)
	if _, err := f.Write(xb[:]); err != nil {
		return fmt.Errorf("%w: write %s: %v", apperr.ErrIO, path, err)
	}

	return nil
}

func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, fmt.Errorf("unexpected EOF")
		}
	}
	return total, nil
}
