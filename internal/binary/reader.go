// Package binary provides bounds-checked binary reading primitives.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SafeReader wraps io.ReaderAt with bounds checking and error messages
// that name what was being read.
type SafeReader struct {
	r    io.ReaderAt
	path string
	size int64
}

// NewSafeReader creates a new SafeReader. path is used only in error
// messages and may be a synthetic label for in-memory sources.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// Path returns the label associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the total size of the underlying source.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// ReadAt fills b with bytes at the given offset, with context for error
// messages. Reads past the end of the source fail rather than truncate.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if off < 0 || off > sr.size {
		return fmt.Errorf("%s: offset %d out of bounds (size %d) while reading %s",
			sr.path, off, sr.size, what)
	}
	if off+int64(len(b)) > sr.size {
		return fmt.Errorf("%s: read of %d bytes at offset %d would exceed size %d while reading %s",
			sr.path, len(b), off, sr.size, what)
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: read %s at offset %d: %w", sr.path, what, off, err)
	}
	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d of %d bytes",
			sr.path, what, off, n, len(b))
	}
	return nil
}

func sizeOf[T uint8 | uint16 | uint32 | uint64]() int64 {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

// ReadBE reads a big-endian value of type T at the given offset.
func ReadBE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return readEndian[T](sr, off, what, binary.BigEndian)
}

// ReadLE reads a little-endian value of type T at the given offset.
func ReadLE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return readEndian[T](sr, off, what, binary.LittleEndian)
}

func readEndian[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string, order binary.ByteOrder) (T, error) {
	var zero T
	buf := make([]byte, sizeOf[T]())
	if err := sr.ReadAt(buf, off, what); err != nil {
		return zero, err
	}

	var val T
	switch any(zero).(type) {
	case uint8:
		val = T(buf[0])
	case uint16:
		val = T(order.Uint16(buf))
	case uint32:
		val = T(order.Uint32(buf))
	case uint64:
		val = T(order.Uint64(buf))
	}
	return val, nil
}

// Reader provides sequential reading with automatic offset tracking, for
// header layouts that are naturally read front to back.
type Reader struct {
	*SafeReader
	offset int64
}

// NewReader creates a Reader positioned at the given offset.
func NewReader(sr *SafeReader, offset int64) *Reader {
	return &Reader{SafeReader: sr, offset: offset}
}

// Offset returns the current position.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Seek repositions the reader at an absolute offset.
func (r *Reader) Seek(off int64) {
	r.offset = off
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.offset += n
}

// ReadBytes reads length bytes at the current position and advances.
func (r *Reader) ReadBytes(length int, what string) ([]byte, error) {
	buf := make([]byte, length)
	if err := r.SafeReader.ReadAt(buf, r.offset, what); err != nil {
		return nil, err
	}
	r.offset += int64(length)
	return buf, nil
}

// NextBE reads a big-endian value at the current position and advances.
func NextBE[T uint8 | uint16 | uint32 | uint64](r *Reader, what string) (T, error) {
	val, err := ReadBE[T](r.SafeReader, r.offset, what)
	if err != nil {
		var zero T
		return zero, err
	}
	r.offset += sizeOf[T]()
	return val, nil
}

// NextLE reads a little-endian value at the current position and advances.
func NextLE[T uint8 | uint16 | uint32 | uint64](r *Reader, what string) (T, error) {
	val, err := ReadLE[T](r.SafeReader, r.offset, what)
	if err != nil {
		var zero T
		return zero, err
	}
	r.offset += sizeOf[T]()
	return val, nil
}
