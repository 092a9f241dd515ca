// Package afs2test builds synthetic AFS2 archives for tests.
package afs2test

import (
	"encoding/binary"
)

// Payload is one entry to place in a built archive.
type Payload struct {
	ID   uint32
	Data []byte
}

// Spec describes the archive to build. Zero values mean: version 2
// header, 4-byte offsets, 2-byte IDs, alignment 32.
type Spec struct {
	Version    byte
	OffsetSize int
	IDSize     int
	Alignment  uint32
	MixSeed    uint16
	Payloads   []Payload
}

func (s *Spec) fillDefaults() {
	if s.Version == 0 {
		s.Version = 2
	}
	if s.OffsetSize == 0 {
		s.OffsetSize = 4
	}
	if s.IDSize == 0 {
		s.IDSize = 2
	}
	if s.Alignment == 0 {
		s.Alignment = 32
	}
}

// Build serializes the archive described by s.
func Build(s Spec) []byte {
	s.fillDefaults()

	count := len(s.Payloads)
	tableEnd := 16 + count*s.IDSize + (count+1)*s.OffsetSize

	// Lay out payloads: each starts at its unaligned offset rounded up
	// to the alignment, and the next unaligned offset is its aligned
	// start plus its length.
	unaligned := make([]int, count+1)
	unaligned[0] = tableEnd
	aligned := make([]int, count)
	for i, p := range s.Payloads {
		aligned[i] = alignUp(unaligned[i], int(s.Alignment))
		unaligned[i+1] = aligned[i] + len(p.Data)
	}

	buf := make([]byte, unaligned[count])

	copy(buf, "AFS2")
	buf[4] = s.Version
	buf[5] = byte(s.OffsetSize)
	buf[6] = byte(s.IDSize)
	binary.LittleEndian.PutUint32(buf[8:], uint32(count))
	if s.Version >= 2 {
		binary.LittleEndian.PutUint16(buf[12:], uint16(s.Alignment))
		binary.LittleEndian.PutUint16(buf[14:], s.MixSeed)
	} else {
		binary.LittleEndian.PutUint32(buf[12:], s.Alignment)
	}

	pos := 16
	for _, p := range s.Payloads {
		putField(buf[pos:], uint64(p.ID), s.IDSize)
		pos += s.IDSize
	}
	for i := 0; i <= count; i++ {
		putField(buf[pos:], uint64(unaligned[i]), s.OffsetSize)
		pos += s.OffsetSize
	}

	for i, p := range s.Payloads {
		copy(buf[aligned[i]:], p.Data)
	}
	return buf
}

func putField(b []byte, v uint64, width int) {
	switch width {
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		panic("afs2test: unsupported field width")
	}
}

func alignUp(n, alignment int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}
