// Package afs2 parses AFS2 (AWB) sub-archives: flat containers of
// concatenated audio payloads addressed by small integer IDs.
//
// The on-disk layout is a 16-byte header followed by an ID table and an
// offset table. Offsets are stored unaligned; each payload actually
// starts at its offset rounded up to the archive's alignment, and its
// length is derived from the next entry's unaligned offset. The offset
// table holds one extra trailing offset used only as the end-of-data
// sentinel for that derivation.
package afs2

import (
	"fmt"
	"io"

	"github.com/thefrozenfishy/acb/internal/binary"
	"github.com/thefrozenfishy/acb/internal/types"
)

// Magic is the big-endian "AFS2" signature.
const Magic = 0x41465332

const headerSize = 0x10

// Entry locates one payload inside the archive.
type Entry struct {
	ID     uint32
	Offset int64 // aligned start of the payload
	Length int64
}

// Archive is a parsed AFS2 container. It is immutable after Parse; reads
// go through the retained source at absolute offsets.
type Archive struct {
	// Alignment is the power-of-two boundary every payload start is
	// rounded up to.
	Alignment uint32

	// MixSeed is the per-archive seed mixed into decryption keys. Only
	// present in version 2+ headers.
	MixSeed *uint16

	// OffsetSize and IDSize are the byte widths (2 or 4) of the offset
	// and ID table fields.
	OffsetSize int
	IDSize     int

	entries []Entry
	sr      *binary.SafeReader
}

// Parse decodes an AFS2 archive from the given source. path labels the
// source in errors and may be synthetic for in-memory blobs.
func Parse(src io.ReaderAt, size int64, path string) (*Archive, error) {
	sr := binary.NewSafeReader(src, size, path)
	r := binary.NewReader(sr, 0)

	magic, err := binary.NextBE[uint32](r, "AFS2 magic")
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, &types.FormatError{Path: path, Offset: 0, Reason: "bad AFS2 magic"}
	}

	version, err := r.ReadBytes(4, "AFS2 version tag")
	if err != nil {
		return nil, err
	}
	count, err := binary.NextLE[uint32](r, "entry count")
	if err != nil {
		return nil, err
	}

	a := &Archive{
		OffsetSize: int(version[1]),
		IDSize:     int(version[2]),
		sr:         sr,
	}

	if version[0] >= 0x02 {
		align, err := binary.NextLE[uint16](r, "alignment")
		if err != nil {
			return nil, err
		}
		seed, err := binary.NextLE[uint16](r, "mix seed")
		if err != nil {
			return nil, err
		}
		a.Alignment = uint32(align)
		a.MixSeed = &seed
	} else {
		align, err := binary.NextLE[uint32](r, "alignment")
		if err != nil {
			return nil, err
		}
		a.Alignment = align
	}

	if a.Alignment == 0 || a.Alignment&(a.Alignment-1) != 0 {
		return nil, &types.FormatError{
			Path:   path,
			Offset: 8,
			Reason: fmt.Sprintf("alignment %d is not a power of two", a.Alignment),
		}
	}

	if err := a.readEntries(r, count); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) readEntries(r *binary.Reader, count uint32) error {
	r.Seek(headerSize)

	ids, err := readTable(r, a.IDSize, int(count), "ID table")
	if err != nil {
		return err
	}
	// One extra trailing offset: the end-of-data sentinel.
	rawOffs, err := readTable(r, a.OffsetSize, int(count)+1, "offset table")
	if err != nil {
		return err
	}

	// Spare bits may be packed into the high byte(s) of an offset field;
	// mask them off before any arithmetic.
	mask := uint64(1)<<(8*a.OffsetSize) - 1
	unaligned := make([]int64, len(rawOffs))
	for i, raw := range rawOffs {
		unaligned[i] = int64(raw & mask)
	}

	a.entries = make([]Entry, count)
	for i := range a.entries {
		aligned := alignUp(unaligned[i], int64(a.Alignment))
		// Length runs to the next entry's unaligned offset, not its
		// aligned one: the next entry's alignment padding belongs to it.
		length := unaligned[i+1] - aligned
		if length < 0 {
			return &types.FormatError{
				Path:   a.sr.Path(),
				Offset: aligned,
				Reason: fmt.Sprintf("entry %d has negative length %d (offsets out of order)", i, length),
			}
		}
		a.entries[i] = Entry{
			ID:     uint32(ids[i]),
			Offset: aligned,
			Length: length,
		}
	}
	return nil
}

func readTable(r *binary.Reader, width, count int, what string) ([]uint64, error) {
	out := make([]uint64, count)
	for i := range out {
		switch width {
		case 2:
			v, err := binary.NextLE[uint16](r, what)
			if err != nil {
				return nil, err
			}
			out[i] = uint64(v)
		case 4:
			v, err := binary.NextLE[uint32](r, what)
			if err != nil {
				return nil, err
			}
			out[i] = uint64(v)
		default:
			return nil, &types.FormatError{
				Path:   r.Path(),
				Offset: r.Offset(),
				Reason: fmt.Sprintf("unsupported %s field width %d", what, width),
			}
		}
	}
	return out, nil
}

func alignUp(n, alignment int64) int64 {
	return (n + alignment - 1) &^ (alignment - 1)
}

// Entries returns the archive's entries in table order.
func (a *Archive) Entries() []Entry {
	return a.entries
}

// Lookup finds the entry for the given ID. Archives are small, so this is
// a linear scan.
func (a *Archive) Lookup(id uint32) (Entry, error) {
	for _, e := range a.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, &types.NotFoundError{Archive: a.sr.Path(), ID: id}
}

// Data returns a fresh copy of the payload bytes for the given ID. The
// read is at an absolute offset and does not disturb any stream cursor.
func (a *Archive) Data(id uint32) ([]byte, error) {
	e, err := a.Lookup(id)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, e.Length)
	if err := a.sr.ReadAt(buf, e.Offset, fmt.Sprintf("payload %d", id)); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadInto fills buf with payload bytes for the given entry, starting at
// the entry's aligned offset. buf may be shorter than the entry.
func (a *Archive) ReadInto(e Entry, buf []byte) error {
	return a.sr.ReadAt(buf, e.Offset, fmt.Sprintf("payload %d", e.ID))
}
