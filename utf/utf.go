// Package utf decodes @UTF tables, the self-describing column-oriented
// binary tables that cue sheets and their sub-tables are expressed in.
//
// A table is big-endian throughout: a header with offsets to the row
// area, string pool, and data pool, then a schema of per-column flag
// bytes, then the rows. Each column's flag byte carries the value type in
// the low nibble and storage flags in the high nibble: 0x10 the column is
// named, 0x20 a single constant value is stored in the schema, 0x40 each
// row stores its own value.
//
// Strings are NUL-terminated references into the string pool and are
// decoded with the caller's chosen text encoding (Shift-JIS for legacy
// sheets, UTF-8 for modern ones).
package utf

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"

	"github.com/thefrozenfishy/acb/internal/binary"
	"github.com/thefrozenfishy/acb/internal/types"
)

// Magic is the big-endian "@UTF" signature.
const Magic = 0x40555446

// Column value types, low nibble of the schema flag byte.
const (
	typeUint8   = 0x00
	typeInt8    = 0x01
	typeUint16  = 0x02
	typeInt16   = 0x03
	typeUint32  = 0x04
	typeInt32   = 0x05
	typeUint64  = 0x06
	typeInt64   = 0x07
	typeFloat32 = 0x08
	typeFloat64 = 0x09
	typeString  = 0x0A
	typeData    = 0x0B
)

// Storage flags, high nibble of the schema flag byte.
const (
	flagNamed    = 0x10
	flagConstant = 0x20
	flagPerRow   = 0x40
)

// Decoder decodes @UTF tables. The zero value is ready to use.
type Decoder struct{}

// DecodeTable implements the table-decoder contract consumed by the
// container core.
func (Decoder) DecodeTable(data []byte, enc types.Encoding) (*types.Table, error) {
	return Decode(data, enc)
}

type column struct {
	name  string
	typ   uint8
	flags uint8
	// constant holds the schema-level value for flagConstant columns.
	constant any
}

// Decode parses one @UTF table from data, decoding strings with enc.
func Decode(data []byte, enc types.Encoding) (*types.Table, error) {
	sr := binary.NewSafeReader(bytes.NewReader(data), int64(len(data)), "@UTF table")
	r := binary.NewReader(sr, 0)

	magic, err := binary.NextBE[uint32](r, "table magic")
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, &types.FormatError{Offset: 0, Reason: "bad @UTF magic"}
	}
	if _, err := binary.NextBE[uint32](r, "table size"); err != nil {
		return nil, err
	}

	// All offsets that follow are relative to the end of the 8-byte
	// preamble.
	const base = 8

	if _, err := binary.NextBE[uint16](r, "table version"); err != nil {
		return nil, err
	}
	rowsOffset, err := binary.NextBE[uint16](r, "rows offset")
	if err != nil {
		return nil, err
	}
	stringsOffset, err := binary.NextBE[uint32](r, "string pool offset")
	if err != nil {
		return nil, err
	}
	dataOffset, err := binary.NextBE[uint32](r, "data pool offset")
	if err != nil {
		return nil, err
	}
	nameOffset, err := binary.NextBE[uint32](r, "table name offset")
	if err != nil {
		return nil, err
	}
	fieldCount, err := binary.NextBE[uint16](r, "field count")
	if err != nil {
		return nil, err
	}
	rowSize, err := binary.NextBE[uint16](r, "row size")
	if err != nil {
		return nil, err
	}
	rowCount, err := binary.NextBE[uint32](r, "row count")
	if err != nil {
		return nil, err
	}

	pools := &pools{
		data:    data,
		strings: base + int64(stringsOffset),
		blobs:   base + int64(dataOffset),
		enc:     enc,
	}

	columns := make([]column, fieldCount)
	for i := range columns {
		if err := readColumn(r, pools, &columns[i]); err != nil {
			return nil, err
		}
	}

	table := &types.Table{Rows: make([]types.Row, rowCount)}
	if table.Name, err = pools.stringAt(nameOffset, "table name"); err != nil {
		return nil, err
	}

	for i := range table.Rows {
		row := make(types.Row, fieldCount)
		rr := binary.NewReader(sr, base+int64(rowsOffset)+int64(i)*int64(rowSize))
		for _, col := range columns {
			switch {
			case col.flags&flagPerRow != 0:
				v, err := readValue(rr, pools, col.typ, col.name)
				if err != nil {
					return nil, err
				}
				row[col.name] = v
			case col.flags&flagConstant != 0:
				row[col.name] = col.constant
			default:
				row[col.name] = zeroValue(col.typ)
			}
		}
		table.Rows[i] = row
	}
	return table, nil
}

func readColumn(r *binary.Reader, pools *pools, col *column) error {
	flags, err := binary.NextBE[uint8](r, "column flags")
	if err != nil {
		return err
	}
	col.flags = flags
	col.typ = flags & 0x0F

	if flags&flagNamed != 0 {
		off, err := binary.NextBE[uint32](r, "column name offset")
		if err != nil {
			return err
		}
		if col.name, err = pools.stringAt(off, "column name"); err != nil {
			return err
		}
	}
	if flags&flagConstant != 0 {
		v, err := readValue(r, pools, col.typ, col.name)
		if err != nil {
			return err
		}
		col.constant = v
	}
	return nil
}

func readValue(r *binary.Reader, pools *pools, typ uint8, what string) (any, error) {
	switch typ {
	case typeUint8:
		return binary.NextBE[uint8](r, what)
	case typeInt8:
		v, err := binary.NextBE[uint8](r, what)
		return int8(v), err
	case typeUint16:
		return binary.NextBE[uint16](r, what)
	case typeInt16:
		v, err := binary.NextBE[uint16](r, what)
		return int16(v), err
	case typeUint32:
		return binary.NextBE[uint32](r, what)
	case typeInt32:
		v, err := binary.NextBE[uint32](r, what)
		return int32(v), err
	case typeUint64:
		return binary.NextBE[uint64](r, what)
	case typeInt64:
		v, err := binary.NextBE[uint64](r, what)
		return int64(v), err
	case typeFloat32:
		v, err := binary.NextBE[uint32](r, what)
		return math.Float32frombits(v), err
	case typeFloat64:
		v, err := binary.NextBE[uint64](r, what)
		return math.Float64frombits(v), err
	case typeString:
		off, err := binary.NextBE[uint32](r, what)
		if err != nil {
			return nil, err
		}
		return pools.stringAt(off, what)
	case typeData:
		off, err := binary.NextBE[uint32](r, what)
		if err != nil {
			return nil, err
		}
		length, err := binary.NextBE[uint32](r, what)
		if err != nil {
			return nil, err
		}
		return pools.blobAt(off, length, what)
	default:
		return nil, &types.FormatError{
			Offset: r.Offset(),
			Reason: fmt.Sprintf("unknown column type 0x%02x", typ),
		}
	}
}

func zeroValue(typ uint8) any {
	switch typ {
	case typeUint8:
		return uint8(0)
	case typeInt8:
		return int8(0)
	case typeUint16:
		return uint16(0)
	case typeInt16:
		return int16(0)
	case typeUint32:
		return uint32(0)
	case typeInt32:
		return int32(0)
	case typeUint64:
		return uint64(0)
	case typeInt64:
		return int64(0)
	case typeFloat32:
		return float32(0)
	case typeFloat64:
		return float64(0)
	case typeString:
		return ""
	default:
		return []byte(nil)
	}
}

// pools resolves string and data references against the raw table bytes.
type pools struct {
	data    []byte
	strings int64
	blobs   int64
	enc     types.Encoding
}

func (p *pools) stringAt(off uint32, what string) (string, error) {
	start := p.strings + int64(off)
	if start < 0 || start > int64(len(p.data)) {
		return "", &types.FormatError{
			Offset: start,
			Reason: fmt.Sprintf("%s: string offset out of bounds", what),
		}
	}
	end := bytes.IndexByte(p.data[start:], 0)
	if end < 0 {
		return "", &types.FormatError{
			Offset: start,
			Reason: fmt.Sprintf("%s: unterminated string", what),
		}
	}
	return decodeText(p.data[start:start+int64(end)], p.enc, what)
}

func (p *pools) blobAt(off, length uint32, what string) ([]byte, error) {
	start := p.blobs + int64(off)
	end := start + int64(length)
	if start < 0 || end > int64(len(p.data)) {
		return nil, &types.FormatError{
			Offset: start,
			Reason: fmt.Sprintf("%s: data blob out of bounds", what),
		}
	}
	return bytes.Clone(p.data[start:end]), nil
}

// decodeText converts raw string bytes to UTF-8 per the table's encoding.
// Undecodable input returns a TextDecodeError so callers can retry with a
// different encoding; it is never silently replaced.
func decodeText(raw []byte, enc types.Encoding, what string) (string, error) {
	switch enc {
	case types.EncodingShiftJIS:
		decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
		if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
			return "", &types.TextDecodeError{Encoding: enc, What: what}
		}
		return string(decoded), nil
	case types.EncodingUTF8:
		if !utf8.Valid(raw) {
			return "", &types.TextDecodeError{Encoding: enc, What: what}
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("unsupported table encoding %q", enc)
	}
}
