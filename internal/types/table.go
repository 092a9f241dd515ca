package types

// Encoding names a text encoding used for strings inside a table.
//
// Cue sheets produced by older tooling store names as Shift-JIS (CP932);
// newer ones use UTF-8. The two constants below are the only encodings a
// decoder is required to support.
type Encoding string

const (
	EncodingShiftJIS Encoding = "shift-jis"
	EncodingUTF8     Encoding = "utf-8"
)

// Row is one record of a decoded table: a mapping from field name to a
// typed value. Values are one of: uint8/int8/uint16/int16/uint32/int32/
// uint64/int64, float32, float64, string, or []byte.
type Row map[string]any

// Uint returns the named field widened to uint64. The second result is
// false when the field is absent or not an integer. Signed values are
// reported as their two's-complement bit pattern, matching how the
// container formats overload them.
func (r Row) Uint(name string) (uint64, bool) {
	switch v := r[name].(type) {
	case uint8:
		return uint64(v), true
	case int8:
		return uint64(uint8(v)), true
	case uint16:
		return uint64(v), true
	case int16:
		return uint64(uint16(v)), true
	case uint32:
		return uint64(v), true
	case int32:
		return uint64(uint32(v)), true
	case uint64:
		return v, true
	case int64:
		return uint64(v), true
	}
	return 0, false
}

// String returns the named field as a string.
func (r Row) String(name string) (string, bool) {
	s, ok := r[name].(string)
	return s, ok
}

// Bytes returns the named field as a raw byte blob.
func (r Row) Bytes(name string) ([]byte, bool) {
	b, ok := r[name].([]byte)
	return b, ok
}

// Table is a decoded tabular record set. Rows preserves the order the
// rows appear in the binary table; that order is load-bearing for the
// catalog join.
type Table struct {
	// Name is the table's self-declared name, when the format carries one.
	Name string

	Rows []Row
}

// TableDecoder decodes a self-describing binary table into rows of named,
// typed fields. The container core consumes this contract only; it never
// looks inside the wire format itself.
type TableDecoder interface {
	DecodeTable(data []byte, enc Encoding) (*Table, error)
}

// Disarmer reversibly transforms an encrypted payload in place. When
// unmask is true the fixed masking pattern is also stripped from the
// payload's header region.
type Disarmer interface {
	Disarm(buf []byte, unmask bool)
}

// DisarmerFactory builds a Disarmer from key material and the owning
// archive's mix seed (nil when the archive predates seeded mixing).
// Construction with unusable key material must fail, not degrade to a
// no-op.
type DisarmerFactory interface {
	NewDisarmer(keyMaterial string, mixSeed *uint16) (Disarmer, error)
}
