package acb

import (
	"github.com/thefrozenfishy/acb/internal/types"
)

// Table is an alias to types.Table, the decoded form of a cue sheet or
// one of its sub-tables.
type Table = types.Table

// Row is an alias to types.Row, one record of a decoded table.
type Row = types.Row

// Encoding is an alias to types.Encoding.
type Encoding = types.Encoding

// Supported table text encodings.
const (
	EncodingShiftJIS = types.EncodingShiftJIS
	EncodingUTF8     = types.EncodingUTF8
)

// TableDecoder decodes a self-describing binary table into rows of named,
// typed fields. The utf package provides the default implementation; the
// core depends only on this contract.
type TableDecoder = types.TableDecoder

// Disarmer reversibly transforms an encrypted payload buffer in place.
type Disarmer = types.Disarmer

// DisarmerFactory builds a Disarmer from key material and an archive's
// mix seed. Implementations live outside this module; register one with
// WithDisarmerFactory to enable decryption.
type DisarmerFactory = types.DisarmerFactory
