package types

import "fmt"

// FormatError is returned when the container structure itself is invalid
// or uses a feature this library does not implement: bad magic bytes, an
// unsupported field width, an unimplemented cue reference type. It is
// always fatal; the input cannot be partially decoded.
type FormatError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid format at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("%s: invalid format at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// NotFoundError is returned when an archive lookup finds no entry for the
// requested ID. Fatal for that lookup only; the archive itself is fine.
type NotFoundError struct {
	Archive string
	ID      uint32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("id %d not found in archive %s", e.ID, e.Archive)
}

// ConsistencyError signals that the container's tables disagree with each
// other, e.g. the waveform table holds rows that no cue ever referenced.
// Treated as a corruption signal, never silently ignored.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return "inconsistent container: " + e.Reason
}

// UsageError indicates caller misuse rather than bad data: operating on a
// closed file, forcing decryption with no keys, requesting a streamed
// track when no external archive is attached.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// TextDecodeError is returned by table decoders when string data cannot be
// represented in the configured encoding. File opening uses it to decide
// whether to retry with the fallback encoding.
type TextDecodeError struct {
	Encoding Encoding
	What     string
}

func (e *TextDecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s as %s", e.What, e.Encoding)
}
