package acb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/thefrozenfishy/acb/internal/afs2"
	"github.com/thefrozenfishy/acb/utf"
)

// File represents an opened ACB container.
//
// A File owns the parsed cue sheet, the embedded AFS2 archive (when the
// sheet carries one), optionally an external AFS2 archive for streamed
// tracks, and lazily-built decryption contexts for each archive.
//
// File is not safe for concurrent use; callers needing that must add
// their own synchronization.
//
// Always call Close when done. Close only releases sources the File
// opened itself; sources supplied already-open through
// WithExternalAWBReader or OpenReader stay open.
type File struct {
	// Path to the container, or a synthetic label for reader sources.
	Path string

	// Sheet is the decoded top-level cue-sheet table.
	Sheet *Table

	// Tracks is the ordered track list joined from the sheet's
	// sub-tables.
	Tracks []Track

	// Encoding is the text encoding the sheet was decoded with, after
	// any fallback.
	Encoding Encoding

	embedded *afs2.Archive
	external *afs2.Archive

	keys    string
	factory DisarmerFactory

	disarmEmbedded disarmSlot
	disarmExternal disarmSlot

	owned  []io.Closer
	closed bool
}

// Open opens an ACB container from a file path.
//
// Unless disabled with WithoutSiblingAWB or overridden with
// WithExternalAWB, a sibling .awb file next to the container is attached
// automatically as the external archive when it exists.
func Open(path string, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	stat, err := src.Stat()
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("stat container: %w", err)
	}

	if o.externalPath == "" && o.externalR == nil && !o.noSiblingAWB {
		o.externalPath = FindAWB(path)
	}

	f, err := open(src, stat.Size(), path, o)
	if err != nil {
		src.Close()
		return nil, err
	}
	f.owned = append(f.owned, src)
	return f, nil
}

// OpenReader opens an ACB container from an already-open source. The
// caller keeps ownership of r; Close will not release it. path labels
// the source in errors.
func OpenReader(r io.ReaderAt, size int64, path string, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return open(r, size, path, o)
}

func open(src io.ReaderAt, size int64, path string, o *openOptions) (*File, error) {
	if o.keys != "" && o.factory == nil {
		return nil, &UsageError{Reason: "WithKeys requires a disarmer factory (see WithDisarmerFactory)"}
	}

	decoder := o.decoder
	if decoder == nil {
		decoder = utf.Decoder{}
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(src, 0, size), data); err != nil {
		return nil, fmt.Errorf("%s: read container: %w", path, err)
	}

	f := &File{
		Path:    path,
		keys:    o.keys,
		factory: o.factory,
	}

	// Try the legacy encoding first, then the universal one, unless the
	// caller pinned an encoding. The whole sheet (including sub-tables)
	// is decoded with a single encoding; the two are never mixed within
	// one file.
	encodings := []Encoding{EncodingShiftJIS, EncodingUTF8}
	if o.encoding != "" {
		encodings = []Encoding{o.encoding}
	}

	for i, enc := range encodings {
		err := f.parseSheet(decoder, data, enc)
		if err == nil {
			f.Encoding = enc
			break
		}
		var decodeErr *TextDecodeError
		if !errors.As(err, &decodeErr) || i == len(encodings)-1 {
			return nil, err
		}
	}

	if err := f.attachExternal(o); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// parseSheet decodes the cue sheet and everything derived from it with
// one encoding. Any piece failing to text-decode fails the whole attempt
// so the caller can retry with the fallback encoding.
func (f *File) parseSheet(decoder TableDecoder, data []byte, enc Encoding) error {
	sheet, err := decoder.DecodeTable(data, enc)
	if err != nil {
		return err
	}
	if len(sheet.Rows) == 0 {
		return &FormatError{Path: f.Path, Reason: "cue sheet has no rows"}
	}
	header := sheet.Rows[0]

	tables := make(map[string]*Table, 4)
	for _, name := range []string{"CueTable", "CueNameTable", "WaveformTable", "SynthTable"} {
		blob, ok := header.Bytes(name)
		if !ok {
			return &FormatError{Path: f.Path, Reason: "cue sheet has no " + name}
		}
		if tables[name], err = decoder.DecodeTable(blob, enc); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
	}

	tracks, err := buildTrackList(tables["CueTable"], tables["CueNameTable"], tables["WaveformTable"], tables["SynthTable"])
	if err != nil {
		return err
	}

	var embedded *afs2.Archive
	if blob, ok := header.Bytes("AwbFile"); ok && len(blob) > 0 {
		embedded, err = afs2.Parse(bytes.NewReader(blob), int64(len(blob)), f.Path+" (embedded AWB)")
		if err != nil {
			return err
		}
	}

	f.Sheet = sheet
	f.Tracks = tracks
	f.embedded = embedded
	return nil
}

func (f *File) attachExternal(o *openOptions) error {
	switch {
	case o.externalR != nil:
		external, err := afs2.Parse(o.externalR, o.externalSize, f.Path+" (external AWB)")
		if err != nil {
			return err
		}
		f.external = external
	case o.externalPath != "":
		src, err := os.Open(o.externalPath)
		if err != nil {
			return fmt.Errorf("open external AWB: %w", err)
		}
		stat, err := src.Stat()
		if err != nil {
			src.Close()
			return fmt.Errorf("stat external AWB: %w", err)
		}
		external, err := afs2.Parse(src, stat.Size(), o.externalPath)
		if err != nil {
			src.Close()
			return err
		}
		f.external = external
		f.owned = append(f.owned, src)
	}
	return nil
}

// FindAWB returns the path of the sibling .awb archive for an .acb path,
// or "" when the path has no .acb suffix or no such file exists.
func FindAWB(path string) string {
	const suffix = ".acb"
	if len(path) <= len(suffix) || path[len(path)-len(suffix):] != suffix {
		return ""
	}
	awbPath := path[:len(path)-len(suffix)] + ".awb"
	if _, err := os.Stat(awbPath); err != nil {
		return ""
	}
	return awbPath
}

// Close releases any sources the File opened itself. Sources supplied
// already-open by the caller are left untouched. Close is idempotent;
// calls after the first are no-ops.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	var err error
	for _, c := range f.owned {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	f.owned = nil
	return err
}
