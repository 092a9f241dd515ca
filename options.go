package acb

import "io"

// Option configures behavior when opening a container.
//
// Options use the functional options pattern:
//
//	f, err := acb.Open("bgm.acb",
//	    acb.WithKeys("0x1234567890abcdef"),
//	    acb.WithEncoding(acb.EncodingUTF8),
//	)
type Option func(*openOptions)

// openOptions holds configuration for opening containers.
type openOptions struct {
	encoding     Encoding // "" = try Shift-JIS, fall back to UTF-8
	keys         string
	factory      DisarmerFactory
	decoder      TableDecoder
	externalPath string
	externalR    io.ReaderAt
	externalSize int64
	noSiblingAWB bool

	// extraction facade only
	nameFunc func(Track) string
	noUnmask bool
}

func defaultOptions() *openOptions {
	return &openOptions{
		nameFunc: TrackFilename,
	}
}

// WithEncoding pins the text encoding used for cue names. By default
// opening tries Shift-JIS first and falls back to UTF-8 when names fail
// to decode; with an explicit encoding only that encoding is used and
// there is no fallback.
func WithEncoding(enc Encoding) Option {
	return func(o *openOptions) {
		o.encoding = enc
	}
}

// WithKeys supplies key material for payload decryption, in one of the
// forms "0xLOWBYTES,0xHIGHBYTES" or "0xHIGHBYTESLOWBYTES". Requires a
// disarmer factory (see WithDisarmerFactory); without keys, payloads are
// returned as stored.
func WithKeys(keys string) Option {
	return func(o *openOptions) {
		o.keys = keys
	}
}

// WithDisarmerFactory registers the cipher engine used to decrypt
// payloads. The factory is invoked lazily, at most once per backing
// archive, with the keys from WithKeys and that archive's mix seed.
func WithDisarmerFactory(factory DisarmerFactory) Option {
	return func(o *openOptions) {
		o.factory = factory
	}
}

// WithTableDecoder replaces the default @UTF table decoder. Mainly
// useful for tests that feed synthetic tables through the catalog.
func WithTableDecoder(decoder TableDecoder) Option {
	return func(o *openOptions) {
		o.decoder = decoder
	}
}

// WithExternalAWB attaches the named file as the external (streaming)
// archive. It is opened and owned by the File. This disables the
// automatic sibling .awb discovery.
func WithExternalAWB(path string) Option {
	return func(o *openOptions) {
		o.externalPath = path
		o.externalR = nil
	}
}

// WithExternalAWBReader attaches an already-open source as the external
// archive. The caller keeps ownership; Close will not touch it.
func WithExternalAWBReader(r io.ReaderAt, size int64) Option {
	return func(o *openOptions) {
		o.externalR = r
		o.externalSize = size
		o.externalPath = ""
	}
}

// WithoutSiblingAWB disables the automatic attachment of a sibling .awb
// file next to the opened .acb.
func WithoutSiblingAWB() Option {
	return func(o *openOptions) {
		o.noSiblingAWB = true
	}
}

// WithNameFunc sets the destination-filename generator used by Extract.
// The returned name is joined under the target directory, so it should
// be a bare filename. Default is TrackFilename.
func WithNameFunc(nameFunc func(Track) string) Option {
	return func(o *openOptions) {
		o.nameFunc = nameFunc
	}
}

// WithMaskedHeaders makes Extract leave the fixed masking pattern on
// payload headers when decrypting. Has no effect unless decryption runs.
func WithMaskedHeaders() Option {
	return func(o *openOptions) {
		o.noUnmask = true
	}
}
