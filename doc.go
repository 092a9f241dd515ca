// Package acb reads ACB cue-sheet containers and extracts the audio
// tracks they describe.
//
// An ACB file is a cue sheet: a binary table whose rows name logical
// sound events (cues) and map them onto encoded audio payloads
// (waveforms). The payloads themselves live in AFS2 sub-archives, either
// embedded inside the cue sheet or in a sibling .awb file for streamed
// tracks.
//
// # Quick start
//
// Extract every track from a container:
//
//	err := acb.Extract("bgm.acb", "out/")
//
// Or open the container and pick tracks yourself:
//
//	f, err := acb.Open("bgm.acb")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer f.Close()
//
//	for _, t := range f.Tracks {
//		data, err := f.TrackData(t)
//		// ...
//	}
//
// When a sibling bgm.awb exists it is attached automatically; pass
// WithExternalAWB to point somewhere else.
//
// # Encrypted payloads
//
// Encrypted HCA payloads can be decrypted ("disarmed") during retrieval.
// The cipher engine is pluggable: register one with WithDisarmerFactory
// and supply key material with WithKeys. By default TrackData decrypts
// whenever a context is available; WithDisarm forces the decision either
// way.
//
// # Text encodings
//
// Cue names in older containers are Shift-JIS. Opening first tries
// Shift-JIS and falls back to UTF-8 if the names do not decode; pass
// WithEncoding to pin one encoding and disable the fallback.
//
// # Errors
//
// All failures are fatal and typed: FormatError for malformed or
// unsupported input, NotFoundError for missing archive entries,
// ConsistencyError for tables that disagree with each other, and
// UsageError for caller mistakes. There are no partial results.
package acb
