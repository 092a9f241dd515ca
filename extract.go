package acb

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// extensionByEncodeType maps waveform encode types to conventional file
// extensions.
var extensionByEncodeType = map[uint8]string{
	EncodeTypeADX:         ".adx",
	EncodeTypeHCA:         ".hca",
	EncodeTypeVAG:         ".vag",
	EncodeTypeATRAC3:      ".at3",
	EncodeTypeBCWAV:       ".bcwav",
	EncodeTypeNintendoDSP: ".dsp",
}

// TrackFilename returns the conventional destination filename for a
// track: its name plus the extension for its encode type. Unrecognized
// encode types fall back to the numeric code itself.
func TrackFilename(t Track) string {
	ext, ok := extensionByEncodeType[t.EncodeType]
	if !ok {
		ext = strconv.Itoa(int(t.EncodeType))
	}
	return t.Name + ext
}

// Extract is the oneshot extraction facade: it opens the container at
// acbPath and writes every track into targetDir, which must already
// exist.
//
// Filenames come from WithNameFunc (default TrackFilename). Any single
// track failing to decode aborts the whole extraction; there is no
// partial-success mode, so corruption surfaces immediately.
func Extract(acbPath, targetDir string, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	f, err := Open(acbPath, opts...)
	if err != nil {
		return err
	}
	defer f.Close()

	var dataOpts []TrackDataOption
	if o.noUnmask {
		dataOpts = append(dataOpts, WithMaskedHeader())
	}

	for _, t := range f.Tracks {
		data, err := f.TrackData(t, dataOpts...)
		if err != nil {
			return fmt.Errorf("track %q: %w", t.Name, err)
		}
		dest := filepath.Join(targetDir, o.nameFunc(t))
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("track %q: %w", t.Name, err)
		}
	}
	return nil
}
