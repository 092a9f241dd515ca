package acb_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/thefrozenfishy/acb"
	"github.com/thefrozenfishy/acb/internal/afs2/afs2test"
)

// fakeDecoder serves canned tables keyed by the raw bytes it is asked to
// decode, letting tests drive the container core with synthetic row sets
// and marker blobs instead of real @UTF bytes.
type fakeDecoder struct {
	tables      map[string]*acb.Table
	failWithEnc map[acb.Encoding]bool
}

func (d fakeDecoder) DecodeTable(data []byte, enc acb.Encoding) (*acb.Table, error) {
	if d.failWithEnc[enc] {
		return nil, &acb.TextDecodeError{Encoding: enc, What: "cue name"}
	}
	table, ok := d.tables[string(data)]
	if !ok {
		return nil, fmt.Errorf("fakeDecoder: no table for %d-byte input", len(data))
	}
	return table, nil
}

// xorDisarmer flips every byte with a fixed key and records how it was
// invoked.
type xorDisarmer struct {
	key        byte
	calls      int
	lastUnmask bool
}

func (d *xorDisarmer) Disarm(buf []byte, unmask bool) {
	for i := range buf {
		buf[i] ^= d.key
	}
	d.calls++
	d.lastUnmask = unmask
}

type recordingFactory struct {
	constructed int
	seeds       []*uint16
	disarmer    *xorDisarmer
}

func (f *recordingFactory) NewDisarmer(keys string, seed *uint16) (acb.Disarmer, error) {
	f.constructed++
	f.seeds = append(f.seeds, seed)
	if f.disarmer == nil {
		f.disarmer = &xorDisarmer{key: 0x5A}
	}
	return f.disarmer, nil
}

const (
	sheetMarker = "SHEET"
	embeddedPCM = "EMBEDDED-AUDIO-DATA"
	streamedPCM = "STREAMED-AUDIO-DATA"
)

// testContainer builds the fake-table fixture: one embedded track
// (id 0, "intro") and one streamed track (stream id 1, "theme").
func testContainer() (fakeDecoder, []byte) {
	embedded := afs2test.Build(afs2test.Spec{
		MixSeed:  0x1234,
		Payloads: []afs2test.Payload{{ID: 0, Data: []byte(embeddedPCM)}},
	})

	sheet := &acb.Table{Rows: []acb.Row{{
		"CueTable":      []byte("CUE"),
		"CueNameTable":  []byte("NAM"),
		"WaveformTable": []byte("WAV"),
		"SynthTable":    []byte("SYN"),
		"AwbFile":       embedded,
	}}}

	decoder := fakeDecoder{tables: map[string]*acb.Table{
		sheetMarker: sheet,
		"CUE": {Rows: []acb.Row{
			{"ReferenceType": uint8(3), "ReferenceIndex": uint16(0), "NumRelatedWaveforms": uint16(1)},
			{"ReferenceType": uint8(3), "ReferenceIndex": uint16(1), "NumRelatedWaveforms": uint16(1)},
		}},
		"NAM": {Rows: []acb.Row{
			{"CueIndex": uint16(0), "CueName": "intro"},
			{"CueIndex": uint16(1), "CueName": "theme"},
		}},
		"WAV": {Rows: []acb.Row{
			{"Id": uint16(0), "StreamAwbId": uint16(0), "EncodeType": uint8(acb.EncodeTypeHCA), "Streaming": uint8(0)},
			{"Id": uint16(0), "StreamAwbId": uint16(1), "EncodeType": uint8(acb.EncodeTypeADX), "Streaming": uint8(1)},
		}},
		"SYN": {Rows: []acb.Row{
			{"ReferenceItems": []byte{0, 0, 0, 0}},
			{"ReferenceItems": []byte{0, 0, 0, 1}},
		}},
	}}

	external := afs2test.Build(afs2test.Spec{
		MixSeed:  0x5678,
		Payloads: []afs2test.Payload{{ID: 1, Data: []byte(streamedPCM)}},
	})
	return decoder, external
}

func openTestFile(t *testing.T, opts ...acb.Option) *acb.File {
	t.Helper()
	decoder, _ := testContainer()
	opts = append([]acb.Option{acb.WithTableDecoder(decoder)}, opts...)
	f, err := acb.OpenReader(bytes.NewReader([]byte(sheetMarker)), int64(len(sheetMarker)), "test.acb", opts...)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func findTrack(t *testing.T, f *acb.File, name string) acb.Track {
	t.Helper()
	for _, track := range f.Tracks {
		if track.Name == name {
			return track
		}
	}
	t.Fatalf("no track named %q", name)
	return acb.Track{}
}

func TestTrackDataEmbedded(t *testing.T) {
	f := openTestFile(t)

	data, err := f.TrackData(findTrack(t, f, "intro"))
	if err != nil {
		t.Fatalf("TrackData failed: %v", err)
	}
	if string(data) != embeddedPCM {
		t.Errorf("TrackData = %q, want %q", data, embeddedPCM)
	}
}

func TestTrackDataStreamedWithoutExternal(t *testing.T) {
	f := openTestFile(t)

	_, err := f.TrackData(findTrack(t, f, "theme"))
	var usageErr *acb.UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("got %v, want UsageError for streamed track with no external AWB", err)
	}
}

func TestTrackDataStreamed(t *testing.T) {
	_, external := testContainer()
	f := openTestFile(t, acb.WithExternalAWBReader(bytes.NewReader(external), int64(len(external))))

	data, err := f.TrackData(findTrack(t, f, "theme"))
	if err != nil {
		t.Fatalf("TrackData failed: %v", err)
	}
	if string(data) != streamedPCM {
		t.Errorf("TrackData = %q, want %q", data, streamedPCM)
	}
}

func TestTrackDataDisarm(t *testing.T) {
	xor := func(s string, key byte) string {
		b := []byte(s)
		for i := range b {
			b[i] ^= key
		}
		return string(b)
	}

	t.Run("default decrypts when keys are available", func(t *testing.T) {
		factory := &recordingFactory{}
		f := openTestFile(t, acb.WithKeys("0xCAFE"), acb.WithDisarmerFactory(factory))

		data, err := f.TrackData(findTrack(t, f, "intro"))
		if err != nil {
			t.Fatalf("TrackData failed: %v", err)
		}
		if string(data) != xor(embeddedPCM, 0x5A) {
			t.Errorf("payload was not transformed")
		}
		if factory.disarmer.calls != 1 {
			t.Errorf("disarmer called %d times, want exactly 1", factory.disarmer.calls)
		}
		if !factory.disarmer.lastUnmask {
			t.Error("unmask = false, want true by default")
		}
	})

	t.Run("WithDisarm(false) skips despite keys", func(t *testing.T) {
		factory := &recordingFactory{}
		f := openTestFile(t, acb.WithKeys("0xCAFE"), acb.WithDisarmerFactory(factory))

		data, err := f.TrackData(findTrack(t, f, "intro"), acb.WithDisarm(false))
		if err != nil {
			t.Fatalf("TrackData failed: %v", err)
		}
		if string(data) != embeddedPCM {
			t.Errorf("TrackData = %q, want untransformed payload", data)
		}
	})

	t.Run("WithDisarm(true) without keys is a usage error", func(t *testing.T) {
		f := openTestFile(t)

		_, err := f.TrackData(findTrack(t, f, "intro"), acb.WithDisarm(true))
		var usageErr *acb.UsageError
		if !errors.As(err, &usageErr) {
			t.Fatalf("got %v, want UsageError", err)
		}
	})

	t.Run("default without keys returns stored bytes", func(t *testing.T) {
		f := openTestFile(t)

		data, err := f.TrackData(findTrack(t, f, "intro"))
		if err != nil {
			t.Fatalf("TrackData failed: %v", err)
		}
		if string(data) != embeddedPCM {
			t.Errorf("TrackData = %q, want %q", data, embeddedPCM)
		}
	})

	t.Run("WithMaskedHeader is passed through", func(t *testing.T) {
		factory := &recordingFactory{}
		f := openTestFile(t, acb.WithKeys("0xCAFE"), acb.WithDisarmerFactory(factory))

		if _, err := f.TrackData(findTrack(t, f, "intro"), acb.WithMaskedHeader()); err != nil {
			t.Fatalf("TrackData failed: %v", err)
		}
		if factory.disarmer.lastUnmask {
			t.Error("unmask = true, want false with WithMaskedHeader")
		}
	})
}

func TestDisarmContextBuiltOnce(t *testing.T) {
	factory := &recordingFactory{}
	f := openTestFile(t, acb.WithKeys("0xCAFE"), acb.WithDisarmerFactory(factory))

	intro := findTrack(t, f, "intro")
	for i := 0; i < 3; i++ {
		if _, err := f.TrackData(intro); err != nil {
			t.Fatalf("TrackData #%d failed: %v", i, err)
		}
	}

	if factory.constructed != 1 {
		t.Errorf("factory invoked %d times, want once per archive", factory.constructed)
	}
	if len(factory.seeds) != 1 || factory.seeds[0] == nil || *factory.seeds[0] != 0x1234 {
		t.Errorf("factory seeds = %v, want the embedded archive's mix seed 0x1234", factory.seeds)
	}
}

func TestOpenKeysWithoutFactory(t *testing.T) {
	decoder, _ := testContainer()
	_, err := acb.OpenReader(bytes.NewReader([]byte(sheetMarker)), int64(len(sheetMarker)), "test.acb",
		acb.WithTableDecoder(decoder), acb.WithKeys("0xCAFE"))
	var usageErr *acb.UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("got %v, want UsageError for keys without a factory", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	f := openTestFile(t)

	if err := f.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	_, err := f.TrackData(findTrack(t, f, "intro"))
	var usageErr *acb.UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("got %v, want UsageError on a closed container", err)
	}
}

func TestEncodingFallback(t *testing.T) {
	decoder, _ := testContainer()
	decoder.failWithEnc = map[acb.Encoding]bool{acb.EncodingShiftJIS: true}

	f, err := acb.OpenReader(bytes.NewReader([]byte(sheetMarker)), int64(len(sheetMarker)), "test.acb",
		acb.WithTableDecoder(decoder))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	if f.Encoding != acb.EncodingUTF8 {
		t.Errorf("Encoding = %q, want fallback to %q", f.Encoding, acb.EncodingUTF8)
	}
}

func TestExplicitEncodingNoFallback(t *testing.T) {
	decoder, _ := testContainer()
	decoder.failWithEnc = map[acb.Encoding]bool{acb.EncodingShiftJIS: true}

	_, err := acb.OpenReader(bytes.NewReader([]byte(sheetMarker)), int64(len(sheetMarker)), "test.acb",
		acb.WithTableDecoder(decoder), acb.WithEncoding(acb.EncodingShiftJIS))
	var decodeErr *acb.TextDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("got %v, want TextDecodeError with a pinned encoding", err)
	}
}

func TestTrackDataUnknownID(t *testing.T) {
	decoder, _ := testContainer()
	f, err := acb.OpenReader(bytes.NewReader([]byte(sheetMarker)), int64(len(sheetMarker)), "test.acb",
		acb.WithTableDecoder(decoder))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	_, err = f.TrackData(acb.Track{ID: 99, Name: "ghost"})
	var notFound *acb.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}
