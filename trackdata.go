package acb

import (
	"fmt"

	"github.com/thefrozenfishy/acb/internal/afs2"
)

// TrackDataOption configures a single TrackData call.
type TrackDataOption func(*trackDataOptions)

type trackDataOptions struct {
	disarm *bool // nil = decrypt iff a context is available
	unmask bool
}

// WithDisarm forces the decryption decision. true decrypts and fails
// with a UsageError when no key material was supplied; false returns the
// payload as stored even when keys are available. Without this option,
// payloads are decrypted exactly when a decryption context exists.
func WithDisarm(disarm bool) TrackDataOption {
	return func(o *trackDataOptions) {
		o.disarm = &disarm
	}
}

// WithMaskedHeader leaves the fixed masking pattern on the payload's
// header region when decrypting. Only meaningful when decryption runs.
func WithMaskedHeader() TrackDataOption {
	return func(o *trackDataOptions) {
		o.unmask = false
	}
}

// TrackData returns the encoded audio payload for a track as a fresh
// buffer.
//
// The backing archive is chosen by the track's Streaming flag: streamed
// tracks read from the external archive, the rest from the embedded one.
// Requesting a streamed track with no external archive attached (or vice
// versa) is a UsageError.
func (f *File) TrackData(t Track, opts ...TrackDataOption) ([]byte, error) {
	o := &trackDataOptions{unmask: true}
	for _, opt := range opts {
		opt(o)
	}

	if f.closed {
		return nil, &UsageError{Reason: "container is closed"}
	}

	var archive *afs2.Archive
	var slot *disarmSlot
	if t.Streaming {
		if f.external == nil {
			return nil, &UsageError{
				Reason: fmt.Sprintf("track %q is streamed, but no external AWB is attached", t.Name),
			}
		}
		archive, slot = f.external, &f.disarmExternal
	} else {
		if f.embedded == nil {
			return nil, &UsageError{
				Reason: fmt.Sprintf("track %q is internal, but the container has no embedded AWB", t.Name),
			}
		}
		archive, slot = f.embedded, &f.disarmEmbedded
	}

	buf, err := archive.Data(t.ID)
	if err != nil {
		return nil, err
	}

	disarmer, err := f.disarmer(slot, archive)
	if err != nil {
		return nil, err
	}
	if o.disarm != nil && *o.disarm && disarmer == nil {
		return nil, &UsageError{
			Reason: "disarm was explicitly requested, but no keys were provided; " +
				"drop the WithDisarm option or supply keys with WithKeys",
		}
	}

	run := disarmer != nil
	if o.disarm != nil {
		run = *o.disarm && disarmer != nil
	}
	if run {
		disarmer.Disarm(buf, o.unmask)
	}
	return buf, nil
}

// disarmSlot caches a lazily-built decryption context. built is set even
// when the context resolves to nil (no keys, or no such archive), so the
// decision is made once per archive for the life of the File.
type disarmSlot struct {
	built bool
	d     Disarmer
}

func (f *File) disarmer(slot *disarmSlot, archive *afs2.Archive) (Disarmer, error) {
	if slot.built {
		return slot.d, nil
	}
	if f.keys == "" || archive == nil {
		slot.built = true
		return nil, nil
	}
	d, err := f.factory.NewDisarmer(f.keys, archive.MixSeed)
	if err != nil {
		return nil, fmt.Errorf("build disarm context: %w", err)
	}
	slot.d = d
	slot.built = true
	return d, nil
}
