package acb

import (
	"encoding/binary"
	"fmt"
)

// Waveform encode types seen in the wild.
const (
	EncodeTypeADX         = 0
	EncodeTypeHCA         = 2
	EncodeTypeVAG         = 7
	EncodeTypeATRAC3      = 8
	EncodeTypeBCWAV       = 9
	EncodeTypeNintendoDSP = 13
)

// Track describes one extractable audio track. Tracks are immutable; the
// slice on File owns them and retrieval takes them by value.
type Track struct {
	// ID locates the payload in the backing archive. For streamed tracks
	// it is the shared stream AWB ID, otherwise the local slot ID.
	ID uint32

	// Name is the cue's display name, suffixed with a 1-based two-digit
	// index when the cue owns more than one waveform.
	Name string

	// EncodeType is the waveform codec kind (see the EncodeType
	// constants).
	EncodeType uint8

	// Streaming reports whether the payload lives in the external
	// archive rather than the embedded one.
	Streaming bool
}

// buildTrackList joins the four cue-sheet sub-tables into the ordered
// track list.
//
// The join is driven by a single running cursor into the synth table:
// each cue consumes as many synth rows, in order, as it declares related
// waveforms. Cue rows must be processed in table order or the cursor
// arithmetic breaks, so that order is authoritative for the output too.
func buildTrackList(cues, names, wavs, syns *Table) ([]Track, error) {
	nameByCueIndex := make(map[uint64]string, len(names.Rows))
	for _, row := range names.Rows {
		idx, ok := row.Uint("CueIndex")
		if !ok {
			return nil, &FormatError{Reason: "cue name row has no CueIndex"}
		}
		name, ok := row.String("CueName")
		if !ok {
			return nil, &FormatError{Reason: "cue name row has no CueName"}
		}
		nameByCueIndex[idx] = name
	}

	var tracks []Track
	synCursor := 0
	for _, cue := range cues.Rows {
		refType, ok := cue.Uint("ReferenceType")
		if !ok {
			return nil, &FormatError{Reason: "cue row has no ReferenceType"}
		}
		if refType != 3 && refType != 8 {
			return nil, &FormatError{
				Reason: fmt.Sprintf("cue reference type %d not implemented", refType),
			}
		}
		numWaveforms, ok := cue.Uint("NumRelatedWaveforms")
		if !ok {
			return nil, &FormatError{Reason: "cue row has no NumRelatedWaveforms"}
		}

		baseName := "UNKNOWN"
		if refIndex, ok := cue.Uint("ReferenceIndex"); ok {
			if name, ok := nameByCueIndex[refIndex]; ok {
				baseName = name
			}
		}

		for i := uint64(0); i < numWaveforms; i++ {
			if synCursor >= len(syns.Rows) {
				return nil, &FormatError{
					Reason: fmt.Sprintf("synth table exhausted: need row %d of %d", synCursor, len(syns.Rows)),
				}
			}
			ref, ok := syns.Rows[synCursor].Bytes("ReferenceItems")
			synCursor++
			if !ok || len(ref) < 4 {
				return nil, &FormatError{Reason: "synth row has no usable ReferenceItems"}
			}
			// Two big-endian uint16s; only the second is meaningful here:
			// the index into the waveform table.
			wavIndex := int(binary.BigEndian.Uint16(ref[2:4]))
			if wavIndex >= len(wavs.Rows) {
				return nil, &FormatError{
					Reason: fmt.Sprintf("waveform index %d out of range (%d rows)", wavIndex, len(wavs.Rows)),
				}
			}
			wav := wavs.Rows[wavIndex]

			// Newer sheets call the local slot ID MemoryAwbId; older ones
			// just Id.
			localID, ok := wav.Uint("Id")
			if !ok {
				if localID, ok = wav.Uint("MemoryAwbId"); !ok {
					return nil, &FormatError{Reason: "waveform row has neither Id nor MemoryAwbId"}
				}
			}
			streamID, ok := wav.Uint("StreamAwbId")
			if !ok {
				return nil, &FormatError{Reason: "waveform row has no StreamAwbId"}
			}
			encodeType, ok := wav.Uint("EncodeType")
			if !ok {
				return nil, &FormatError{Reason: "waveform row has no EncodeType"}
			}
			streamingFlag, ok := wav.Uint("Streaming")
			if !ok {
				return nil, &FormatError{Reason: "waveform row has no Streaming flag"}
			}
			streaming := streamingFlag != 0

			id := localID
			if streaming {
				id = streamID
			}
			name := baseName
			if numWaveforms > 1 {
				name = fmt.Sprintf("%s_%02d", baseName, i+1)
			}

			tracks = append(tracks, Track{
				ID:         uint32(id),
				Name:       name,
				EncodeType: uint8(encodeType),
				Streaming:  streaming,
			})
		}
	}

	// Every waveform row should have been reached through some cue.
	// Leftovers mean the sheet references waveforms in a way we do not
	// decode, so surface it instead of dropping audio on the floor.
	if len(wavs.Rows) > len(tracks) {
		return nil, &ConsistencyError{
			Reason: fmt.Sprintf("%d waveform rows but only %d tracks produced", len(wavs.Rows), len(tracks)),
		}
	}
	return tracks, nil
}
