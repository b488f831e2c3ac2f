// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package heap decodes the four content heaps a metadata tables stream
// indexes into: #Strings, #US, #GUID and #Blob. The tables stream reader
// only hands back the raw index stored in a row; resolving that index
// into an actual string, GUID or blob is this package's job.
package heap

import "errors"

var (
	// ErrOutOfBounds is returned when a heap index falls outside the
	// heap's content, either because the heap is absent or the index
	// reads past its end.
	ErrOutOfBounds = errors.New("heap: index out of bounds")

	// ErrMalformedBlob is returned when a #Blob or #US entry's length
	// prefix cannot be decoded. A decoded length that overruns the heap is
	// reported as ErrOutOfBounds.
	ErrMalformedBlob = errors.New("heap: malformed blob length prefix")
)

// Heaps borrows the four content heaps' raw bytes. Every resolver method
// is a read-only view over these slices; Heaps never copies heap content.
type Heaps struct {
	strings []byte // #Strings: UTF-8, NUL-terminated entries.
	us      []byte // #US: UTF-16LE entries prefixed by a compressed length.
	guid    []byte // #GUID: 16-byte entries, 1-based index.
	blob    []byte // #Blob: entries prefixed by a compressed length.
}

// New wraps the four raw heap byte slices. A missing heap is passed as
// nil; resolving any nonzero index against it then fails with
// ErrOutOfBounds.
func New(strings, us, guid, blob []byte) Heaps {
	return Heaps{strings: strings, us: us, guid: guid, blob: blob}
}

// String resolves a #Strings heap index to its NUL-terminated UTF-8
// value. Index 0 conventionally denotes the empty string.
func (h Heaps) String(index uint32) (string, error) {
	if index == 0 {
		return "", nil
	}
	if uint64(index) >= uint64(len(h.strings)) {
		return "", ErrOutOfBounds
	}
	end := index
	for end < uint32(len(h.strings)) && h.strings[end] != 0 {
		end++
	}
	return string(h.strings[index:end]), nil
}
