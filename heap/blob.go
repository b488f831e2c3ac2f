// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package heap

// decodeCompressedLength decodes an ECMA-335 §II.23.2 compressed unsigned
// integer used as a #Blob or #US entry's length prefix, returning the
// decoded length and the number of prefix bytes consumed.
func decodeCompressedLength(b []byte) (length, consumed uint32, err error) {
	if len(b) == 0 {
		return 0, 0, ErrMalformedBlob
	}
	first := b[0]
	switch {
	case first&0x80 == 0:
		return uint32(first), 1, nil
	case first&0xC0 == 0x80:
		if len(b) < 2 {
			return 0, 0, ErrMalformedBlob
		}
		return (uint32(first&0x3F) << 8) | uint32(b[1]), 2, nil
	case first&0xE0 == 0xC0:
		if len(b) < 4 {
			return 0, 0, ErrMalformedBlob
		}
		return (uint32(first&0x1F) << 24) | (uint32(b[1]) << 16) | (uint32(b[2]) << 8) | uint32(b[3]), 4, nil
	default:
		return 0, 0, ErrMalformedBlob
	}
}

// Blob resolves a #Blob heap index to its raw content, with the
// compressed length prefix already stripped. Index 0 denotes the empty
// blob.
func (h Heaps) Blob(index uint32) ([]byte, error) {
	if index == 0 {
		return nil, nil
	}
	if uint64(index) >= uint64(len(h.blob)) {
		return nil, ErrOutOfBounds
	}
	length, consumed, err := decodeCompressedLength(h.blob[index:])
	if err != nil {
		return nil, err
	}
	start := index + consumed
	end := uint64(start) + uint64(length)
	if end > uint64(len(h.blob)) {
		return nil, ErrOutOfBounds
	}
	return h.blob[start:end], nil
}
