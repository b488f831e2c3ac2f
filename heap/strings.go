// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package heap

import "golang.org/x/text/encoding/unicode"

// UserString resolves a #US heap index to the UTF-16LE string it stores.
// Each entry is a compressed length prefix (byte count, including the
// trailing flag byte) followed by UTF-16LE code units and a single
// trailing byte whose low bit flags whether any character requires
// special handling when round-tripped back to a managed string; that
// flag carries no information for display purposes and is dropped here.
func (h Heaps) UserString(index uint32) (string, error) {
	if index == 0 {
		return "", nil
	}
	if uint64(index) >= uint64(len(h.us)) {
		return "", ErrOutOfBounds
	}
	length, consumed, err := decodeCompressedLength(h.us[index:])
	if err != nil {
		return "", err
	}
	start := index + consumed
	end := uint64(start) + uint64(length)
	if end > uint64(len(h.us)) {
		return "", ErrOutOfBounds
	}
	raw := h.us[start:end]
	if length > 0 {
		raw = raw[:length-1] // drop the trailing flag byte
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := decoder.Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
