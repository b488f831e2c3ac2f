// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package heap

import "fmt"

// GUID is a 16-byte Windows GUID in its on-disk byte layout.
type GUID [16]byte

// String formats a GUID in the canonical
// "XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX" form. The first three fields
// are little-endian on disk; the last two are a flat byte sequence.
func (g GUID) String() string {
	return fmt.Sprintf("%08X-%04X-%04X-%04X-%012X",
		uint32(g[3])<<24|uint32(g[2])<<16|uint32(g[1])<<8|uint32(g[0]),
		uint16(g[5])<<8|uint16(g[4]),
		uint16(g[7])<<8|uint16(g[6]),
		uint16(g[8])<<8|uint16(g[9]),
		g[10:16])
}

// GUID resolves a #GUID heap index to its 16-byte value. Indices are
// 1-based; index 0 denotes the absent GUID.
func (h Heaps) GUID(index uint32) (GUID, error) {
	var g GUID
	if index == 0 {
		return g, nil
	}
	start := (index - 1) * 16
	end := uint64(start) + 16
	if end > uint64(len(h.guid)) {
		return g, ErrOutOfBounds
	}
	copy(g[:], h.guid[start:end])
	return g, nil
}
