// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

import "encoding/binary"

// buildStream assembles a synthetic #~ stream: the 24-byte header, the
// packed Rows[] vector implied by valid, and then payload (the caller's
// raw, pre-packed row bytes for every valid table in ascending order).
func buildStream(valid, sorted uint64, heapSizes uint8, rowCounts map[TableNumber]uint32, payload []byte) []byte {
	buf := make([]byte, 0, streamHeaderSize+4*popcountValid(valid)+len(payload))

	header := make([]byte, streamHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], 0)  // Reserved0
	header[4] = 2                                  // MajorVersion
	header[5] = 0                                  // MinorVersion
	header[6] = heapSizes
	header[7] = 1 // Reserved1
	binary.LittleEndian.PutUint64(header[8:16], valid)
	binary.LittleEndian.PutUint64(header[16:24], sorted)
	buf = append(buf, header...)

	for t := 0; t <= maxTableNumber; t++ {
		if !isBitSet(valid, uint(t)) {
			continue
		}
		var rowBuf [4]byte
		binary.LittleEndian.PutUint32(rowBuf[:], rowCounts[TableNumber(t)])
		buf = append(buf, rowBuf[:]...)
	}

	buf = append(buf, payload...)
	return buf
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
