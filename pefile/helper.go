// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pefile

import "encoding/binary"

func (f *File) readUint8(offset uint32) (uint8, error) {
	if uint64(offset)+1 > uint64(len(f.data)) {
		return 0, ErrOutsideBoundary
	}
	return f.data[offset], nil
}

func (f *File) readUint16(offset uint32) (uint16, error) {
	if uint64(offset)+2 > uint64(len(f.data)) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint16(f.data[offset : offset+2]), nil
}

func (f *File) readUint32(offset uint32) (uint32, error) {
	if uint64(offset)+4 > uint64(len(f.data)) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint32(f.data[offset : offset+4]), nil
}

func (f *File) readBytesAt(offset, size uint32) ([]byte, error) {
	end := uint64(offset) + uint64(size)
	if end > uint64(len(f.data)) {
		return nil, ErrOutsideBoundary
	}
	return f.data[offset:end], nil
}

// readASCIIZAt reads a NUL-terminated ASCII string starting at offset,
// never scanning past maxLen bytes.
func (f *File) readASCIIZAt(offset, maxLen uint32) (string, error) {
	b, err := f.readBytesAt(offset, maxLen)
	if err != nil {
		return "", err
	}
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}
