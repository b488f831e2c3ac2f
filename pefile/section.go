// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pefile

import "encoding/binary"

const sectionHeaderSize = 40

// section holds the handful of section header fields the RVA-to-offset
// translator needs; IMAGE_SECTION_HEADER carries several more used only
// for linking and loading, none of which matter once the file is already
// on disk as a flat byte slice.
type section struct {
	VirtualSize      uint32
	VirtualAddress   uint32
	SizeOfRawData    uint32
	PointerToRawData uint32
}

func (f *File) parseSectionHeaders() error {
	f.sections = make([]section, 0, f.nt.NumberOfSections)
	off := f.sectionTableOffset
	for i := uint16(0); i < f.nt.NumberOfSections; i++ {
		end := uint64(off) + sectionHeaderSize
		if end > uint64(len(f.data)) {
			return ErrOutsideBoundary
		}
		s := section{
			VirtualSize:      binary.LittleEndian.Uint32(f.data[off+8 : off+12]),
			VirtualAddress:   binary.LittleEndian.Uint32(f.data[off+12 : off+16]),
			SizeOfRawData:    binary.LittleEndian.Uint32(f.data[off+16 : off+20]),
			PointerToRawData: binary.LittleEndian.Uint32(f.data[off+20 : off+24]),
		}
		f.sections = append(f.sections, s)
		off += sectionHeaderSize
	}
	return nil
}

// rvaToOffset resolves a relative virtual address to a file offset by
// finding the section whose virtual range contains it. An rva that no
// section covers, such as one inside the headers before the first section,
// maps to itself if it lies within the file.
func (f *File) rvaToOffset(rva uint32) (uint32, error) {
	for _, s := range f.sections {
		size := s.VirtualSize
		if size == 0 {
			f.logger.Warnf("section at VA 0x%x has VirtualSize 0, falling back to SizeOfRawData 0x%x", s.VirtualAddress, s.SizeOfRawData)
			size = s.SizeOfRawData
		}
		if rva >= s.VirtualAddress && rva < s.VirtualAddress+size {
			return rva - s.VirtualAddress + s.PointerToRawData, nil
		}
	}
	if rva < uint32(len(f.data)) {
		return rva, nil
	}
	return 0, ErrOutsideBoundary
}
