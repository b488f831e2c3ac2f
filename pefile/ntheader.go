// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pefile

import "encoding/binary"

const (
	imageNTSignature             = 0x00004550 // PE\0\0
	imageNtOptionalHeader32Magic = 0x10b
	imageNtOptionalHeader64Magic = 0x20b

	imageNumberOfDirectoryEntries = 16
	imageDirectoryEntryCLR        = 14
)

type dataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

// ntHeader carries just the COFF file header fields and data directory
// array the CLR locator needs; section/symbol table bookkeeping,
// characteristics flags and the rest of the optional header are outside
// this package's job.
type ntHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	SizeOfOptionalHeader uint16
	Magic                uint16
	DataDirectory        [imageNumberOfDirectoryEntries]dataDirectory
}

func (f *File) parseNTHeader() error {
	off := f.dos.AddressOfNewEXEHeader
	if uint64(off)+24 > uint64(len(f.data)) {
		return ErrOutsideBoundary
	}
	sig := binary.LittleEndian.Uint32(f.data[off : off+4])
	if sig != imageNTSignature {
		return ErrImageNtSignatureNotFound
	}

	coff := off + 4
	f.nt.Machine = binary.LittleEndian.Uint16(f.data[coff : coff+2])
	f.nt.NumberOfSections = binary.LittleEndian.Uint16(f.data[coff+2 : coff+4])
	f.nt.SizeOfOptionalHeader = binary.LittleEndian.Uint16(f.data[coff+16 : coff+18])

	optOff := coff + 20
	if uint64(optOff)+2 > uint64(len(f.data)) {
		return ErrOutsideBoundary
	}
	f.nt.Magic = binary.LittleEndian.Uint16(f.data[optOff : optOff+2])

	var ddOff uint32
	switch f.nt.Magic {
	case imageNtOptionalHeader32Magic:
		ddOff = optOff + 96
	case imageNtOptionalHeader64Magic:
		ddOff = optOff + 112
	default:
		return ErrImageNtOptionalHeaderMagicNotFound
	}

	f.sectionTableOffset = optOff + uint32(f.nt.SizeOfOptionalHeader)

	for i := 0; i < imageNumberOfDirectoryEntries; i++ {
		entryOff := ddOff + uint32(i*8)
		if uint64(entryOff)+8 > uint64(len(f.data)) {
			f.logger.Warnf("data directory truncated at entry %d of %d, leaving the rest zeroed", i, imageNumberOfDirectoryEntries)
			break
		}
		f.nt.DataDirectory[i] = dataDirectory{
			VirtualAddress: binary.LittleEndian.Uint32(f.data[entryOff : entryOff+4]),
			Size:           binary.LittleEndian.Uint32(f.data[entryOff+4 : entryOff+8]),
		}
	}
	return nil
}
