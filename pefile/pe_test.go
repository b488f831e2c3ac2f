// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pefile

import "encoding/binary"

// testImageOptions customizes buildTestImage.
type testImageOptions struct {
	omitCLRDirectory     bool
	corruptMetadataSig   bool
	tablesStream         []byte
	tablesStreamName     string
	badDOSMagic          bool
}

// buildTestImage assembles a minimal, identity-mapped PE32 image (RVA ==
// file offset within its single section) carrying a CLR header and
// metadata root, so ParseCLR can be exercised without a real .winmd
// fixture on disk.
func buildTestImage(opts testImageOptions) []byte {
	const headerSize = 0x200
	const sectionRVA = headerSize

	tablesStream := opts.tablesStream
	if tablesStream == nil {
		tablesStream = make([]byte, 24) // reserved0=0, major=2, minor=0, heapSizes=0, reserved1=1, valid=0, sorted=0
		tablesStream[4] = 2
		tablesStream[7] = 1
	}
	tablesName := opts.tablesStreamName
	if tablesName == "" {
		tablesName = "#~"
	}

	version := "v4.0.30319"
	versionPadded := padTo4(append([]byte(version), 0))

	var root []byte
	sig := uint32(metadataSignature)
	if opts.corruptMetadataSig {
		sig = 0xDEADBEEF
	}
	root = append(root, le32(sig)...)
	root = append(root, le16(1)...) // major
	root = append(root, le16(1)...) // minor
	root = append(root, le32(0)...) // extra data
	root = append(root, le32(uint32(len(versionPadded)))...)
	root = append(root, versionPadded...)
	root = append(root, 0)       // flags
	root = append(root, 0)       // padding
	root = append(root, le16(1)...) // stream count

	namePadded := padTo4(append([]byte(tablesName), 0))
	// The stream header's Offset field is relative to the metadata root's
	// own RVA, not to the stream header list, so it must account for
	// everything already appended to root plus this one stream header.
	streamDataOffset := uint32(len(root)) + 4 + 4 + uint32(len(namePadded))

	root = append(root, le32(streamDataOffset)...)
	root = append(root, le32(uint32(len(tablesStream)))...)
	root = append(root, namePadded...)
	root = append(root, tablesStream...)

	clrHeader := make([]byte, 24)
	binary.LittleEndian.PutUint32(clrHeader[0:4], 72)               // Cb
	binary.LittleEndian.PutUint16(clrHeader[4:6], 2)                // MajorRuntimeVersion
	binary.LittleEndian.PutUint16(clrHeader[6:8], 5)                // MinorRuntimeVersion
	binary.LittleEndian.PutUint32(clrHeader[8:12], sectionRVA+24)   // MetaDataRVA
	binary.LittleEndian.PutUint32(clrHeader[12:16], uint32(len(root))) // MetaDataSize
	binary.LittleEndian.PutUint32(clrHeader[16:20], 1)              // Flags

	section := append(clrHeader, root...)

	buf := make([]byte, headerSize+len(section)+4096)

	// DOS header.
	binary.LittleEndian.PutUint16(buf[0:2], imageDOSSignature)
	if opts.badDOSMagic {
		binary.LittleEndian.PutUint16(buf[0:2], 0x1234)
	}
	binary.LittleEndian.PutUint32(buf[60:64], 0x80) // e_lfanew

	ntOff := uint32(0x80)
	binary.LittleEndian.PutUint32(buf[ntOff:ntOff+4], imageNTSignature)

	coff := ntOff + 4
	binary.LittleEndian.PutUint16(buf[coff:coff+2], 0x014c) // Machine
	binary.LittleEndian.PutUint16(buf[coff+2:coff+4], 1)    // NumberOfSections
	sizeOfOptHeaderOff := coff + 16
	const sizeOfOptionalHeader = 96 + 128
	binary.LittleEndian.PutUint16(buf[sizeOfOptHeaderOff:sizeOfOptHeaderOff+2], sizeOfOptionalHeader)

	optOff := coff + 20
	binary.LittleEndian.PutUint16(buf[optOff:optOff+2], imageNtOptionalHeader32Magic)

	ddOff := optOff + 96
	if !opts.omitCLRDirectory {
		clrEntry := ddOff + imageDirectoryEntryCLR*8
		binary.LittleEndian.PutUint32(buf[clrEntry:clrEntry+4], sectionRVA)
		binary.LittleEndian.PutUint32(buf[clrEntry+4:clrEntry+8], 72)
	}

	sectionTableOff := optOff + sizeOfOptionalHeader
	binary.LittleEndian.PutUint32(buf[sectionTableOff+8:sectionTableOff+12], uint32(len(buf)-headerSize))  // VirtualSize
	binary.LittleEndian.PutUint32(buf[sectionTableOff+12:sectionTableOff+16], sectionRVA)                  // VirtualAddress
	binary.LittleEndian.PutUint32(buf[sectionTableOff+16:sectionTableOff+20], uint32(len(buf)-headerSize)) // SizeOfRawData
	binary.LittleEndian.PutUint32(buf[sectionTableOff+20:sectionTableOff+24], headerSize)                  // PointerToRawData

	copy(buf[headerSize:], section)
	return buf
}

func padTo4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
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
