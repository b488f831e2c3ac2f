// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pefile

// metadataSignature is the storage signature "BSJB" every metadata root
// begins with, named after the four people who started CLR development.
const metadataSignature = 0x424A5342

// CLRHeader is the subset of IMAGE_COR20_HEADER needed to locate the
// metadata root: its size, required runtime version and the RVA/size of
// the metadata blob itself.
type CLRHeader struct {
	Cb                   uint32
	MajorRuntimeVersion  uint16
	MinorRuntimeVersion  uint16
	MetaDataRVA          uint32
	MetaDataSize         uint32
	Flags                uint32
	EntryPointRVAorToken uint32
}

// Stream is one named stream of the metadata root (#Strings, #US, #GUID,
// #Blob, #~ or #-), with its content sliced directly out of the file.
type Stream struct {
	Name string
	Data []byte
}

// Metadata is everything downstream packages need out of the CLR
// metadata root: the raw tables-stream bytes and the content heaps that
// resolve the indices the tables stream stores.
type Metadata struct {
	Header      CLRHeader
	VersionStr  string
	Streams     []Stream
	TablesName  string // "#~" or "#-"
	TablesBytes []byte
}

// Stream looks up a named stream, returning (nil, false) if absent.
func (m *Metadata) Stream(name string) ([]byte, bool) {
	for _, s := range m.Streams {
		if s.Name == name {
			return s.Data, true
		}
	}
	return nil, false
}

// ParseCLR locates the CLR runtime header via the 15th PE data directory
// entry, then walks the metadata root it points to and slices out every
// stream, including whichever of #~ or #- holds the tables stream.
func (f *File) ParseCLR() (*Metadata, error) {
	dir := f.nt.DataDirectory[imageDirectoryEntryCLR]
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil, ErrNoCLRHeader
	}

	hdrOff, err := f.rvaToOffset(dir.VirtualAddress)
	if err != nil {
		return nil, err
	}
	hdr, err := f.readCLRHeader(hdrOff)
	if err != nil {
		return nil, err
	}
	if hdr.MetaDataRVA == 0 || hdr.MetaDataSize == 0 {
		return nil, ErrNoCLRHeader
	}

	rootOff, err := f.rvaToOffset(hdr.MetaDataRVA)
	if err != nil {
		return nil, err
	}
	md := &Metadata{Header: hdr}
	if err := f.parseMetadataRoot(rootOff, hdr.MetaDataRVA, md); err != nil {
		return nil, err
	}
	if md.TablesBytes == nil {
		f.logger.Warnf("metadata root at RVA 0x%x has no #~ or #- stream among its %d streams", hdr.MetaDataRVA, len(md.Streams))
		return nil, ErrNoTablesStream
	}
	return md, nil
}

func (f *File) readCLRHeader(off uint32) (CLRHeader, error) {
	var h CLRHeader
	var err error
	if h.Cb, err = f.readUint32(off); err != nil {
		return h, err
	}
	if h.MajorRuntimeVersion, err = f.readUint16(off + 4); err != nil {
		return h, err
	}
	if h.MinorRuntimeVersion, err = f.readUint16(off + 6); err != nil {
		return h, err
	}
	if h.MetaDataRVA, err = f.readUint32(off + 8); err != nil {
		return h, err
	}
	if h.MetaDataSize, err = f.readUint32(off + 12); err != nil {
		return h, err
	}
	if h.Flags, err = f.readUint32(off + 16); err != nil {
		return h, err
	}
	if h.EntryPointRVAorToken, err = f.readUint32(off + 20); err != nil {
		return h, err
	}
	return h, nil
}

// parseMetadataRoot reads the BSJB storage signature, version string and
// stream header list, then slices every stream's bytes directly out of
// the file. rootRVA is the metadata root's own RVA, needed because each
// stream header's Offset is relative to the metadata root, not absolute: a
// stream's RVA is rootRVA plus that Offset.
func (f *File) parseMetadataRoot(off, rootRVA uint32, md *Metadata) error {
	sig, err := f.readUint32(off)
	if err != nil {
		return err
	}
	if sig != metadataSignature {
		f.logger.Errorf("metadata root at file offset 0x%x has signature 0x%x, want BSJB (0x%x)", off, sig, metadataSignature)
		return ErrMetadataSignatureMismatch
	}

	versionLen, err := f.readUint32(off + 12)
	if err != nil {
		return err
	}
	versionStr, err := f.readASCIIZAt(off+16, versionLen)
	if err != nil {
		return err
	}
	md.VersionStr = versionStr

	cursor := off + 16 + versionLen
	streamCount, err := f.readUint16(cursor + 2)
	if err != nil {
		return err
	}
	cursor += 4

	for i := uint16(0); i < streamCount; i++ {
		streamOff, err := f.readUint32(cursor)
		if err != nil {
			return err
		}
		streamSize, err := f.readUint32(cursor + 4)
		if err != nil {
			return err
		}
		cursor += 8

		name, nameLen, err := f.readStreamName(cursor)
		if err != nil {
			return err
		}
		cursor += nameLen

		fileOff, err := f.rvaToOffset(rootRVA + streamOff)
		if err != nil {
			return err
		}
		data, err := f.readBytesAt(fileOff, streamSize)
		if err != nil {
			return err
		}

		md.Streams = append(md.Streams, Stream{Name: name, Data: data})
		if name == "#~" || name == "#-" {
			md.TablesName = name
			md.TablesBytes = data
		}
	}
	return nil
}

// readStreamName reads a stream header's name field: a NUL-terminated
// ASCII string padded to a 4-byte boundary. It returns the name and the
// number of bytes consumed, including padding.
func (f *File) readStreamName(off uint32) (string, uint32, error) {
	var name []byte
	var i uint32
	for {
		c, err := f.readUint8(off + i)
		if err != nil {
			return "", 0, err
		}
		i++
		if c == 0 {
			break
		}
		name = append(name, c)
	}
	for i%4 != 0 {
		i++
	}
	return string(name), i, nil
}
