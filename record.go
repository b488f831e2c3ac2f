// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

import "encoding/binary"

// Record is the i-th row of a table, projected through its resolved
// schema. All reads are little-endian and bounds-checked against the
// row's own stride-wide span; a Record never reads outside it.
type Record struct {
	schema *resolvedSchema
	bytes  []byte
}

// Row decodes the i-th row of v. Row indices are bounds-checked against
// the table's RowCount, independent of the number of columns requested
// afterwards.
func (v TableView) Row(i uint32) (Record, error) {
	if i >= v.RowCount {
		return Record{}, ErrOutOfBounds
	}
	stride := uint64(v.schema.stride)
	start64 := uint64(i) * stride
	end64 := start64 + stride
	if end64 > uint64(len(v.bytes)) {
		return Record{}, ErrTruncated
	}
	start, end := uint32(start64), uint32(end64)
	return Record{schema: v.schema, bytes: v.bytes[start:end]}, nil
}

// field resolves column c to its byte span within the row, bounds-checked
// against the row span itself.
func (rec Record) field(c int) ([]byte, uint8, error) {
	if c < 0 || c >= len(rec.schema.columnOffsets) {
		return nil, 0, ErrSchemaMalformed
	}
	off := uint32(rec.schema.columnOffsets[c])
	width := rec.schema.columnWidths[c]
	end := off + uint32(width)
	if end > uint32(len(rec.bytes)) {
		return nil, 0, ErrTruncated
	}
	return rec.bytes[off:end], width, nil
}

func readUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	default:
		return 0
	}
}

// checkConstant rejects column c unless it is a constant of exactly width
// bytes, the same way SimpleIndex and CodedIndex reject a kind mismatch.
func (rec Record) checkConstant(c int, width uint8) error {
	if c < 0 || c >= len(rec.schema.columnKinds) {
		return ErrSchemaMalformed
	}
	if rec.schema.columnKinds[c] != KindConstant || rec.schema.columnWidths[c] != width {
		return ErrSchemaMalformed
	}
	return nil
}

// U8 reads column c as a 1-byte constant.
func (rec Record) U8(c int) (uint8, error) {
	if err := rec.checkConstant(c, 1); err != nil {
		return 0, err
	}
	b, _, err := rec.field(c)
	if err != nil {
		return 0, err
	}
	return uint8(readUint(b)), nil
}

// U16 reads column c as a 2-byte constant.
func (rec Record) U16(c int) (uint16, error) {
	if err := rec.checkConstant(c, 2); err != nil {
		return 0, err
	}
	b, _, err := rec.field(c)
	if err != nil {
		return 0, err
	}
	return uint16(readUint(b)), nil
}

// U32 reads column c as a 4-byte constant.
func (rec Record) U32(c int) (uint32, error) {
	if err := rec.checkConstant(c, 4); err != nil {
		return 0, err
	}
	b, _, err := rec.field(c)
	if err != nil {
		return 0, err
	}
	return uint32(readUint(b)), nil
}

// U64 reads column c as an 8-byte constant.
func (rec Record) U64(c int) (uint64, error) {
	if err := rec.checkConstant(c, 8); err != nil {
		return 0, err
	}
	b, _, err := rec.field(c)
	if err != nil {
		return 0, err
	}
	return readUint(b), nil
}

// heapValue reads column c as a width-normalized (2 or 4 byte) index into
// heap h, rejecting a column that indexes a different heap.
// The returned value is the raw, 1-based, stored offset; 0 denotes
// absence. Resolving it against heap contents is the caller's job.
func (rec Record) heapValue(c int, h HeapKind) (uint32, error) {
	if c < 0 || c >= len(rec.schema.columnKinds) || rec.schema.columnKinds[c] != KindHeapIndex || rec.schema.columnHeaps[c] != h {
		return 0, ErrSchemaMalformed
	}
	b, _, err := rec.field(c)
	if err != nil {
		return 0, err
	}
	return uint32(readUint(b)), nil
}

// StringIndex reads column c as a #Strings heap index.
func (rec Record) StringIndex(c int) (uint32, error) { return rec.heapValue(c, HeapString) }

// GUIDIndex reads column c as a #GUID heap index.
func (rec Record) GUIDIndex(c int) (uint32, error) { return rec.heapValue(c, HeapGUID) }

// BlobIndex reads column c as a #Blob heap index.
func (rec Record) BlobIndex(c int) (uint32, error) { return rec.heapValue(c, HeapBlob) }

// SimpleIndex reads column c as a reference to exactly one other table,
// returning that table number and the raw 1-based row number (0 = absent).
func (rec Record) SimpleIndex(c int) (TableNumber, uint32, error) {
	if c < 0 || c >= len(rec.schema.columnKinds) || rec.schema.columnKinds[c] != KindSimpleIndex {
		return 0, 0, ErrSchemaMalformed
	}
	b, _, err := rec.field(c)
	if err != nil {
		return 0, 0, err
	}
	return rec.schema.columnTargets[c], uint32(readUint(b)), nil
}

// CodedIndex reads column c as a tagged reference into one of several
// tables, returning the resolved target table and 1-based row number.
func (rec Record) CodedIndex(c int) (TableNumber, uint32, error) {
	if c < 0 || c >= len(rec.schema.columnKinds) || rec.schema.columnKinds[c] != KindCodedIndex {
		return 0, 0, ErrSchemaMalformed
	}
	b, _, err := rec.field(c)
	if err != nil {
		return 0, 0, err
	}
	v := uint32(readUint(b))
	if v == 0 {
		return 0, 0, nil
	}
	return decodeCodedIndex(rec.schema.columnFamilies[c], v)
}

// Bytes returns the row's raw stride-wide span.
func (rec Record) Bytes() []byte { return rec.bytes }
