// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

import "encoding/binary"

// streamHeaderSize is the fixed 24-byte prefix of a #~ (or #-) stream,
// §6: Reserved0(4) + MajorVersion(1) + MinorVersion(1) + HeapSizes(1) +
// Reserved1(1) + Valid(8) + Sorted(8).
const streamHeaderSize = 24

// byteRange is a borrowed (offset, length) pair into the Reader's buffer.
type byteRange struct {
	offset uint32
	length uint32
}

// Reader decodes a #~ (or #-) tables stream out of a borrowed byte buffer.
// It holds no copy of the buffer: every TableView and Record it returns is
// a view over the slice passed to NewReader. A Reader is immutable after Open
// and safe for concurrent use by multiple goroutines.
type Reader struct {
	data []byte

	major, minor uint8
	heapSizes    uint8
	valid        uint64
	sorted       uint64

	rows    rowCountVector
	schemas map[TableNumber]*resolvedSchema
	ranges  map[TableNumber]byteRange

	// order lists valid table numbers in ascending order, precomputed so
	// Iter never has to rescan the Valid bitmask.
	order []TableNumber
}

// Options controls how Open tolerates deviations from a strictly
// conformant stream.
type Options struct {
	// AllowReservedMismatch downgrades ErrReservedFieldMismatch from a
	// fatal error to a no-op. Off by default: the default policy rejects
	// streams whose reserved fields are non-canonical.
	AllowReservedMismatch bool
}

// NewReader parses the stream header of buf, resolves the schema for
// every table the header marks present, and locates each table's row
// payload within buf. The returned Reader borrows buf; buf must not be
// modified or released for the Reader's lifetime.
func NewReader(buf []byte, opts *Options) (*Reader, error) {
	if opts == nil {
		opts = &Options{}
	}

	if len(buf) < streamHeaderSize {
		return nil, ErrTruncated
	}

	reserved0 := binary.LittleEndian.Uint32(buf[0:4])
	major := buf[4]
	minor := buf[5]
	heapSizes := buf[6]
	reserved1 := buf[7]
	valid := binary.LittleEndian.Uint64(buf[8:16])
	sorted := binary.LittleEndian.Uint64(buf[16:24])

	if !opts.AllowReservedMismatch {
		if reserved0 != 0 || reserved1 != 1 {
			return nil, ErrReservedFieldMismatch
		}
	}

	n := popcountValid(valid)
	rowsStart := streamHeaderSize
	rowsEnd := rowsStart + 4*n
	if len(buf) < rowsEnd {
		return nil, ErrTruncated
	}

	packedRows := make([]uint32, n)
	for i := 0; i < n; i++ {
		off := rowsStart + 4*i
		packedRows[i] = binary.LittleEndian.Uint32(buf[off : off+4])
	}

	rows, err := buildRowCountVector(valid, packedRows)
	if err != nil {
		return nil, err
	}

	heaps := newHeapSizeDescriptor(heapSizes)
	schemas, err := resolveSchema(rows, heaps)
	if err != nil {
		return nil, err
	}

	ranges := make(map[TableNumber]byteRange, n)
	order := make([]TableNumber, 0, n)
	cursor := uint32(rowsEnd)
	for t := 0; t <= maxTableNumber; t++ {
		tn := TableNumber(t)
		if !isBitSet(valid, uint(t)) {
			continue
		}
		order = append(order, tn)

		schema := schemas[tn]
		length64 := uint64(rows[tn]) * uint64(schema.stride)

		end64 := uint64(cursor) + length64
		if end64 > uint64(len(buf)) {
			return nil, ErrTruncated
		}
		length := uint32(length64)
		end := uint32(end64)
		ranges[tn] = byteRange{offset: cursor, length: length}
		cursor = end
	}

	if cursor != uint32(len(buf)) {
		return nil, ErrTruncated
	}

	return &Reader{
		data:      buf,
		major:     major,
		minor:     minor,
		heapSizes: heapSizes,
		valid:     valid,
		sorted:    sorted,
		rows:      rows,
		schemas:   schemas,
		ranges:    ranges,
		order:     order,
	}, nil
}

// MajorVersion returns the stream schema's major version (2 for metadata
// produced by CLR v2.0 and later).
func (r *Reader) MajorVersion() uint8 { return r.major }

// MinorVersion returns the stream schema's minor version.
func (r *Reader) MinorVersion() uint8 { return r.minor }

// Valid returns the raw Valid bitmask: bit t is set iff table t is present.
func (r *Reader) Valid() uint64 { return r.valid }

// Sorted returns the raw Sorted bitmask. It is advisory only; Open does not
// verify that sorted tables are actually sorted.
func (r *Reader) Sorted() uint64 { return r.sorted }

// RowCount returns the number of rows in table t, or 0 if t is absent or
// unknown.
func (r *Reader) RowCount(t TableNumber) uint32 { return r.rows[t] }

// TableView exposes one table's row count and the borrowed byte slice
// holding its packed row payload.
type TableView struct {
	Number   TableNumber
	RowCount uint32
	schema   *resolvedSchema
	bytes    []byte
}

// Bytes returns the table's raw, stride-packed row payload.
func (v TableView) Bytes() []byte { return v.bytes }

// Table returns a view of table t, or (_, false) if the Valid bitmask
// marks t absent.
func (r *Reader) Table(t TableNumber) (TableView, bool) {
	rng, ok := r.ranges[t]
	if !ok {
		return TableView{}, false
	}
	return TableView{
		Number:   t,
		RowCount: r.rows[t],
		schema:   r.schemas[t],
		bytes:    r.data[rng.offset : rng.offset+rng.length],
	}, true
}

// Iter returns every valid table's view, in ascending table-number order.
// The returned slice is freshly built on each call and safe to retain.
func (r *Reader) Iter() []TableView {
	views := make([]TableView, 0, len(r.order))
	for _, t := range r.order {
		v, _ := r.Table(t)
		views = append(views, v)
	}
	return views
}
