// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

import "errors"

var (
	// ErrTruncated is returned when the buffer is shorter than the stream
	// header or shorter than the payload size implied by the row counts, and
	// also when bytes remain after the last table's payload.
	ErrTruncated = errors.New("winmd: tables stream truncated")

	// ErrReservedFieldMismatch is returned when Reserved0 is non-zero or
	// Reserved1 is not 1, under the default (strict) open policy.
	ErrReservedFieldMismatch = errors.New("winmd: reserved header field mismatch")

	// ErrUnknownTableBit is returned when the Valid bitmask marks a table
	// number that the catalog does not define.
	ErrUnknownTableBit = errors.New("winmd: valid bitmask references unknown table")

	// ErrSchemaMalformed is returned when a column kind references a table
	// number absent from the catalog, which indicates a catalog bug, not a
	// malformed input buffer. Record accessors also return it for a column
	// index outside the row's schema or a column read through an accessor
	// of the wrong kind.
	ErrSchemaMalformed = errors.New("winmd: schema references unknown table")

	// ErrOutOfBounds is returned when a row index is not smaller than the
	// table's row count.
	ErrOutOfBounds = errors.New("winmd: row index out of bounds")

	// ErrBadCodedIndex is returned when a decoded coded-index tag exceeds
	// the number of tables in its family.
	ErrBadCodedIndex = errors.New("winmd: coded index tag out of range")
)
