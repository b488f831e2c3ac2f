// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

import "math/bits"

// rowCountVector is a total mapping from table number to row count. Tables
// whose Valid bit is clear report a row count of zero.
type rowCountVector [maxTableNumber + 1]uint32

// buildRowCountVector reads the packed Rows[] prefix that follows the
// stream header and scatters it into a dense, total array indexed by table
// number. rows must contain exactly popcount(valid) little-endian uint32
// values, in ascending table-number order.
func buildRowCountVector(valid uint64, rows []uint32) (rowCountVector, error) {
	var v rowCountVector
	next := 0
	for t := 0; t <= maxTableNumber; t++ {
		if !isBitSet(valid, uint(t)) {
			continue
		}
		if _, ok := catalog[TableNumber(t)]; !ok {
			return v, ErrUnknownTableBit
		}
		if next >= len(rows) {
			return v, ErrTruncated
		}
		v[t] = rows[next]
		next++
	}
	return v, nil
}

// popcountValid returns popcount(Valid), the number of Rows[] entries the
// header prefix carries.
func popcountValid(valid uint64) int {
	return bits.OnesCount64(valid)
}
