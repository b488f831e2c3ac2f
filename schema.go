// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

// simpleIndexWidth implements the width rule for a simple index to table T:
// 4 bytes once T holds 2^16 or more rows, else 2.
func simpleIndexWidth(target TableNumber, rows rowCountVector) uint8 {
	if rows[target] >= 1<<16 {
		return 4
	}
	return 2
}

// resolvedSchema holds, for one table, the byte offset and width of every
// column plus the total row stride. It depends only on the Row-Count
// Vector and Heap Size Descriptor, so it is computed once at Open and never
// changes for the life of a Reader.
type resolvedSchema struct {
	table          TableNumber
	columnOffsets  []uint16
	columnWidths   []uint8
	columnKinds    []ColumnKind
	columnHeaps    []HeapKind
	columnTargets  []TableNumber
	columnFamilies []*CodedIndexFamily
	stride         uint16
}

// resolveSchema computes the resolved schema for every table named in the
// catalog, given the row counts and heap index widths already known at
// Open time. Column widths depend only on the row counts of the tables
// referenced by a table's columns (which can include the table itself, as
// TypeDef.Extends does), and every row count is known before resolution
// starts, so every table's schema can be resolved independently and in any
// order.
func resolveSchema(rows rowCountVector, heaps heapSizeDescriptor) (map[TableNumber]*resolvedSchema, error) {
	schemas := make(map[TableNumber]*resolvedSchema, len(catalog))

	for num, def := range catalog {
		s := &resolvedSchema{table: num}
		var offset uint16

		for _, col := range def.Columns {
			var width uint8

			switch col.Kind {
			case KindConstant:
				width = col.Width
			case KindHeapIndex:
				width = heaps.widthOf(col.Heap)
			case KindSimpleIndex:
				if _, ok := catalog[col.Target]; !ok {
					return nil, ErrSchemaMalformed
				}
				width = simpleIndexWidth(col.Target, rows)
			case KindCodedIndex:
				for _, t := range col.Family.Targets {
					if t == invalidTable {
						continue
					}
					if _, ok := catalog[t]; !ok {
						return nil, ErrSchemaMalformed
					}
				}
				width = codedIndexWidth(col.Family, rows)
			}

			s.columnOffsets = append(s.columnOffsets, offset)
			s.columnWidths = append(s.columnWidths, width)
			s.columnKinds = append(s.columnKinds, col.Kind)
			s.columnHeaps = append(s.columnHeaps, col.Heap)
			s.columnTargets = append(s.columnTargets, col.Target)
			s.columnFamilies = append(s.columnFamilies, col.Family)
			offset += uint16(width)
		}

		s.stride = offset
		schemas[num] = s
	}

	return schemas, nil
}
