// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

import "testing"

func TestSimpleIndexWidth(t *testing.T) {
	var rows rowCountVector

	rows[Field] = 1<<16 - 1
	if w := simpleIndexWidth(Field, rows); w != 2 {
		t.Errorf("below 2^16: width = %d, want 2", w)
	}
	rows[Field] = 1 << 16
	if w := simpleIndexWidth(Field, rows); w != 4 {
		t.Errorf("at 2^16: width = %d, want 4", w)
	}
}

func TestResolveSchemaModuleStride(t *testing.T) {
	var rows rowCountVector
	heaps := newHeapSizeDescriptor(0) // all heap indices 2 bytes

	schemas, err := resolveSchema(rows, heaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := schemas[Module]
	// Generation(2) + Name(2) + Mvid(2) + EncId(2) + EncBaseId(2) = 10.
	if s.stride != 10 {
		t.Errorf("Module stride = %d, want 10", s.stride)
	}
	wantOffsets := []uint16{0, 2, 4, 6, 8}
	for i, want := range wantOffsets {
		if s.columnOffsets[i] != want {
			t.Errorf("column %d offset = %d, want %d", i, s.columnOffsets[i], want)
		}
	}
}

func TestResolveSchemaWideHeapIndices(t *testing.T) {
	var rows rowCountVector
	heaps := newHeapSizeDescriptor(0x07) // strings, GUID and blob all 4 bytes

	schemas, err := resolveSchema(rows, heaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := schemas[Module]
	// Generation(2) + Name(4) + Mvid(4) + EncId(4) + EncBaseId(4) = 18.
	if s.stride != 18 {
		t.Errorf("Module stride = %d, want 18", s.stride)
	}
}

func TestResolveSchemaSimpleIndexWidthPromotion(t *testing.T) {
	heaps := newHeapSizeDescriptor(0)

	var small rowCountVector
	small[Field] = 10
	schemas, err := resolveSchema(small, heaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// TypeDef: Flags(4) + TypeName(2) + TypeNamespace(2) + Extends(coded,2) +
	// FieldList(simple->Field,2) + MethodList(simple->MethodDef,2) = 14.
	if s := schemas[TypeDef]; s.stride != 14 {
		t.Errorf("small Field table: TypeDef stride = %d, want 14", s.stride)
	}

	var big rowCountVector
	big[Field] = 1 << 16
	schemas, err = resolveSchema(big, heaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// FieldList widens to 4 bytes, stride grows by 2 to 16.
	if s := schemas[TypeDef]; s.stride != 16 {
		t.Errorf("large Field table: TypeDef stride = %d, want 16", s.stride)
	}
}

func TestResolveSchemaEveryCatalogTable(t *testing.T) {
	var rows rowCountVector
	heaps := newHeapSizeDescriptor(0)
	schemas, err := resolveSchema(rows, heaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schemas) != len(catalog) {
		t.Fatalf("resolved %d schemas, want %d (one per catalog table)", len(schemas), len(catalog))
	}
	for num, def := range catalog {
		s, ok := schemas[num]
		if !ok {
			t.Fatalf("table %s: no schema resolved", def.Name)
		}
		if len(s.columnOffsets) != len(def.Columns) {
			t.Errorf("table %s: %d columns resolved, want %d", def.Name, len(s.columnOffsets), len(def.Columns))
		}
	}
}
