// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

import "testing"

func openModuleFixture(t *testing.T) (*Reader, TableView) {
	t.Helper()
	row := append(append(append(append(le16(7), le16(1)...), le16(2)...), le16(3)...), le16(4)...)
	valid := uint64(1) << Module
	buf := buildStream(valid, 0, 0, map[TableNumber]uint32{Module: 1}, row)
	r, err := NewReader(buf, nil)
	if err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}
	view, ok := r.Table(Module)
	if !ok {
		t.Fatal("Table(Module) reported absent")
	}
	return r, view
}

func TestRowDecodesConstantAndHeapColumns(t *testing.T) {
	_, view := openModuleFixture(t)

	rec, err := view.Row(0)
	if err != nil {
		t.Fatalf("Row(0): unexpected error: %v", err)
	}
	gen, err := rec.U16(0)
	if err != nil || gen != 7 {
		t.Errorf("Generation = %d, %v, want 7, nil", gen, err)
	}
	name, err := rec.StringIndex(1)
	if err != nil || name != 1 {
		t.Errorf("Name = %d, %v, want 1, nil", name, err)
	}
	mvid, err := rec.GUIDIndex(2)
	if err != nil || mvid != 2 {
		t.Errorf("Mvid = %d, %v, want 2, nil", mvid, err)
	}
}

func TestRowOutOfBounds(t *testing.T) {
	_, view := openModuleFixture(t)
	_, err := view.Row(1)
	if err != ErrOutOfBounds {
		t.Fatalf("Row(1): got %v, want ErrOutOfBounds", err)
	}
}

func TestFieldColumnIndexOutOfRange(t *testing.T) {
	_, view := openModuleFixture(t)
	rec, _ := view.Row(0)
	if _, err := rec.U16(99); err != ErrSchemaMalformed {
		t.Fatalf("got %v, want ErrSchemaMalformed", err)
	}
}

func TestSimpleIndexWrongKindRejected(t *testing.T) {
	_, view := openModuleFixture(t)
	rec, _ := view.Row(0)
	// Column 0 (Generation) is a constant, not a simple index.
	if _, _, err := rec.SimpleIndex(0); err != ErrSchemaMalformed {
		t.Fatalf("got %v, want ErrSchemaMalformed", err)
	}
}

func TestCodedIndexWrongKindRejected(t *testing.T) {
	_, view := openModuleFixture(t)
	rec, _ := view.Row(0)
	if _, _, err := rec.CodedIndex(0); err != ErrSchemaMalformed {
		t.Fatalf("got %v, want ErrSchemaMalformed", err)
	}
}

func TestCodedIndexDecodesThroughRecord(t *testing.T) {
	// InterfaceImpl: Class(simple->TypeDef), Interface(coded TypeDefOrRef).
	v, err := encodeCodedIndex(typeDefOrRef, TypeRef, 3)
	if err != nil {
		t.Fatalf("encodeCodedIndex: %v", err)
	}
	row := append(le16(1), le16(uint16(v))...) // Class=1 (2 bytes, TypeDef well under 2^16)

	valid := uint64(1) << InterfaceImpl
	buf := buildStream(valid, 0, 0, map[TableNumber]uint32{InterfaceImpl: 1}, row)
	r, err := NewReader(buf, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	view, _ := r.Table(InterfaceImpl)
	rec, err := view.Row(0)
	if err != nil {
		t.Fatalf("Row(0): %v", err)
	}

	class, classRow, err := rec.SimpleIndex(0)
	if err != nil || class != TypeDef || classRow != 1 {
		t.Errorf("Class = (%v, %d), %v, want (TypeDef, 1, nil)", class, classRow, err)
	}

	table, row2, err := rec.CodedIndex(1)
	if err != nil {
		t.Fatalf("CodedIndex: %v", err)
	}
	if table != TypeRef || row2 != 3 {
		t.Errorf("Interface = (%v, %d), want (TypeRef, 3)", table, row2)
	}
}

func TestCodedIndexZeroIsAbsent(t *testing.T) {
	row := append(le16(1), le16(0)...) // Class=1, Interface coded index = 0
	valid := uint64(1) << InterfaceImpl
	buf := buildStream(valid, 0, 0, map[TableNumber]uint32{InterfaceImpl: 1}, row)
	r, err := NewReader(buf, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	view, _ := r.Table(InterfaceImpl)
	rec, _ := view.Row(0)

	table, row2, err := rec.CodedIndex(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table != 0 || row2 != 0 {
		t.Errorf("zero coded index = (%v, %d), want (0, 0)", table, row2)
	}
}
