// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

// the table numbers, column layouts and coded-index families below are
// transcribed from ECMA-335 6th edition, §II.22 (table numbers and columns)
// and §II.24.2.6 (coded index tag assignments).

// TableNumber identifies one of the CLI metadata tables. Numbers are sparse:
// only ~45 of the 64 possible 6-bit values are defined.
type TableNumber int

// Metadata table numbers, §II.22.
const (
	Module                 TableNumber = 0x00
	TypeRef                TableNumber = 0x01
	TypeDef                TableNumber = 0x02
	FieldPtr               TableNumber = 0x03
	Field                  TableNumber = 0x04
	MethodPtr              TableNumber = 0x05
	MethodDef              TableNumber = 0x06
	ParamPtr               TableNumber = 0x07
	Param                  TableNumber = 0x08
	InterfaceImpl          TableNumber = 0x09
	MemberRef              TableNumber = 0x0a
	Constant               TableNumber = 0x0b
	CustomAttribute        TableNumber = 0x0c
	FieldMarshal           TableNumber = 0x0d
	DeclSecurity           TableNumber = 0x0e
	ClassLayout            TableNumber = 0x0f
	FieldLayout            TableNumber = 0x10
	StandAloneSig          TableNumber = 0x11
	EventMap               TableNumber = 0x12
	EventPtr               TableNumber = 0x13
	Event                  TableNumber = 0x14
	PropertyMap            TableNumber = 0x15
	PropertyPtr            TableNumber = 0x16
	Property               TableNumber = 0x17
	MethodSemantics        TableNumber = 0x18
	MethodImpl             TableNumber = 0x19
	ModuleRef              TableNumber = 0x1a
	TypeSpec               TableNumber = 0x1b
	ImplMap                TableNumber = 0x1c
	FieldRVA               TableNumber = 0x1d
	ENCLog                 TableNumber = 0x1e
	ENCMap                 TableNumber = 0x1f
	Assembly               TableNumber = 0x20
	AssemblyProcessor      TableNumber = 0x21
	AssemblyOS             TableNumber = 0x22
	AssemblyRef            TableNumber = 0x23
	AssemblyRefProcessor   TableNumber = 0x24
	AssemblyRefOS          TableNumber = 0x25
	File                   TableNumber = 0x26
	ExportedType           TableNumber = 0x27
	ManifestResource       TableNumber = 0x28
	NestedClass            TableNumber = 0x29
	GenericParam           TableNumber = 0x2a
	MethodSpec             TableNumber = 0x2b
	GenericParamConstraint TableNumber = 0x2c

	// maxTableNumber bounds the Valid/Sorted bitmasks; table numbers run
	// 0..63 even though only the ones above are defined.
	maxTableNumber = 63

	// invalidTable marks a tag slot of a coded-index family that ECMA-335
	// declares "(not used)". Decoding a tag that lands on this slot is
	// reported the same way as a tag past the end of Targets.
	invalidTable TableNumber = -1
)

// tableName maps a table number to its ECMA-335 name, for diagnostics.
var tableName = map[TableNumber]string{
	Module:                 "Module",
	TypeRef:                "TypeRef",
	TypeDef:                "TypeDef",
	FieldPtr:               "FieldPtr",
	Field:                  "Field",
	MethodPtr:              "MethodPtr",
	MethodDef:              "MethodDef",
	ParamPtr:               "ParamPtr",
	Param:                  "Param",
	InterfaceImpl:          "InterfaceImpl",
	MemberRef:              "MemberRef",
	Constant:               "Constant",
	CustomAttribute:        "CustomAttribute",
	FieldMarshal:           "FieldMarshal",
	DeclSecurity:           "DeclSecurity",
	ClassLayout:            "ClassLayout",
	FieldLayout:            "FieldLayout",
	StandAloneSig:          "StandAloneSig",
	EventMap:               "EventMap",
	EventPtr:               "EventPtr",
	Event:                  "Event",
	PropertyMap:            "PropertyMap",
	PropertyPtr:            "PropertyPtr",
	Property:               "Property",
	MethodSemantics:        "MethodSemantics",
	MethodImpl:             "MethodImpl",
	ModuleRef:              "ModuleRef",
	TypeSpec:               "TypeSpec",
	ImplMap:                "ImplMap",
	FieldRVA:               "FieldRVA",
	ENCLog:                 "ENCLog",
	ENCMap:                 "ENCMap",
	Assembly:               "Assembly",
	AssemblyProcessor:      "AssemblyProcessor",
	AssemblyOS:             "AssemblyOS",
	AssemblyRef:            "AssemblyRef",
	AssemblyRefProcessor:   "AssemblyRefProcessor",
	AssemblyRefOS:          "AssemblyRefOS",
	File:                   "File",
	ExportedType:           "ExportedType",
	ManifestResource:       "ManifestResource",
	NestedClass:            "NestedClass",
	GenericParam:           "GenericParam",
	MethodSpec:             "MethodSpec",
	GenericParamConstraint: "GenericParamConstraint",
}

// String returns the table's ECMA-335 name, or "" if t is not in the catalog.
func (t TableNumber) String() string {
	return tableName[t]
}

// TableDefFor returns the catalog's static definition of table t, or nil if
// t is not a defined table.
func TableDefFor(t TableNumber) *TableDef {
	return catalog[t]
}

// HeapKind identifies one of the three auxiliary heaps a row column can
// index into (#Strings, #GUID, #Blob).
type HeapKind int

const (
	HeapString HeapKind = iota
	HeapGUID
	HeapBlob
)

// ColumnKind tags the shape of a single column: a fixed-width constant, an
// index into one of the heaps, a reference to exactly one other table, or a
// coded reference that multiplexes several tables into one field.
type ColumnKind int

const (
	KindConstant ColumnKind = iota
	KindHeapIndex
	KindSimpleIndex
	KindCodedIndex
)

// Column describes one field of a table row.
type Column struct {
	Name   string
	Kind   ColumnKind
	Width  uint8             // valid widths: 1, 2, 4, 8. Used only when Kind == KindConstant.
	Heap   HeapKind          // used only when Kind == KindHeapIndex.
	Target TableNumber       // used only when Kind == KindSimpleIndex.
	Family *CodedIndexFamily // used only when Kind == KindCodedIndex.
}

// CodedIndexFamily is a tagged union over an ordered list of target tables.
// The tag occupies the low TagBits bits of the stored value; the remaining
// bits hold a 1-based row number. A Targets entry of invalidTable marks a
// tag ECMA-335 reserves but does not assign to a table.
type CodedIndexFamily struct {
	Name    string
	TagBits uint8
	Targets []TableNumber
}

// maxRowsAmong returns the largest row count among a family's target
// tables, skipping unused tag slots.
func (f *CodedIndexFamily) maxRowsAmong(rows rowCountVector) uint32 {
	var max uint32
	for _, t := range f.Targets {
		if t == invalidTable {
			continue
		}
		if n := rows[t]; n > max {
			max = n
		}
	}
	return max
}

// The 13 coded-index families of ECMA-335 §II.24.2.6.
var (
	typeDefOrRef = &CodedIndexFamily{
		Name: "TypeDefOrRef", TagBits: 2,
		Targets: []TableNumber{TypeDef, TypeRef, TypeSpec},
	}
	hasConstant = &CodedIndexFamily{
		Name: "HasConstant", TagBits: 2,
		Targets: []TableNumber{Field, Param, Property},
	}
	hasCustomAttribute = &CodedIndexFamily{
		Name: "HasCustomAttribute", TagBits: 5,
		Targets: []TableNumber{
			MethodDef, Field, TypeRef, TypeDef, Param, InterfaceImpl, MemberRef,
			Module, DeclSecurity, Property, Event, StandAloneSig, ModuleRef,
			TypeSpec, Assembly, AssemblyRef, File, ExportedType, ManifestResource,
			GenericParam, GenericParamConstraint, MethodSpec,
		},
	}
	hasFieldMarshal = &CodedIndexFamily{
		Name: "HasFieldMarshal", TagBits: 1,
		Targets: []TableNumber{Field, Param},
	}
	hasDeclSecurity = &CodedIndexFamily{
		Name: "HasDeclSecurity", TagBits: 2,
		Targets: []TableNumber{TypeDef, MethodDef, Assembly},
	}
	memberRefParent = &CodedIndexFamily{
		Name: "MemberRefParent", TagBits: 3,
		Targets: []TableNumber{TypeDef, TypeRef, ModuleRef, MethodDef, TypeSpec},
	}
	hasSemantics = &CodedIndexFamily{
		Name: "HasSemantics", TagBits: 1,
		Targets: []TableNumber{Event, Property},
	}
	methodDefOrRef = &CodedIndexFamily{
		Name: "MethodDefOrRef", TagBits: 1,
		Targets: []TableNumber{MethodDef, MemberRef},
	}
	memberForwarded = &CodedIndexFamily{
		Name: "MemberForwarded", TagBits: 1,
		Targets: []TableNumber{Field, MethodDef},
	}
	implementation = &CodedIndexFamily{
		Name: "Implementation", TagBits: 2,
		Targets: []TableNumber{File, AssemblyRef, ExportedType},
	}
	customAttributeType = &CodedIndexFamily{
		Name: "CustomAttributeType", TagBits: 3,
		Targets: []TableNumber{invalidTable, invalidTable, MethodDef, MemberRef, invalidTable},
	}
	resolutionScope = &CodedIndexFamily{
		Name: "ResolutionScope", TagBits: 2,
		Targets: []TableNumber{Module, ModuleRef, AssemblyRef, TypeRef},
	}
	typeOrMethodDef = &CodedIndexFamily{
		Name: "TypeOrMethodDef", TagBits: 1,
		Targets: []TableNumber{TypeDef, MethodDef},
	}
)

func constant(name string, width uint8) Column {
	return Column{Name: name, Kind: KindConstant, Width: width}
}

func heapIndex(name string, heap HeapKind) Column {
	return Column{Name: name, Kind: KindHeapIndex, Heap: heap}
}

func simpleIndex(name string, target TableNumber) Column {
	return Column{Name: name, Kind: KindSimpleIndex, Target: target}
}

func codedIndex(name string, family *CodedIndexFamily) Column {
	return Column{Name: name, Kind: KindCodedIndex, Family: family}
}

// TableDef is the catalog's static description of one table: its number,
// name and ordered columns.
type TableDef struct {
	Number  TableNumber
	Name    string
	Columns []Column
}

// catalog is the static registry of every metadata table defined by
// ECMA-335. It never changes after package initialization and is safe for
// concurrent read access.
var catalog = buildCatalog()

func buildCatalog() map[TableNumber]*TableDef {
	defs := []*TableDef{
		{Module, "Module", []Column{
			constant("Generation", 2),
			heapIndex("Name", HeapString),
			heapIndex("Mvid", HeapGUID),
			heapIndex("EncId", HeapGUID),
			heapIndex("EncBaseId", HeapGUID),
		}},
		{TypeRef, "TypeRef", []Column{
			codedIndex("ResolutionScope", resolutionScope),
			heapIndex("TypeName", HeapString),
			heapIndex("TypeNamespace", HeapString),
		}},
		{TypeDef, "TypeDef", []Column{
			constant("Flags", 4),
			heapIndex("TypeName", HeapString),
			heapIndex("TypeNamespace", HeapString),
			codedIndex("Extends", typeDefOrRef),
			simpleIndex("FieldList", Field),
			simpleIndex("MethodList", MethodDef),
		}},
		{FieldPtr, "FieldPtr", []Column{simpleIndex("Field", Field)}},
		{Field, "Field", []Column{
			constant("Flags", 2),
			heapIndex("Name", HeapString),
			heapIndex("Signature", HeapBlob),
		}},
		{MethodPtr, "MethodPtr", []Column{simpleIndex("Method", MethodDef)}},
		{MethodDef, "MethodDef", []Column{
			constant("RVA", 4),
			constant("ImplFlags", 2),
			constant("Flags", 2),
			heapIndex("Name", HeapString),
			heapIndex("Signature", HeapBlob),
			simpleIndex("ParamList", Param),
		}},
		{ParamPtr, "ParamPtr", []Column{simpleIndex("Param", Param)}},
		{Param, "Param", []Column{
			constant("Flags", 2),
			constant("Sequence", 2),
			heapIndex("Name", HeapString),
		}},
		{InterfaceImpl, "InterfaceImpl", []Column{
			simpleIndex("Class", TypeDef),
			codedIndex("Interface", typeDefOrRef),
		}},
		{MemberRef, "MemberRef", []Column{
			codedIndex("Class", memberRefParent),
			heapIndex("Name", HeapString),
			heapIndex("Signature", HeapBlob),
		}},
		{Constant, "Constant", []Column{
			constant("Type", 1),
			constant("Padding", 1),
			codedIndex("Parent", hasConstant),
			heapIndex("Value", HeapBlob),
		}},
		{CustomAttribute, "CustomAttribute", []Column{
			codedIndex("Parent", hasCustomAttribute),
			codedIndex("Type", customAttributeType),
			heapIndex("Value", HeapBlob),
		}},
		{FieldMarshal, "FieldMarshal", []Column{
			codedIndex("Parent", hasFieldMarshal),
			heapIndex("NativeType", HeapBlob),
		}},
		{DeclSecurity, "DeclSecurity", []Column{
			constant("Action", 2),
			codedIndex("Parent", hasDeclSecurity),
			heapIndex("PermissionSet", HeapBlob),
		}},
		{ClassLayout, "ClassLayout", []Column{
			constant("PackingSize", 2),
			constant("ClassSize", 4),
			simpleIndex("Parent", TypeDef),
		}},
		{FieldLayout, "FieldLayout", []Column{
			constant("Offset", 4),
			simpleIndex("Field", Field),
		}},
		{StandAloneSig, "StandAloneSig", []Column{
			heapIndex("Signature", HeapBlob),
		}},
		{EventMap, "EventMap", []Column{
			simpleIndex("Parent", TypeDef),
			simpleIndex("EventList", Event),
		}},
		{EventPtr, "EventPtr", []Column{simpleIndex("Event", Event)}},
		{Event, "Event", []Column{
			constant("EventFlags", 2),
			heapIndex("Name", HeapString),
			codedIndex("EventType", typeDefOrRef),
		}},
		{PropertyMap, "PropertyMap", []Column{
			simpleIndex("Parent", TypeDef),
			simpleIndex("PropertyList", Property),
		}},
		{PropertyPtr, "PropertyPtr", []Column{simpleIndex("Property", Property)}},
		{Property, "Property", []Column{
			constant("Flags", 2),
			heapIndex("Name", HeapString),
			heapIndex("Type", HeapBlob),
		}},
		{MethodSemantics, "MethodSemantics", []Column{
			constant("Semantics", 2),
			simpleIndex("Method", MethodDef),
			codedIndex("Association", hasSemantics),
		}},
		{MethodImpl, "MethodImpl", []Column{
			simpleIndex("Class", TypeDef),
			codedIndex("MethodBody", methodDefOrRef),
			codedIndex("MethodDeclaration", methodDefOrRef),
		}},
		{ModuleRef, "ModuleRef", []Column{heapIndex("Name", HeapString)}},
		{TypeSpec, "TypeSpec", []Column{heapIndex("Signature", HeapBlob)}},
		{ImplMap, "ImplMap", []Column{
			constant("MappingFlags", 2),
			codedIndex("MemberForwarded", memberForwarded),
			heapIndex("ImportName", HeapString),
			simpleIndex("ImportScope", ModuleRef),
		}},
		{FieldRVA, "FieldRVA", []Column{
			constant("RVA", 4),
			simpleIndex("Field", Field),
		}},
		{ENCLog, "ENCLog", []Column{
			constant("Token", 4),
			constant("FuncCode", 4),
		}},
		{ENCMap, "ENCMap", []Column{constant("Token", 4)}},
		{Assembly, "Assembly", []Column{
			constant("HashAlgId", 4),
			constant("MajorVersion", 2),
			constant("MinorVersion", 2),
			constant("BuildNumber", 2),
			constant("RevisionNumber", 2),
			constant("Flags", 4),
			heapIndex("PublicKey", HeapBlob),
			heapIndex("Name", HeapString),
			heapIndex("Culture", HeapString),
		}},
		{AssemblyProcessor, "AssemblyProcessor", []Column{constant("Processor", 4)}},
		{AssemblyOS, "AssemblyOS", []Column{
			constant("OSPlatformId", 4),
			constant("OSMajorVersion", 4),
			constant("OSMinorVersion", 4),
		}},
		{AssemblyRef, "AssemblyRef", []Column{
			constant("MajorVersion", 2),
			constant("MinorVersion", 2),
			constant("BuildNumber", 2),
			constant("RevisionNumber", 2),
			constant("Flags", 4),
			heapIndex("PublicKeyOrToken", HeapBlob),
			heapIndex("Name", HeapString),
			heapIndex("Culture", HeapString),
			heapIndex("HashValue", HeapBlob),
		}},
		{AssemblyRefProcessor, "AssemblyRefProcessor", []Column{
			constant("Processor", 4),
			simpleIndex("AssemblyRef", AssemblyRef),
		}},
		{AssemblyRefOS, "AssemblyRefOS", []Column{
			constant("OSPlatformId", 4),
			constant("OSMajorVersion", 4),
			constant("OSMinorVersion", 4),
			simpleIndex("AssemblyRef", AssemblyRef),
		}},
		{File, "File", []Column{
			constant("Flags", 4),
			heapIndex("Name", HeapString),
			heapIndex("HashValue", HeapBlob),
		}},
		{ExportedType, "ExportedType", []Column{
			constant("Flags", 4),
			constant("TypeDefId", 4),
			heapIndex("TypeName", HeapString),
			heapIndex("TypeNamespace", HeapString),
			codedIndex("Implementation", implementation),
		}},
		{ManifestResource, "ManifestResource", []Column{
			constant("Offset", 4),
			constant("Flags", 4),
			heapIndex("Name", HeapString),
			codedIndex("Implementation", implementation),
		}},
		{NestedClass, "NestedClass", []Column{
			simpleIndex("NestedClass", TypeDef),
			simpleIndex("EnclosingClass", TypeDef),
		}},
		{GenericParam, "GenericParam", []Column{
			constant("Number", 2),
			constant("Flags", 2),
			codedIndex("Owner", typeOrMethodDef),
			heapIndex("Name", HeapString),
		}},
		{MethodSpec, "MethodSpec", []Column{
			codedIndex("Method", methodDefOrRef),
			heapIndex("Instantiation", HeapBlob),
		}},
		{GenericParamConstraint, "GenericParamConstraint", []Column{
			simpleIndex("Owner", GenericParam),
			codedIndex("Constraint", typeDefOrRef),
		}},
	}

	m := make(map[TableNumber]*TableDef, len(defs))
	for _, d := range defs {
		m[d.Number] = d
	}
	return m
}
