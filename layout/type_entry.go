package layout

import (
	"debug/dwarf"
	"fmt"
)

// TypeEntryID identifies a type by the offset of the debug-info entry that
// described it. An id may refer to an entry that was never stored.
type TypeEntryID dwarf.Offset

func (id TypeEntryID) String() string {
	return fmt.Sprintf("%#x", uint64(id))
}

// TypeEntry is one node of the type graph.
type TypeEntry struct {
	ID   TypeEntryID
	Kind TypeKind
}

func (e TypeEntry) EntityID() TypeEntryID {
	return e.ID
}

// TypeKind is implemented by TypeDef, ConstType, VolatileType, PointerType,
// BaseType, EnumType, StructureType, UnionType, ArrayType and FunctionType.
type TypeKind interface {
	typeKind()
}

type TypeDef struct {
	Name    string
	TypeRef TypeEntryID
}

type ConstType struct {
	TypeRef TypeEntryID
}

type VolatileType struct {
	TypeRef TypeEntryID
}

// PointerType with a nil TypeRef is a void pointer.
type PointerType struct {
	Size    int64
	TypeRef *TypeEntryID
}

type BaseType struct {
	Name string
	Size int64
}

type EnumeratorEntry struct {
	Name  string
	Value int64
}

// EnumType takes its layout from TypeRef, the underlying integer type.
type EnumType struct {
	Name        string
	TypeRef     TypeEntryID
	Enumerators []EnumeratorEntry
}

// StructureTypeMemberEntry locates a member at a byte offset from the
// structure base.
type StructureTypeMemberEntry struct {
	Name      string
	Location  int64
	TypeRef   TypeEntryID
	BitSize   *int64
	BitOffset *int64
}

type StructureType struct {
	Name    string
	Size    int64
	Members []StructureTypeMemberEntry
}

// UnionTypeMemberEntry has no location, every member starts at the union
// base.
type UnionTypeMemberEntry struct {
	Name      string
	TypeRef   TypeEntryID
	BitSize   *int64
	BitOffset *int64
}

type UnionType struct {
	Name    string
	Size    int64
	Members []UnionTypeMemberEntry
}

// ArrayType with a nil UpperBound has no statically known length.
type ArrayType struct {
	ElementTypeRef TypeEntryID
	UpperBound     *int64
}

// FunctionType with a nil ReturnTypeRef returns void.
type FunctionType struct {
	ArgTypeRefs   []TypeEntryID
	ReturnTypeRef *TypeEntryID
}

func (TypeDef) typeKind()       {}
func (ConstType) typeKind()     {}
func (VolatileType) typeKind()  {}
func (PointerType) typeKind()   {}
func (BaseType) typeKind()      {}
func (EnumType) typeKind()      {}
func (StructureType) typeKind() {}
func (UnionType) typeKind()     {}
func (ArrayType) typeKind()     {}
func (FunctionType) typeKind()  {}

func NewTypedefEntry(id TypeEntryID, name string, typeRef TypeEntryID) TypeEntry {
	return TypeEntry{ID: id, Kind: TypeDef{Name: name, TypeRef: typeRef}}
}

func NewConstTypeEntry(id TypeEntryID, typeRef TypeEntryID) TypeEntry {
	return TypeEntry{ID: id, Kind: ConstType{TypeRef: typeRef}}
}

func NewVolatileTypeEntry(id TypeEntryID, typeRef TypeEntryID) TypeEntry {
	return TypeEntry{ID: id, Kind: VolatileType{TypeRef: typeRef}}
}

func NewPointerTypeEntry(id TypeEntryID, size int64, typeRef *TypeEntryID) TypeEntry {
	return TypeEntry{ID: id, Kind: PointerType{Size: size, TypeRef: typeRef}}
}

func NewBaseTypeEntry(id TypeEntryID, name string, size int64) TypeEntry {
	return TypeEntry{ID: id, Kind: BaseType{Name: name, Size: size}}
}

func NewEnumTypeEntry(id TypeEntryID, name string, typeRef TypeEntryID, enumerators []EnumeratorEntry) TypeEntry {
	return TypeEntry{ID: id, Kind: EnumType{Name: name, TypeRef: typeRef, Enumerators: enumerators}}
}

func NewStructureTypeEntry(id TypeEntryID, name string, size int64, members []StructureTypeMemberEntry) TypeEntry {
	return TypeEntry{ID: id, Kind: StructureType{Name: name, Size: size, Members: members}}
}

func NewUnionTypeEntry(id TypeEntryID, name string, size int64, members []UnionTypeMemberEntry) TypeEntry {
	return TypeEntry{ID: id, Kind: UnionType{Name: name, Size: size, Members: members}}
}

func NewArrayTypeEntry(id TypeEntryID, elementTypeRef TypeEntryID, upperBound *int64) TypeEntry {
	return TypeEntry{ID: id, Kind: ArrayType{ElementTypeRef: elementTypeRef, UpperBound: upperBound}}
}

func NewFunctionTypeEntry(id TypeEntryID, argTypeRefs []TypeEntryID, returnTypeRef *TypeEntryID) TypeEntry {
	return TypeEntry{ID: id, Kind: FunctionType{ArgTypeRefs: argTypeRefs, ReturnTypeRef: returnTypeRef}}
}
