package dwarfhelper

import (
	"debug/dwarf"
)

// Tag is the subset of DWARF tags the layout extractor distinguishes. Every
// other tag decodes as TagOther.
type Tag int

const (
	TagOther Tag = iota
	TagVariable
	TagTypedef
	TagConstType
	TagVolatileType
	TagPointerType
	TagBaseType
	TagEnumerationType
	TagEnumerator
	TagStructureType
	TagUnionType
	TagMember
	TagArrayType
	TagSubrangeType
	TagSubroutineType
	TagFormalParameter
)

func (t Tag) String() string {
	switch t {
	case TagVariable:
		return "variable"
	case TagTypedef:
		return "typedef"
	case TagConstType:
		return "const_type"
	case TagVolatileType:
		return "volatile_type"
	case TagPointerType:
		return "pointer_type"
	case TagBaseType:
		return "base_type"
	case TagEnumerationType:
		return "enumeration_type"
	case TagEnumerator:
		return "enumerator"
	case TagStructureType:
		return "structure_type"
	case TagUnionType:
		return "union_type"
	case TagMember:
		return "member"
	case TagArrayType:
		return "array_type"
	case TagSubrangeType:
		return "subrange_type"
	case TagSubroutineType:
		return "subroutine_type"
	case TagFormalParameter:
		return "formal_parameter"
	}
	return "other"
}

// TagFromDwarf maps a debug/dwarf tag onto Tag. Class types are laid out like
// structures and reference types like pointers.
func TagFromDwarf(tag dwarf.Tag) Tag {
	switch tag {
	case dwarf.TagVariable:
		return TagVariable
	case dwarf.TagTypedef:
		return TagTypedef
	case dwarf.TagConstType:
		return TagConstType
	case dwarf.TagVolatileType:
		return TagVolatileType
	case dwarf.TagPointerType, dwarf.TagReferenceType, dwarf.TagRvalueReferenceType:
		return TagPointerType
	case dwarf.TagBaseType:
		return TagBaseType
	case dwarf.TagEnumerationType:
		return TagEnumerationType
	case dwarf.TagEnumerator:
		return TagEnumerator
	case dwarf.TagStructType, dwarf.TagClassType:
		return TagStructureType
	case dwarf.TagUnionType:
		return TagUnionType
	case dwarf.TagMember:
		return TagMember
	case dwarf.TagArrayType:
		return TagArrayType
	case dwarf.TagSubrangeType:
		return TagSubrangeType
	case dwarf.TagSubroutineType:
		return TagSubroutineType
	case dwarf.TagFormalParameter:
		return TagFormalParameter
	}
	return TagOther
}

// Entry is one decoded debug-info entry. Optional attributes are nil when the
// entry does not carry them. Children keep the order they have in the
// section.
type Entry struct {
	Tag    Tag
	Offset dwarf.Offset

	Name          *string
	ByteSize      *int64
	Location      *uint64
	Type          *dwarf.Offset
	UpperBound    *int64
	Declaration   bool
	Specification *dwarf.Offset

	DataMemberLocation *int64
	BitSize            *int64
	BitOffset          *int64
	ConstValue         *int64

	Children []*Entry
}

// EntryBuilder assembles an Entry one attribute at a time.
//
//	e := NewEntryBuilder(TagBaseType, 0x41).Name("int").ByteSize(4).Build()
type EntryBuilder struct {
	e Entry
}

func NewEntryBuilder(tag Tag, offset dwarf.Offset) *EntryBuilder {
	return &EntryBuilder{e: Entry{Tag: tag, Offset: offset}}
}

func (b *EntryBuilder) Name(name string) *EntryBuilder {
	b.e.Name = &name
	return b
}

func (b *EntryBuilder) ByteSize(size int64) *EntryBuilder {
	b.e.ByteSize = &size
	return b
}

func (b *EntryBuilder) Location(addr uint64) *EntryBuilder {
	b.e.Location = &addr
	return b
}

func (b *EntryBuilder) Type(offset dwarf.Offset) *EntryBuilder {
	b.e.Type = &offset
	return b
}

func (b *EntryBuilder) UpperBound(bound int64) *EntryBuilder {
	b.e.UpperBound = &bound
	return b
}

func (b *EntryBuilder) Declaration(declaration bool) *EntryBuilder {
	b.e.Declaration = declaration
	return b
}

func (b *EntryBuilder) Specification(offset dwarf.Offset) *EntryBuilder {
	b.e.Specification = &offset
	return b
}

func (b *EntryBuilder) DataMemberLocation(loc int64) *EntryBuilder {
	b.e.DataMemberLocation = &loc
	return b
}

func (b *EntryBuilder) BitSize(size int64) *EntryBuilder {
	b.e.BitSize = &size
	return b
}

func (b *EntryBuilder) BitOffset(offset int64) *EntryBuilder {
	b.e.BitOffset = &offset
	return b
}

func (b *EntryBuilder) ConstValue(value int64) *EntryBuilder {
	b.e.ConstValue = &value
	return b
}

func (b *EntryBuilder) Children(children ...*Entry) *EntryBuilder {
	b.e.Children = append(b.e.Children, children...)
	return b
}

func (b *EntryBuilder) Build() *Entry {
	e := b.e
	return &e
}
