package layout

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"

	dwarfhelper "dwarf2layout/dwarf"
)

// Extractor turns decoded entries into the type graph, the declaration table
// and the list of global variables. Entries lacking an attribute their tag
// requires are dropped with a warning.
type Extractor struct {
	types        *TypeEntryRepository
	declarations *VariableDeclarationEntryRepository

	diag Diagnostics

	// declarations in the order they were seen and the ones a definition
	// referred to
	declared   []VariableDeclarationEntryID
	referenced mapset.Set
}

func NewExtractor(types *TypeEntryRepository, declarations *VariableDeclarationEntryRepository) *Extractor {
	return &Extractor{
		types:        types,
		declarations: declarations,
	}
}

// Extract stores every type and declaration found in entries and returns the
// global variables in entry order together with the warnings raised.
func (x *Extractor) Extract(entries []*dwarfhelper.Entry) ([]GlobalVariable, Diagnostics) {
	x.diag = Diagnostics{}
	x.declared = x.declared[:0]
	x.referenced = mapset.NewThreadUnsafeSet()

	variables := make([]GlobalVariable, 0, len(entries)/4)
	for _, e := range entries {
		switch e.Tag {
		case dwarfhelper.TagVariable:
			if v, ok := x.variable(e); ok {
				variables = append(variables, v)
			}
		case dwarfhelper.TagEnumerator, dwarfhelper.TagSubrangeType,
			dwarfhelper.TagFormalParameter, dwarfhelper.TagMember:
			// only meaningful as children
		case dwarfhelper.TagOther:
			x.nestedTypes(e)
		default:
			x.typeEntry(e)
		}
	}

	for _, id := range x.declared {
		if x.referenced.Contains(id) {
			continue
		}
		dec, _ := x.declarations.FindByID(id)
		x.diag.Warn(CodeUnmatchedDeclaration, dec.Name,
			"declaration at %s has no definition in this file", id)
	}

	return variables, x.diag
}

func subject(e *dwarfhelper.Entry) string {
	if e.Name != nil {
		return fmt.Sprintf("%s %s at %#x", e.Tag, *e.Name, uint64(e.Offset))
	}
	return fmt.Sprintf("%s at %#x", e.Tag, uint64(e.Offset))
}

func (x *Extractor) missing(e *dwarfhelper.Entry, attr string) {
	x.diag.Warn(CodeMissingRequiredAttribute, subject(e), "%s entry should have %s", e.Tag, attr)
}

func (x *Extractor) variable(e *dwarfhelper.Entry) (GlobalVariable, bool) {
	var address Address
	if e.Location != nil {
		address = NewAddress(*e.Location)
	}

	switch {
	case e.Declaration:
		x.declaration(e)
		return GlobalVariable{}, false

	case e.Specification != nil:
		spec := VariableDeclarationEntryID(*e.Specification)
		x.referenced.Add(spec)
		return NewGlobalVariableWithSpec(address, spec), true
	}

	if e.Name == nil {
		x.missing(e, "name")
		return GlobalVariable{}, false
	}
	if e.Type == nil {
		x.missing(e, "type")
		return GlobalVariable{}, false
	}
	return NewGlobalVariable(address, *e.Name, TypeEntryID(*e.Type)), true
}

// declaration stores a declaration-only variable for a later definition to
// refer to through its specification.
func (x *Extractor) declaration(e *dwarfhelper.Entry) {
	if e.Name == nil {
		x.missing(e, "name")
		return
	}
	if e.Type == nil {
		x.missing(e, "type")
		return
	}
	id := VariableDeclarationEntryID(e.Offset)
	x.declarations.Save(NewVariableDeclarationEntry(id, *e.Name, TypeEntryID(*e.Type)))
	x.declared = append(x.declared, id)
}

// nestedTypes registers type definitions and variable declarations found
// below entries the extractor does not otherwise model, such as namespaces
// and subprograms.
func (x *Extractor) nestedTypes(e *dwarfhelper.Entry) {
	for _, kid := range e.Children {
		x.nestedType(kid)
	}
}

func (x *Extractor) typeEntry(e *dwarfhelper.Entry) {
	id := TypeEntryID(e.Offset)

	switch e.Tag {
	case dwarfhelper.TagTypedef:
		if e.Name == nil {
			x.missing(e, "name")
			return
		}
		if e.Type == nil {
			x.missing(e, "type")
			return
		}
		x.types.Save(NewTypedefEntry(id, *e.Name, TypeEntryID(*e.Type)))

	case dwarfhelper.TagConstType:
		if e.Type == nil {
			x.missing(e, "type")
			return
		}
		x.types.Save(NewConstTypeEntry(id, TypeEntryID(*e.Type)))

	case dwarfhelper.TagVolatileType:
		if e.Type == nil {
			x.missing(e, "type")
			return
		}
		x.types.Save(NewVolatileTypeEntry(id, TypeEntryID(*e.Type)))

	case dwarfhelper.TagPointerType:
		if e.ByteSize == nil {
			x.missing(e, "size")
			return
		}
		var ref *TypeEntryID
		if e.Type != nil {
			r := TypeEntryID(*e.Type)
			ref = &r
		}
		x.types.Save(NewPointerTypeEntry(id, *e.ByteSize, ref))

	case dwarfhelper.TagBaseType:
		if e.Name == nil {
			x.missing(e, "name")
			return
		}
		if e.ByteSize == nil {
			x.missing(e, "size")
			return
		}
		x.types.Save(NewBaseTypeEntry(id, *e.Name, *e.ByteSize))

	case dwarfhelper.TagEnumerationType:
		x.enumerationType(e)

	case dwarfhelper.TagStructureType:
		x.structureType(e)

	case dwarfhelper.TagUnionType:
		x.unionType(e)

	case dwarfhelper.TagArrayType:
		x.arrayType(e)

	case dwarfhelper.TagSubroutineType:
		x.subroutineType(e)
	}
}

func (x *Extractor) enumerationType(e *dwarfhelper.Entry) {
	if e.Type == nil {
		x.missing(e, "type")
		return
	}

	enumerators := make([]EnumeratorEntry, 0, len(e.Children))
	for _, kid := range e.Children {
		if kid.Tag != dwarfhelper.TagEnumerator {
			continue
		}
		if kid.Name == nil {
			x.missing(kid, "name")
			continue
		}
		if kid.ConstValue == nil {
			x.missing(kid, "const_value")
			continue
		}
		enumerators = append(enumerators, EnumeratorEntry{Name: *kid.Name, Value: *kid.ConstValue})
	}

	x.types.Save(NewEnumTypeEntry(TypeEntryID(e.Offset), optionalName(e), TypeEntryID(*e.Type), enumerators))
}

// composite returns the size of a structure or union. A declaration-only
// (incomplete) type has size zero so pointers to it still resolve.
func (x *Extractor) composite(e *dwarfhelper.Entry) (int64, bool) {
	if e.ByteSize != nil {
		return *e.ByteSize, true
	}
	if e.Declaration {
		return 0, true
	}
	x.missing(e, "size")
	return 0, false
}

func (x *Extractor) structureType(e *dwarfhelper.Entry) {
	size, ok := x.composite(e)
	if !ok {
		return
	}

	var members []StructureTypeMemberEntry
	for _, kid := range e.Children {
		if kid.Tag != dwarfhelper.TagMember || kid.Declaration {
			x.nestedType(kid)
			continue
		}
		if kid.Name == nil {
			x.missing(kid, "name")
			continue
		}
		if kid.DataMemberLocation == nil {
			x.missing(kid, "data_member_location")
			continue
		}
		if kid.Type == nil {
			x.missing(kid, "type")
			continue
		}
		members = append(members, StructureTypeMemberEntry{
			Name:      *kid.Name,
			Location:  *kid.DataMemberLocation,
			TypeRef:   TypeEntryID(*kid.Type),
			BitSize:   kid.BitSize,
			BitOffset: kid.BitOffset,
		})
	}

	x.types.Save(NewStructureTypeEntry(TypeEntryID(e.Offset), optionalName(e), size, members))
}

func (x *Extractor) unionType(e *dwarfhelper.Entry) {
	size, ok := x.composite(e)
	if !ok {
		return
	}

	var members []UnionTypeMemberEntry
	for _, kid := range e.Children {
		if kid.Tag != dwarfhelper.TagMember || kid.Declaration {
			x.nestedType(kid)
			continue
		}
		if kid.Name == nil {
			x.missing(kid, "name")
			continue
		}
		if kid.Type == nil {
			x.missing(kid, "type")
			continue
		}
		members = append(members, UnionTypeMemberEntry{
			Name:      *kid.Name,
			TypeRef:   TypeEntryID(*kid.Type),
			BitSize:   kid.BitSize,
			BitOffset: kid.BitOffset,
		})
	}

	x.types.Save(NewUnionTypeEntry(TypeEntryID(e.Offset), optionalName(e), size, members))
}

// nestedType registers a type defined inside a namespace, structure or union,
// C++ nested classes and enums for example. Declarations of namespace
// variables and static members are kept for their definitions, other nested
// variables are not part of the layout.
func (x *Extractor) nestedType(e *dwarfhelper.Entry) {
	switch e.Tag {
	case dwarfhelper.TagVariable, dwarfhelper.TagMember:
		if e.Declaration {
			x.declaration(e)
		}
	case dwarfhelper.TagEnumerator, dwarfhelper.TagSubrangeType, dwarfhelper.TagFormalParameter:
	case dwarfhelper.TagOther:
		x.nestedTypes(e)
	default:
		x.typeEntry(e)
	}
}

// arrayType stores an array. Every subrange after the first is a further
// dimension, stored as an array type of its own under the subrange offset.
func (x *Extractor) arrayType(e *dwarfhelper.Entry) {
	if e.Type == nil {
		x.missing(e, "type")
		return
	}

	var subranges []*dwarfhelper.Entry
	for _, kid := range e.Children {
		if kid.Tag == dwarfhelper.TagSubrangeType {
			subranges = append(subranges, kid)
		}
	}

	element := TypeEntryID(*e.Type)
	for i := len(subranges) - 1; i > 0; i-- {
		dim := TypeEntryID(subranges[i].Offset)
		x.types.Save(NewArrayTypeEntry(dim, element, subranges[i].UpperBound))
		element = dim
	}

	var upperBound *int64
	if len(subranges) > 0 {
		upperBound = subranges[0].UpperBound
	}
	x.types.Save(NewArrayTypeEntry(TypeEntryID(e.Offset), element, upperBound))
}

func (x *Extractor) subroutineType(e *dwarfhelper.Entry) {
	var args []TypeEntryID
	for _, kid := range e.Children {
		if kid.Tag != dwarfhelper.TagFormalParameter {
			continue
		}
		if kid.Type == nil {
			x.missing(kid, "type")
			continue
		}
		args = append(args, TypeEntryID(*kid.Type))
	}

	var ret *TypeEntryID
	if e.Type != nil {
		r := TypeEntryID(*e.Type)
		ret = &r
	}
	x.types.Save(NewFunctionTypeEntry(TypeEntryID(e.Offset), args, ret))
}

func optionalName(e *dwarfhelper.Entry) string {
	if e.Name == nil {
		return ""
	}
	return *e.Name
}
