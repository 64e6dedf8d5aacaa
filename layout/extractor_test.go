package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dwarfhelper "dwarf2layout/dwarf"
)

func extract(entries ...*dwarfhelper.Entry) (*TypeEntryRepository, *VariableDeclarationEntryRepository, []GlobalVariable, Diagnostics) {
	types := NewTypeEntryRepository()
	declarations := NewVariableDeclarationEntryRepository()
	variables, diag := NewExtractor(types, declarations).Extract(entries)
	return types, declarations, variables, diag
}

func findType(t *testing.T, types *TypeEntryRepository, id TypeEntryID) TypeKind {
	t.Helper()
	entry, ok := types.FindByID(id)
	require.True(t, ok, "type %s not stored", id)
	return entry.Kind
}

func TestExtractConst(t *testing.T) {
	types, _, variables, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x2d).Name("c").Type(0x48).Location(8196).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagBaseType, 0x41).Name("int").ByteSize(4).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagConstType, 0x48).Type(0x41).Build(),
	)

	assert.Empty(t, diag.Warnings)
	assert.Equal(t, []GlobalVariable{NewGlobalVariable(NewAddress(8196), "c", 0x48)}, variables)
	assert.Equal(t, ConstType{TypeRef: 0x41}, findType(t, types, 0x48))
	assert.Equal(t, BaseType{Name: "int", Size: 4}, findType(t, types, 0x41))
}

func TestExtractPointer(t *testing.T) {
	types, _, variables, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x1e).Name("p").Type(0x2d).Location(16432).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagPointerType, 0x2d).ByteSize(8).Type(0x33).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagPointerType, 0x40).ByteSize(8).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagPointerType, 0x50).Type(0x33).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagBaseType, 0x33).Name("int").ByteSize(4).Build(),
	)

	require.Len(t, variables, 1)
	assert.Equal(t, PointerType{Size: 8, TypeRef: ref(0x33)}, findType(t, types, 0x2d))
	assert.Equal(t, PointerType{Size: 8}, findType(t, types, 0x40))

	_, ok := types.FindByID(0x50)
	assert.False(t, ok)
	require.Len(t, diag.Warnings, 1)
	assert.Equal(t, CodeMissingRequiredAttribute, diag.Warnings[0].Code)
	assert.Equal(t, "pointer_type entry should have size", diag.Warnings[0].Message)
}

func TestExtractTypedef(t *testing.T) {
	types, _, _, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagTypedef, 0x2d).Name("myint").Type(0x41).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagTypedef, 0x35).Type(0x41).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagTypedef, 0x3d).Name("untyped").Build(),
	)

	assert.Equal(t, TypeDef{Name: "myint", TypeRef: 0x41}, findType(t, types, 0x2d))
	assert.Equal(t, 1, types.Len())
	assert.Equal(t, []string{CodeMissingRequiredAttribute, CodeMissingRequiredAttribute}, diag.Codes())
	assert.Equal(t, "typedef at 0x35", diag.Warnings[0].Subject)
	assert.Equal(t, "typedef untyped at 0x3d", diag.Warnings[1].Subject)
}

func TestExtractVolatile(t *testing.T) {
	types, _, _, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVolatileType, 0x2d).Type(0x41).Build(),
	)

	assert.Empty(t, diag.Warnings)
	assert.Equal(t, VolatileType{TypeRef: 0x41}, findType(t, types, 0x2d))
}

func TestExtractArray(t *testing.T) {
	types, _, _, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagArrayType, 0x2d).Type(0x41).Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagSubrangeType, 0x36).UpperBound(2).Build(),
		).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagArrayType, 0x50).Type(0x41).Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagSubrangeType, 0x59).Build(),
		).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagArrayType, 0x60).Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagSubrangeType, 0x69).UpperBound(2).Build(),
		).Build(),
	)

	assert.Equal(t, ArrayType{ElementTypeRef: 0x41, UpperBound: bound(2)}, findType(t, types, 0x2d))
	assert.Equal(t, ArrayType{ElementTypeRef: 0x41}, findType(t, types, 0x50))
	assert.Equal(t, []string{CodeMissingRequiredAttribute}, diag.Codes())
}

func TestExtractMultiDimensionalArray(t *testing.T) {
	// int m[2][3][4]
	types, _, _, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagArrayType, 0x2d).Type(0x41).Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagSubrangeType, 0x36).UpperBound(1).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagSubrangeType, 0x3a).UpperBound(2).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagSubrangeType, 0x3e).UpperBound(3).Build(),
		).Build(),
	)

	assert.Empty(t, diag.Warnings)
	assert.Equal(t, ArrayType{ElementTypeRef: 0x3a, UpperBound: bound(1)}, findType(t, types, 0x2d))
	assert.Equal(t, ArrayType{ElementTypeRef: 0x3e, UpperBound: bound(2)}, findType(t, types, 0x3a))
	assert.Equal(t, ArrayType{ElementTypeRef: 0x41, UpperBound: bound(3)}, findType(t, types, 0x3e))
}

func TestExtractEnum(t *testing.T) {
	types, _, _, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagEnumerationType, 0x2d).Name("color").Type(0x41).Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagEnumerator, 0x39).Name("RED").ConstValue(0).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagEnumerator, 0x3f).Name("GREEN").Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagEnumerator, 0x45).ConstValue(2).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagEnumerator, 0x4b).Name("BLUE").ConstValue(-1).Build(),
		).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagEnumerationType, 0x60).Name("untyped").Build(),
	)

	assert.Equal(t, EnumType{
		Name:        "color",
		TypeRef:     0x41,
		Enumerators: []EnumeratorEntry{{Name: "RED", Value: 0}, {Name: "BLUE", Value: -1}},
	}, findType(t, types, 0x2d))

	_, ok := types.FindByID(0x60)
	assert.False(t, ok)

	require.Len(t, diag.Warnings, 3)
	assert.Equal(t, "enumerator entry should have const_value", diag.Warnings[0].Message)
	assert.Equal(t, "enumerator entry should have name", diag.Warnings[1].Message)
	assert.Equal(t, "enumeration_type entry should have type", diag.Warnings[2].Message)
}

func TestExtractStructure(t *testing.T) {
	types, _, _, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagStructureType, 0x2d).Name("hoge").ByteSize(8).Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x39).Name("hoge").Type(0x65).DataMemberLocation(0).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x45).Name("fuga").Type(0x6c).DataMemberLocation(4).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x51).Name("nolocation").Type(0x65).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x57).Type(0x65).DataMemberLocation(4).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x5d).Name("notype").DataMemberLocation(4).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x61).Name("flag").Type(0x65).DataMemberLocation(4).
				BitSize(1).BitOffset(7).Build(),
		).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagStructureType, 0x80).Name("nosize").Build(),
	)

	assert.Equal(t, StructureType{
		Name: "hoge",
		Size: 8,
		Members: []StructureTypeMemberEntry{
			{Name: "hoge", Location: 0, TypeRef: 0x65},
			{Name: "fuga", Location: 4, TypeRef: 0x6c},
			{Name: "flag", Location: 4, TypeRef: 0x65, BitSize: bound(1), BitOffset: bound(7)},
		},
	}, findType(t, types, 0x2d))

	_, ok := types.FindByID(0x80)
	assert.False(t, ok)

	require.Len(t, diag.Warnings, 4)
	assert.Equal(t, "member entry should have data_member_location", diag.Warnings[0].Message)
	assert.Equal(t, "member entry should have name", diag.Warnings[1].Message)
	assert.Equal(t, "member entry should have type", diag.Warnings[2].Message)
	assert.Equal(t, "structure_type entry should have size", diag.Warnings[3].Message)
}

func TestExtractDeclarationOnlyStructure(t *testing.T) {
	types, _, _, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagStructureType, 0x2d).Name("opaque").Declaration(true).Build(),
	)

	assert.Empty(t, diag.Warnings)
	assert.Equal(t, StructureType{Name: "opaque"}, findType(t, types, 0x2d))
}

func TestExtractUnion(t *testing.T) {
	types, _, _, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagUnionType, 0x2d).Name("book").ByteSize(4).Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x39).Name("name").Type(0x53).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x45).Name("price").Type(0x5a).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x4b).Name("broken").Build(),
		).Build(),
	)

	assert.Equal(t, UnionType{
		Name: "book",
		Size: 4,
		Members: []UnionTypeMemberEntry{
			{Name: "name", TypeRef: 0x53},
			{Name: "price", TypeRef: 0x5a},
		},
	}, findType(t, types, 0x2d))
	assert.Equal(t, []string{CodeMissingRequiredAttribute}, diag.Codes())
}

func TestExtractNestedTypes(t *testing.T) {
	// struct outer { enum kind { A } k; }; declared inside a namespace
	types, _, _, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagOther, 0x20).Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagStructureType, 0x2d).Name("outer").ByteSize(4).Children(
				dwarfhelper.NewEntryBuilder(dwarfhelper.TagEnumerationType, 0x35).Name("kind").Type(0x60).Children(
					dwarfhelper.NewEntryBuilder(dwarfhelper.TagEnumerator, 0x3d).Name("A").ConstValue(0).Build(),
				).Build(),
				dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x45).Name("k").Type(0x35).DataMemberLocation(0).Build(),
			).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagBaseType, 0x60).Name("unsigned int").ByteSize(4).Build(),
		).Build(),
	)

	assert.Empty(t, diag.Warnings)
	assert.Equal(t, 3, types.Len())
	assert.IsType(t, EnumType{}, findType(t, types, 0x35))
	assert.IsType(t, StructureType{}, findType(t, types, 0x2d))
}

func TestExtractFunctionPointer(t *testing.T) {
	types, _, variables, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagSubroutineType, 0x2d).Type(0x41).Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagFormalParameter, 0x36).Type(0x41).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagFormalParameter, 0x3b).Type(0x48).Build(),
		).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagSubroutineType, 0x50).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagPointerType, 0x65).ByteSize(8).Type(0x2d).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x6b).Name("sub2").Type(0x65).Location(16424).Build(),
	)

	assert.Empty(t, diag.Warnings)
	assert.Equal(t, FunctionType{ArgTypeRefs: []TypeEntryID{0x41, 0x48}, ReturnTypeRef: ref(0x41)}, findType(t, types, 0x2d))
	assert.Equal(t, FunctionType{}, findType(t, types, 0x50))
	assert.Equal(t, []GlobalVariable{NewGlobalVariable(NewAddress(16424), "sub2", 0x65)}, variables)
}

func TestExtractExtern(t *testing.T) {
	_, declarations, variables, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x2d).Name("c").Type(0x37).Declaration(true).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagBaseType, 0x37).Name("int").ByteSize(4).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x3e).Specification(0x2d).Location(16428).Build(),
	)

	assert.Empty(t, diag.Warnings)
	assert.Equal(t, []GlobalVariable{NewGlobalVariableWithSpec(NewAddress(16428), 0x2d)}, variables)

	dec, ok := declarations.FindByID(0x2d)
	require.True(t, ok)
	assert.Equal(t, NewVariableDeclarationEntry(0x2d, "c", 0x37), dec)
}

func TestExtractUnmatchedDeclaration(t *testing.T) {
	_, declarations, variables, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x2d).Name("errno").Type(0x37).Declaration(true).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x33).Name("broken").Declaration(true).Build(),
	)

	assert.Empty(t, variables)
	assert.Equal(t, 1, declarations.Len())
	require.Len(t, diag.Warnings, 2)
	assert.Equal(t, CodeMissingRequiredAttribute, diag.Warnings[0].Code)
	assert.Equal(t, CodeUnmatchedDeclaration, diag.Warnings[1].Code)
	assert.Equal(t, "errno", diag.Warnings[1].Subject)
	assert.Equal(t, "declaration at 0x2d has no definition in this file", diag.Warnings[1].Message)
}

func TestExtractVariableWithoutLocation(t *testing.T) {
	_, _, variables, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x2d).Name("tls").Type(0x37).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x35).Type(0x37).Location(0x10).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x3d).Name("untyped").Location(0x10).Build(),
	)

	require.Len(t, variables, 1)
	assert.False(t, variables[0].Address.IsKnown())
	assert.Equal(t, []string{CodeMissingRequiredAttribute, CodeMissingRequiredAttribute}, diag.Codes())
}

func TestExtractIsRepeatable(t *testing.T) {
	entries := []*dwarfhelper.Entry{
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x2d).Name("c").Type(0x37).Declaration(true).Build(),
	}
	x := NewExtractor(NewTypeEntryRepository(), NewVariableDeclarationEntryRepository())

	_, first := x.Extract(entries)
	_, second := x.Extract(entries)
	assert.Equal(t, first.Codes(), second.Codes())
	assert.Equal(t, 1, second.Len())
}

func TestExtractNestedDeclarations(t *testing.T) {
	// namespace ns { int nsvar = 1; struct S { int a; static int sm; }; } int ns::S::sm = 2;
	_, declarations, variables, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagOther, 0x2e).Name("ns").Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x39).Name("nsvar").Type(0x4e).Declaration(true).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagStructureType, 0x46).Name("S").ByteSize(4).Children(
				dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x50).Name("a").Type(0x4e).DataMemberLocation(0).Build(),
				dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x5b).Name("sm").Type(0x4e).Declaration(true).Build(),
			).Build(),
		).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagBaseType, 0x4e).Name("int").ByteSize(4).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x70).Specification(0x39).Location(0x4010).Build(),
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x7a).Specification(0x5b).Location(0x4014).Build(),
	)

	assert.Empty(t, diag.Warnings)
	assert.Equal(t, []GlobalVariable{
		NewGlobalVariableWithSpec(NewAddress(0x4010), 0x39),
		NewGlobalVariableWithSpec(NewAddress(0x4014), 0x5b),
	}, variables)

	dec, ok := declarations.FindByID(0x39)
	require.True(t, ok)
	assert.Equal(t, NewVariableDeclarationEntry(0x39, "nsvar", 0x4e), dec)
	dec, ok = declarations.FindByID(0x5b)
	require.True(t, ok)
	assert.Equal(t, NewVariableDeclarationEntry(0x5b, "sm", 0x4e), dec)
}

func TestExtractStaticMemberIsNotLaidOut(t *testing.T) {
	types, declarations, _, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagStructureType, 0x46).Name("S").ByteSize(4).Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagMember, 0x50).Name("a").Type(0x4e).DataMemberLocation(0).Build(),
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x5b).Name("sm").Type(0x4e).Declaration(true).Build(),
		).Build(),
	)

	assert.Equal(t, StructureType{
		Name:    "S",
		Size:    4,
		Members: []StructureTypeMemberEntry{{Name: "a", Location: 0, TypeRef: 0x4e}},
	}, findType(t, types, 0x46))
	assert.Equal(t, 1, declarations.Len())
	assert.Equal(t, []string{CodeUnmatchedDeclaration}, diag.Codes())
}

func TestExtractNestedDefinitionIsSkipped(t *testing.T) {
	// static locals inside a function are not globals of the report
	_, declarations, variables, diag := extract(
		dwarfhelper.NewEntryBuilder(dwarfhelper.TagOther, 0x2e).Name("main").Children(
			dwarfhelper.NewEntryBuilder(dwarfhelper.TagVariable, 0x39).Name("counter").Type(0x4e).Location(0x4020).Build(),
		).Build(),
	)

	assert.Empty(t, variables)
	assert.Equal(t, 0, declarations.Len())
	assert.Empty(t, diag.Warnings)
}

func TestExtractRequiredAttributes(t *testing.T) {
	for _, tt := range []struct {
		name    string
		entry   *dwarfhelper.Entry
		id      TypeEntryID
		want    TypeKind
		message string
	}{
		{
			name:    "base type without name",
			entry:   dwarfhelper.NewEntryBuilder(dwarfhelper.TagBaseType, 0x41).ByteSize(4).Build(),
			id:      0x41,
			message: "base_type entry should have name",
		},
		{
			name:    "base type without size",
			entry:   dwarfhelper.NewEntryBuilder(dwarfhelper.TagBaseType, 0x41).Name("int").Build(),
			id:      0x41,
			message: "base_type entry should have size",
		},
		{
			name:    "const without type",
			entry:   dwarfhelper.NewEntryBuilder(dwarfhelper.TagConstType, 0x48).Build(),
			id:      0x48,
			message: "const_type entry should have type",
		},
		{
			name:    "volatile without type",
			entry:   dwarfhelper.NewEntryBuilder(dwarfhelper.TagVolatileType, 0x48).Build(),
			id:      0x48,
			message: "volatile_type entry should have type",
		},
		{
			name: "formal parameter without type",
			entry: dwarfhelper.NewEntryBuilder(dwarfhelper.TagSubroutineType, 0x2d).Type(0x41).Children(
				dwarfhelper.NewEntryBuilder(dwarfhelper.TagFormalParameter, 0x36).Build(),
				dwarfhelper.NewEntryBuilder(dwarfhelper.TagFormalParameter, 0x3b).Type(0x48).Build(),
			).Build(),
			id:      0x2d,
			want:    FunctionType{ArgTypeRefs: []TypeEntryID{0x48}, ReturnTypeRef: ref(0x41)},
			message: "formal_parameter entry should have type",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			types, _, _, diag := extract(tt.entry)

			entry, ok := types.FindByID(tt.id)
			if tt.want == nil {
				assert.False(t, ok)
			} else {
				require.True(t, ok)
				assert.Equal(t, tt.want, entry.Kind)
			}
			require.Len(t, diag.Warnings, 1)
			assert.Equal(t, CodeMissingRequiredAttribute, diag.Warnings[0].Code)
			assert.Equal(t, tt.message, diag.Warnings[0].Message)
		})
	}
}
