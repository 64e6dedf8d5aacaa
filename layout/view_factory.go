package layout

import (
	"strconv"
)

// DefaultMaxDepth bounds how deep a single variable may nest. Every typedef,
// qualifier, member and array dimension counts as one level.
const DefaultMaxDepth = 256

type Options struct {
	// MaxDepth of zero means DefaultMaxDepth.
	MaxDepth int
}

// ViewFactory projects global variables onto the type graph. The
// repositories are only read.
//
// Pointers are never followed into child views, only the shape of the
// pointee is described. That is what stops recursion on self referential
// types such as linked list nodes.
type ViewFactory struct {
	types        *TypeEntryRepository
	declarations *VariableDeclarationEntryRepository
	maxDepth     int

	diag Diagnostics
}

func NewViewFactory(types *TypeEntryRepository, declarations *VariableDeclarationEntryRepository, opts Options) *ViewFactory {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &ViewFactory{
		types:        types,
		declarations: declarations,
		maxDepth:     maxDepth,
	}
}

// Diagnostics returns the warnings raised so far.
func (f *ViewFactory) Diagnostics() Diagnostics {
	return f.diag
}

// FromGlobalVariables projects every variable, leaving out the ones that
// cannot be resolved. The warnings returned are the ones of this call only.
func (f *ViewFactory) FromGlobalVariables(variables []GlobalVariable) ([]GlobalVariableView, Diagnostics) {
	f.diag = Diagnostics{}
	views := make([]GlobalVariableView, 0, len(variables))
	for _, v := range variables {
		if view, ok := f.FromGlobalVariable(v); ok {
			views = append(views, view)
		}
	}
	return views, f.diag
}

// FromGlobalVariable expands the type of v. The result is false, and a
// warning recorded, when the type cannot be resolved at all.
func (f *ViewFactory) FromGlobalVariable(v GlobalVariable) (GlobalVariableView, bool) {
	name, typeRef := v.Name, v.TypeRef
	if v.Specification != nil {
		dec, ok := f.declarations.FindByID(*v.Specification)
		if !ok {
			f.diag.Warn(CodeUnknownSpecification, v.Name,
				"global variable refers unknown specification %s", *v.Specification)
			return GlobalVariableView{}, false
		}
		name, typeRef = dec.Name, dec.TypeRef
	}
	return f.resolve(name, v.Address, typeRef, 0)
}

func (f *ViewFactory) lookup(name string, ref TypeEntryID, depth int) (TypeEntry, bool) {
	if depth > f.maxDepth {
		f.diag.Warn(CodeDepthExceeded, name, "type nesting deeper than %d at %s", f.maxDepth, ref)
		return TypeEntry{}, false
	}
	entry, ok := f.types.FindByID(ref)
	if !ok {
		f.diag.Warn(CodeDanglingTypeReference, name, "refers unknown type offset %s", ref)
		return TypeEntry{}, false
	}
	return entry, true
}

func (f *ViewFactory) resolve(name string, address Address, ref TypeEntryID, depth int) (GlobalVariableView, bool) {
	entry, ok := f.lookup(name, ref, depth)
	if !ok {
		return GlobalVariableView{}, false
	}

	switch k := entry.Kind.(type) {
	case TypeDef:
		view, ok := f.resolve(name, address, k.TypeRef, depth+1)
		if !ok {
			return view, false
		}
		view.TypeView = TypeDefView{Name: k.Name, Inner: view.TypeView}
		return view, true

	case ConstType:
		view, ok := f.resolve(name, address, k.TypeRef, depth+1)
		if !ok {
			return view, false
		}
		view.TypeView = ConstView{Inner: view.TypeView}
		return view, true

	case VolatileType:
		view, ok := f.resolve(name, address, k.TypeRef, depth+1)
		if !ok {
			return view, false
		}
		view.TypeView = VolatileView{Inner: view.TypeView}
		return view, true

	case EnumType:
		view, ok := f.resolve(name, address, k.TypeRef, depth+1)
		if !ok {
			return view, false
		}
		view.TypeView = EnumView{Name: k.Name, Inner: view.TypeView, Enumerators: enumerators(k)}
		return view, true

	case PointerType:
		if k.TypeRef == nil {
			return NewGlobalVariableView(name, address, k.Size, VoidPointerView{}, nil), true
		}
		pointee, ok := f.typeView(name, *k.TypeRef, depth+1)
		if !ok {
			return GlobalVariableView{}, false
		}
		return NewGlobalVariableView(name, address, k.Size, PointerView{Inner: pointee}, nil), true

	case BaseType:
		return NewGlobalVariableView(name, address, k.Size, BaseView{Name: k.Name}, nil), true

	case StructureType:
		var members []GlobalVariableView
		for _, m := range k.Members {
			member, ok := f.resolve(m.Name, address.Add(m.Location), m.TypeRef, depth+1)
			if !ok {
				continue
			}
			member.BitSize, member.BitOffset = m.BitSize, m.BitOffset
			members = append(members, member)
		}
		return NewGlobalVariableView(name, address, k.Size, StructureView{Name: k.Name}, members), true

	case UnionType:
		var members []GlobalVariableView
		for _, m := range k.Members {
			member, ok := f.resolve(m.Name, address, m.TypeRef, depth+1)
			if !ok {
				continue
			}
			member.BitSize, member.BitOffset = m.BitSize, m.BitOffset
			members = append(members, member)
		}
		return NewGlobalVariableView(name, address, k.Size, UnionView{Name: k.Name}, members), true

	case ArrayType:
		return f.array(name, address, k, depth)

	case FunctionType:
		f.diag.Warn(CodeInvalidTypeUsage, name,
			"should not refer subroutine_type directly, referred offset %s", ref)
		return GlobalVariableView{}, false
	}

	return GlobalVariableView{}, false
}

// array synthesizes one child per element. Elements are placed one after
// the other using the size each actually resolved to, an element that fails
// to resolve takes no space.
func (f *ViewFactory) array(name string, address Address, k ArrayType, depth int) (GlobalVariableView, bool) {
	element, ok := f.typeView(name, k.ElementTypeRef, depth+1)
	if !ok {
		return GlobalVariableView{}, false
	}

	// an array without bounds is shown as a single element
	count := int64(1)
	if k.UpperBound != nil {
		count = *k.UpperBound + 1
		if count < 0 {
			count = 0
		}
	}

	elements := make([]GlobalVariableView, 0, minInt64(count, 1024))
	var offset int64
	for i := int64(0); i < count; i++ {
		view, ok := f.resolve(strconv.FormatInt(i, 10), address.Add(offset), k.ElementTypeRef, depth+1)
		if !ok {
			continue
		}
		offset += view.Size
		elements = append(elements, view)
	}

	return NewGlobalVariableView(name, address, offset, ArrayView{Element: element, UpperBound: k.UpperBound}, elements), true
}

// typeView describes the shape of ref without expanding any children.
func (f *ViewFactory) typeView(name string, ref TypeEntryID, depth int) (TypeView, bool) {
	entry, ok := f.lookup(name, ref, depth)
	if !ok {
		return nil, false
	}

	switch k := entry.Kind.(type) {
	case TypeDef:
		inner, ok := f.typeView(name, k.TypeRef, depth+1)
		if !ok {
			return nil, false
		}
		return TypeDefView{Name: k.Name, Inner: inner}, true

	case ConstType:
		inner, ok := f.typeView(name, k.TypeRef, depth+1)
		if !ok {
			return nil, false
		}
		return ConstView{Inner: inner}, true

	case VolatileType:
		inner, ok := f.typeView(name, k.TypeRef, depth+1)
		if !ok {
			return nil, false
		}
		return VolatileView{Inner: inner}, true

	case PointerType:
		if k.TypeRef == nil {
			return VoidPointerView{}, true
		}
		inner, ok := f.typeView(name, *k.TypeRef, depth+1)
		if !ok {
			return nil, false
		}
		return PointerView{Inner: inner}, true

	case BaseType:
		return BaseView{Name: k.Name}, true

	case EnumType:
		inner, ok := f.typeView(name, k.TypeRef, depth+1)
		if !ok {
			return nil, false
		}
		return EnumView{Name: k.Name, Inner: inner, Enumerators: enumerators(k)}, true

	case StructureType:
		return StructureView{Name: k.Name}, true

	case UnionType:
		return UnionView{Name: k.Name}, true

	case ArrayType:
		element, ok := f.typeView(name, k.ElementTypeRef, depth+1)
		if !ok {
			return nil, false
		}
		return ArrayView{Element: element, UpperBound: k.UpperBound}, true

	case FunctionType:
		return FunctionView{}, true
	}

	return nil, false
}

func enumerators(k EnumType) []Enumerator {
	enums := make([]Enumerator, len(k.Enumerators))
	for i, e := range k.Enumerators {
		enums[i] = Enumerator{Name: e.Name, Value: e.Value}
	}
	return enums
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
