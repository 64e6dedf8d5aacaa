package layout

// GlobalVariableView is a variable, member or array element with its
// resolved size and address. Children are laid out inside it.
type GlobalVariableView struct {
	Name     string
	Address  Address
	Size     int64
	TypeView TypeView
	Children []GlobalVariableView

	// set for bitfield members only
	BitSize   *int64
	BitOffset *int64
}

func NewGlobalVariableView(name string, address Address, size int64, typeView TypeView, children []GlobalVariableView) GlobalVariableView {
	return GlobalVariableView{
		Name:     name,
		Address:  address,
		Size:     size,
		TypeView: typeView,
		Children: children,
	}
}

// Walk visits v and every view below it depth first. Returning false from fn
// skips the children of the view just visited.
func (v GlobalVariableView) Walk(fn func(view GlobalVariableView, depth int) bool) {
	v.walk(fn, 0)
}

func (v GlobalVariableView) walk(fn func(view GlobalVariableView, depth int) bool, depth int) {
	if !fn(v, depth) {
		return
	}
	for _, c := range v.Children {
		c.walk(fn, depth+1)
	}
}

// TypeView describes the shape of a type. It carries no size or address.
type TypeView interface {
	typeView()
}

type TypeDefView struct {
	Name  string
	Inner TypeView
}

type ConstView struct {
	Inner TypeView
}

type VolatileView struct {
	Inner TypeView
}

type VoidPointerView struct{}

type PointerView struct {
	Inner TypeView
}

type BaseView struct {
	Name string
}

// StructureView and UnionView have an empty Name when anonymous.
type StructureView struct {
	Name string
}

type UnionView struct {
	Name string
}

type Enumerator struct {
	Name  string
	Value int64
}

type EnumView struct {
	Name        string
	Inner       TypeView
	Enumerators []Enumerator
}

// ArrayView with a nil UpperBound is an array of unknown length.
type ArrayView struct {
	Element    TypeView
	UpperBound *int64
}

type FunctionView struct{}

func (TypeDefView) typeView()     {}
func (ConstView) typeView()       {}
func (VolatileView) typeView()    {}
func (VoidPointerView) typeView() {}
func (PointerView) typeView()     {}
func (BaseView) typeView()        {}
func (StructureView) typeView()   {}
func (UnionView) typeView()       {}
func (EnumView) typeView()        {}
func (ArrayView) typeView()       {}
func (FunctionView) typeView()    {}

// Underlying strips typedef, const and volatile wrappers.
func Underlying(t TypeView) TypeView {
	for {
		switch v := t.(type) {
		case TypeDefView:
			t = v.Inner
		case ConstView:
			t = v.Inner
		case VolatileView:
			t = v.Inner
		default:
			return t
		}
	}
}
