// Package report prints global variable views as a fromelf style memory
// layout listing. Each variable becomes a block with one line per variable,
// member and array element:
//
//	address    size (bit)   variable_name        type
//	0x00004030 0x008        hoge                 struct hoge
//	0x00004030 0x004        hoge.hoge            int
package report

import (
	"fmt"
	"io"
	"strings"

	"dwarf2layout/layout"
)

const (
	addressWidth      = 10
	sizeWidth         = 5
	bitfieldWidth     = 7
	variableNameWidth = 20
)

// Line is one flattened view.
type Line struct {
	Address    uint64
	HasAddress bool
	Size       int64
	Bitfield   string
	Name       string
	TypeText   string
	Depth      int
}

// Lines flattens a view depth first, qualifying member names with a dot and
// element names with brackets.
func Lines(view layout.GlobalVariableView) []Line {
	var lines []Line
	flatten(view, "", nil, 0, &lines)
	return lines
}

func flatten(view layout.GlobalVariableView, prefix string, parent layout.TypeView, depth int, lines *[]Line) {
	name := qualify(prefix, parent, view.Name)
	addr, ok := view.Address.Value()
	*lines = append(*lines, Line{
		Address:    addr,
		HasAddress: ok,
		Size:       view.Size,
		Bitfield:   bitfield(view),
		Name:       name,
		TypeText:   TypeString(view.TypeView),
		Depth:      depth,
	})
	for _, c := range view.Children {
		flatten(c, name, view.TypeView, depth+1, lines)
	}
}

func qualify(prefix string, parent layout.TypeView, name string) string {
	if parent == nil {
		return name
	}
	switch layout.Underlying(parent).(type) {
	case layout.ArrayView:
		return fmt.Sprintf("%s[%s]", prefix, name)
	case layout.StructureView, layout.UnionView:
		return prefix + "." + name
	}
	return name
}

func bitfield(view layout.GlobalVariableView) string {
	if view.BitSize == nil || view.BitOffset == nil {
		return ""
	}
	return fmt.Sprintf("(%d:%d)", *view.BitOffset, *view.BitSize)
}

// TypeString renders a type shape as text, "const int" or "pointer to
// struct node" for example.
func TypeString(t layout.TypeView) string {
	switch v := t.(type) {
	case layout.TypeDefView:
		if e, ok := v.Inner.(layout.EnumView); ok {
			return fmt.Sprintf("%s %s", v.Name, enumString(e))
		}
		return v.Name
	case layout.ConstView:
		return "const " + TypeString(v.Inner)
	case layout.VolatileView:
		return "volatile " + TypeString(v.Inner)
	case layout.VoidPointerView:
		return "void pointer"
	case layout.PointerView:
		return "pointer to " + TypeString(v.Inner)
	case layout.BaseView:
		return v.Name
	case layout.StructureView:
		return "struct " + v.Name
	case layout.UnionView:
		return "union " + v.Name
	case layout.EnumView:
		return enumString(v)
	case layout.ArrayView:
		if v.UpperBound == nil {
			return TypeString(v.Element) + "[]"
		}
		return fmt.Sprintf("%s[%d]", TypeString(v.Element), *v.UpperBound)
	case layout.FunctionView:
		return "function"
	}
	return "unknown"
}

func enumString(e layout.EnumView) string {
	var s strings.Builder
	fmt.Fprintf(&s, "enum %s: %s  values = ", e.Name, TypeString(e.Inner))
	for _, v := range e.Enumerators {
		fmt.Fprintf(&s, "%s: %d, ", v.Name, v.Value)
	}
	return s.String()
}

func header() string {
	return fmt.Sprintf("%-*s %-*s%-*s %-*s %s",
		addressWidth, "address",
		sizeWidth, "size",
		bitfieldWidth, "(bit)",
		variableNameWidth, "variable_name",
		"type")
}

func (l Line) String() string {
	// unknown addresses print as zero
	return fmt.Sprintf("0x%0*x 0x%0*x%-*s %-*s %s",
		addressWidth-2, l.Address,
		sizeWidth-2, l.Size,
		bitfieldWidth, l.Bitfield,
		variableNameWidth, l.Name,
		l.TypeText)
}

// Write prints one block per view, each block followed by an empty line.
func Write(w io.Writer, views []layout.GlobalVariableView) error {
	for _, view := range views {
		if _, err := fmt.Fprintln(w, header()); err != nil {
			return err
		}
		for _, l := range Lines(view) {
			if _, err := fmt.Fprintln(w, l.String()); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
