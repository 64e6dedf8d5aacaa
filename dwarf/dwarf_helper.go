package dwarfhelper

import (
	"debug/dwarf"
	"fmt"

	"github.com/go-delve/delve/pkg/dwarf/op"
)

func attrString(entry *dwarf.Entry, attr dwarf.Attr) *string {
	if s, ok := entry.Val(attr).(string); ok {
		return &s
	}
	return nil
}

// attrInt reads a constant class attribute. debug/dwarf hands back int64 for
// most data forms and uint64 for a few, both are accepted.
func attrInt(entry *dwarf.Entry, attr dwarf.Attr) *int64 {
	fld := entry.AttrField(attr)
	if fld == nil || fld.Class != dwarf.ClassConstant {
		return nil
	}
	switch v := fld.Val.(type) {
	case int64:
		return &v
	case uint64:
		n := int64(v)
		return &n
	}
	return nil
}

func attrOffset(entry *dwarf.Entry, attr dwarf.Attr) *dwarf.Offset {
	if off, ok := entry.Val(attr).(dwarf.Offset); ok {
		return &off
	}
	return nil
}

// upperBound reads the highest index of a subrange. A DW_AT_count is turned
// into the equivalent upper bound.
func upperBound(entry *dwarf.Entry) *int64 {
	if ub := attrInt(entry, dwarf.AttrUpperBound); ub != nil {
		return ub
	}
	if count := attrInt(entry, dwarf.AttrCount); count != nil {
		ub := *count - 1
		return &ub
	}
	return nil
}

func bitOffset(entry *dwarf.Entry) *int64 {
	if off := attrInt(entry, dwarf.AttrBitOffset); off != nil {
		return off
	}
	return attrInt(entry, dwarf.AttrDataBitOffset)
}

// memberLocation reads DW_AT_data_member_location. Older producers encode
// the offset as a DW_OP_plus_uconst expression rather than a constant.
func memberLocation(entry *dwarf.Entry, ptrSize int) (*int64, error) {
	fld := entry.AttrField(dwarf.AttrDataMemberLoc)
	if fld == nil {
		return nil, nil
	}
	switch fld.Class {
	case dwarf.ClassConstant:
		return attrInt(entry, dwarf.AttrDataMemberLoc), nil
	case dwarf.ClassExprLoc:
		instr, _ := fld.Val.([]byte)
		// the expression expects the structure base on the stack
		program := append([]byte{byte(op.DW_OP_lit0)}, instr...)
		loc, err := evaluate(program, ptrSize, 0)
		if err != nil {
			return nil, err
		}
		off := int64(loc)
		return &off, nil
	}
	return nil, fmt.Errorf("unsupported data member location class %s", fld.Class)
}

// variableLocation evaluates the DW_AT_location expression of a static
// variable. A nil result without error means the variable has no storage
// described by a single expression.
func variableLocation(entry *dwarf.Entry, ptrSize int, staticBase uint64) (*uint64, error) {
	fld := entry.AttrField(dwarf.AttrLocation)
	if fld == nil || fld.Class != dwarf.ClassExprLoc {
		return nil, nil
	}
	instr, _ := fld.Val.([]byte)
	if len(instr) == 0 {
		return nil, nil
	}
	addr, err := evaluate(instr, ptrSize, staticBase)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func evaluate(instr []byte, ptrSize int, staticBase uint64) (uint64, error) {
	regs := op.DwarfRegisters{StaticBase: staticBase}
	addr, pieces, err := op.ExecuteStackProgram(regs, instr, ptrSize, nil)
	if err != nil {
		return 0, err
	}
	if len(pieces) > 0 {
		return 0, fmt.Errorf("location is split into %d pieces", len(pieces))
	}
	return uint64(addr), nil
}
