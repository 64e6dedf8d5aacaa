package dwarfhelper

import (
	"debug/dwarf"
	"fmt"

	"github.com/go-delve/delve/pkg/dwarf/reader"
)

// Warning is a decoding problem that did not stop the decoder.
type Warning struct {
	Offset  dwarf.Offset
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("entry %#x: %s", w.Offset, w.Message)
}

// Decoder turns the .debug_info section into trees of Entry, one tree per
// top level entry of every compile unit.
type Decoder struct {
	data *dwarf.Data

	// StaticBase is added to every address produced by DW_OP_addr.
	StaticBase uint64

	Warnings []Warning
}

func NewDecoder(data *dwarf.Data) *Decoder {
	return &Decoder{data: data}
}

// Decode returns the top level entries of all compile units in section
// order. Only a malformed section is an error.
func (d *Decoder) Decode() ([]*Entry, error) {
	rdr := reader.New(d.data)
	entries := make([]*Entry, 0, 64)
	for {
		cu, err := rdr.Next()
		if err != nil {
			return nil, err
		}
		if cu == nil {
			break
		}
		if cu.Tag != dwarf.TagCompileUnit && cu.Tag != dwarf.TagPartialUnit {
			rdr.SkipChildren()
			continue
		}
		if !cu.Children {
			continue
		}
		kids, err := d.readChildren(rdr, rdr.AddressSize(), true)
		if err != nil {
			return nil, err
		}
		entries = append(entries, kids...)
	}
	return entries, nil
}

func (d *Decoder) readChildren(rdr *reader.Reader, ptrSize int, topLevel bool) ([]*Entry, error) {
	var kids []*Entry
	for {
		kid, err := rdr.Next()
		if err != nil {
			return nil, err
		}
		if kid == nil || kid.Tag == 0 {
			return kids, nil
		}
		e := d.decodeEntry(kid, ptrSize, topLevel)
		if kid.Children {
			e.Children, err = d.readChildren(rdr, ptrSize, false)
			if err != nil {
				return nil, err
			}
		}
		kids = append(kids, e)
	}
}

func (d *Decoder) decodeEntry(entry *dwarf.Entry, ptrSize int, topLevel bool) *Entry {
	e := &Entry{
		Tag:           TagFromDwarf(entry.Tag),
		Offset:        entry.Offset,
		Name:          attrString(entry, dwarf.AttrName),
		ByteSize:      attrInt(entry, dwarf.AttrByteSize),
		Type:          attrOffset(entry, dwarf.AttrType),
		Specification: attrOffset(entry, dwarf.AttrSpecification),
		BitSize:       attrInt(entry, dwarf.AttrBitSize),
		BitOffset:     bitOffset(entry),
		ConstValue:    attrInt(entry, dwarf.AttrConstValue),
	}
	e.Declaration, _ = entry.Val(dwarf.AttrDeclaration).(bool)

	switch e.Tag {
	case TagSubrangeType:
		e.UpperBound = upperBound(entry)
	case TagMember:
		loc, err := memberLocation(entry, ptrSize)
		if err != nil {
			d.warn(entry.Offset, "data member location: %v", err)
		}
		// DWARF 4+ bitfields carry only DW_AT_data_bit_offset, counted from
		// the start of the structure
		if loc == nil && err == nil {
			if dbo := attrInt(entry, dwarf.AttrDataBitOffset); dbo != nil {
				byteOffset, bitOffset := *dbo/8, *dbo%8
				loc = &byteOffset
				e.BitOffset = &bitOffset
			}
		}
		e.DataMemberLocation = loc
	case TagVariable:
		// addresses of nested variables (locals, static members) are not
		// meaningful to the layout report
		if !topLevel {
			break
		}
		loc, err := variableLocation(entry, ptrSize, d.StaticBase)
		if err != nil {
			d.warn(entry.Offset, "location of %s: %v", nameOrAnon(e.Name), err)
		}
		e.Location = loc
	}
	return e
}

func (d *Decoder) warn(offset dwarf.Offset, format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, Warning{
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	})
}

func nameOrAnon(name *string) string {
	if name == nil {
		return "<anonymous>"
	}
	return *name
}
