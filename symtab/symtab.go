package symtab

import (
	"debug/elf"
	"errors"

	dwarfhelper "dwarf2layout/dwarf"
)

// Table holds the data object symbols of an ELF file by name.
type Table struct {
	symbols map[string]elf.Symbol
}

// ReadObjectSymbols reads every STT_OBJECT symbol with a defined section. A
// stripped file gives an empty table.
func ReadObjectSymbols(file *elf.File) (*Table, error) {
	t := &Table{symbols: make(map[string]elf.Symbol)}
	symbols, err := file.Symbols()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			return t, nil
		}
		return nil, err
	}
	for _, symbol := range symbols {
		t.add(symbol)
	}
	return t, nil
}

func (t *Table) add(symbol elf.Symbol) {
	if elf.ST_TYPE(symbol.Info) != elf.STT_OBJECT {
		return
	}
	if symbol.Section == elf.SHN_UNDEF {
		return
	}
	t.symbols[symbol.Name] = symbol
}

func (t *Table) Lookup(name string) (elf.Symbol, bool) {
	s, ok := t.symbols[name]
	return s, ok
}

func (t *Table) Len() int {
	return len(t.symbols)
}

// FillLocations gives top level variables without a location expression the
// address of the object symbol of the same name plus staticBase. It returns
// how many were filled.
func (t *Table) FillLocations(entries []*dwarfhelper.Entry, staticBase uint64) int {
	n := 0
	for _, e := range entries {
		if e.Tag != dwarfhelper.TagVariable || e.Location != nil || e.Declaration || e.Name == nil {
			continue
		}
		s, ok := t.symbols[*e.Name]
		if !ok {
			continue
		}
		addr := s.Value + staticBase
		e.Location = &addr
		n++
	}
	return n
}
