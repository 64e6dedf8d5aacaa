package dwarfhelper

import (
	"debug/dwarf"
	"debug/elf"
	"fmt"
)

type DwarfInfo struct {
	elfFile *elf.File
	data    *dwarf.Data
}

// NewDwarfInfo opens an ELF file and loads its debug info. elf.File.DWARF
// inflates compressed sections and applies the relocations of relocatable
// objects.
func NewDwarfInfo(input string) (*DwarfInfo, error) {
	elfFile, err := elf.Open(input)
	if err != nil {
		return nil, err
	}
	dwarfOut, err := elfFile.DWARF()
	if err != nil {
		elfFile.Close()
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return &DwarfInfo{
		elfFile: elfFile,
		data:    dwarfOut,
	}, nil
}

func (_this *DwarfInfo) GetData() *dwarf.Data {
	return _this.data
}

func (_this *DwarfInfo) GetElfFile() *elf.File {
	return _this.elfFile
}

func (_this *DwarfInfo) Close() error {
	return _this.elfFile.Close()
}
