package layout

import (
	"debug/dwarf"
	"fmt"
)

type VariableDeclarationEntryID dwarf.Offset

func (id VariableDeclarationEntryID) String() string {
	return fmt.Sprintf("%#x", uint64(id))
}

// VariableDeclarationEntry is a declaration-only variable, such as an extern,
// waiting to be matched to its definition.
type VariableDeclarationEntry struct {
	ID      VariableDeclarationEntryID
	Name    string
	TypeRef TypeEntryID
}

func NewVariableDeclarationEntry(id VariableDeclarationEntryID, name string, typeRef TypeEntryID) VariableDeclarationEntry {
	return VariableDeclarationEntry{ID: id, Name: name, TypeRef: typeRef}
}

func (e VariableDeclarationEntry) EntityID() VariableDeclarationEntryID {
	return e.ID
}
