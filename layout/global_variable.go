package layout

import "fmt"

// Address is a byte address that may be unknown. The zero value is unknown.
type Address struct {
	value uint64
	valid bool
}

func NewAddress(value uint64) Address {
	return Address{value: value, valid: true}
}

// Add returns the address delta bytes further on. An unknown address stays
// unknown.
func (a Address) Add(delta int64) Address {
	if !a.valid {
		return a
	}
	return Address{value: a.value + uint64(delta), valid: true}
}

func (a Address) Value() (uint64, bool) {
	return a.value, a.valid
}

func (a Address) IsKnown() bool {
	return a.valid
}

func (a Address) String() string {
	if !a.valid {
		return "<unknown>"
	}
	return fmt.Sprintf("%#x", a.value)
}

// GlobalVariable is a variable with static storage. A variable defined apart
// from its declaration carries a Specification, the name and type are then
// taken from the declaration.
type GlobalVariable struct {
	Address       Address
	Name          string
	TypeRef       TypeEntryID
	Specification *VariableDeclarationEntryID
}

func NewGlobalVariable(address Address, name string, typeRef TypeEntryID) GlobalVariable {
	return GlobalVariable{Address: address, Name: name, TypeRef: typeRef}
}

func NewGlobalVariableWithSpec(address Address, spec VariableDeclarationEntryID) GlobalVariable {
	return GlobalVariable{Address: address, Specification: &spec}
}
