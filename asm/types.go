package asm

import "fmt"

// TypeTag is the 4-bit primitive type carried by every value in the data
// model. The numeric values and the CHAR..REF ordering are load-bearing:
// opcode families index their type-specific variant by this tag, and the
// class/method/field constant pool reserves indices 0..5 for the six
// primitive tags in this exact order.
type TypeTag uint8

const (
	TagChar TypeTag = iota
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagRef
)

var typeTagNames = [...]string{"CHAR", "SHORT", "INT", "LONG", "FLOAT", "DOUBLE", "REF"}

// typeTagLetters holds the single-character family-variant prefix used in
// mnemonic names (ICSTL, LADD, VBEQ, ...).
var typeTagLetters = [...]byte{'C', 'S', 'I', 'L', 'F', 'D', 'V'}

func (t TypeTag) String() string {
	if int(t) < len(typeTagNames) {
		return typeTagNames[t]
	}
	return fmt.Sprintf("TypeTag(%d)", uint8(t))
}

func (t TypeTag) Letter() byte {
	if int(t) < len(typeTagLetters) {
		return typeTagLetters[t]
	}
	return '?'
}

// Valid reports whether t is one of the seven declared primitive tags.
func (t TypeTag) Valid() bool { return t <= TagRef }

// IsScalar reports whether t is anything but REF.
func (t TypeTag) IsScalar() bool { return t.Valid() && t != TagRef }

// SlotWidth is the number of 32-bit stack slots a local/argument of this
// type occupies: 1 for CHAR/SHORT/INT/FLOAT, 2 for LONG/DOUBLE, and 2 for
// REF (a native pointer is 64 bits wide on the target).
func (t TypeTag) SlotWidth() uint16 {
	switch t {
	case TagLong, TagDouble, TagRef:
		return 2
	default:
		return 1
	}
}

// typeTagFromName maps a declaration-level type keyword (as it appears in
// DEF/IVAR/SVAR/PROC argument lists) to its tag.
func typeTagFromName(name string) (TypeTag, bool) {
	switch name {
	case "char":
		return TagChar, true
	case "short":
		return TagShort, true
	case "int":
		return TagInt, true
	case "long":
		return TagLong, true
	case "float":
		return TagFloat, true
	case "double":
		return TagDouble, true
	case "ref":
		return TagRef, true
	default:
		return 0, false
	}
}

// MethodType distinguishes virtual (4) from static (5) dispatch, per the
// packed return_type|method_type<<4 field of each method's descriptor in
// the on-disk bytecode section.
type MethodType uint8

const (
	MethodVirtual MethodType = 4
	MethodStatic  MethodType = 5
)
