package asm

import "fmt"

// Opcode is the 8-bit value occupying bits 56..63 of every instruction
// word. Families are laid out as contiguous runs of tagged variants so that
// selecting the variant for a given TypeTag is a constant-time offset
// instead of a hand-enumerated switch per mnemonic. This is the table-driven
// replacement for macro-expanded per-type opcode constants: one base plus
// one offset function per family, instead of one named constant per
// (mnemonic, type) pair.
type Opcode uint8

// EncForm names which of the three 64-bit layouts (plus the 40-bit
// immediate extension) an opcode uses. It is descriptive only: emission in
// compile.go picks its encoder per mnemonic and String() below does not
// consult it; it is not itself stored in the word.
type EncForm uint8

const (
	FormR   EncForm = iota // dest, src1, src2, flags
	FormI24                // dest, src1, imm24 (lo16 | hi8)
	FormI32                // dest, imm32 (lo16 | mid16), high byte unused
	FormI40                // dest, imm40 (lo16 | mid16 | hi8), full 40 bits significant
)

// Family bases. Each base is the opcode value of the family's first
// (lowest type-tag) variant; the variant for a given tag is base+offset
// where offset is computed by the matching *Offset helper below. Bases are
// placed back to back so the whole catalogue packs into the 8-bit opcode
// space with room to spare (226 of 256 values used, 0..225).
const (
	opADDBase  Opcode = 0  // {I,L,F,D}ADD          width 4
	opSUBBase  Opcode = 4  // {I,L,F,D}SUB          width 4
	opMULBase  Opcode = 8  // {I,L,F,D}MUL          width 4
	opDIVBase  Opcode = 12 // {I,L,F,D}DIV          width 4
	opNEGBase  Opcode = 16 // {I,L,F,D}NEG          width 4
	opADDIBase Opcode = 20 // {I,L,F,D}ADDI         width 4
	opSUBIBase Opcode = 24 // {I,L,F,D}SUBI         width 4
	opMULIBase Opcode = 28 // {I,L,F,D}MULI         width 4
	opDIVIBase Opcode = 32 // {I,L,F,D}DIVI         width 4

	opANDBase  Opcode = 36 // {I,L}AND              width 2
	opORBase   Opcode = 38 // {I,L}OR               width 2
	opXORBase  Opcode = 40 // {I,L}XOR              width 2
	opSLLBase  Opcode = 42 // {I,L}SLL              width 2
	opSRLBase  Opcode = 44 // {I,L}SRL              width 2
	opSRABase  Opcode = 46 // {I,L}SRA              width 2
	opDIVUBase Opcode = 48 // {I,L}DIVU             width 2

	opCSTBase Opcode = 50 // {C,S,I,L,F,D}CST{C,S,I,L,F,D} width 36 (6*6, diagonal unused)

	opBEQBase  Opcode = 86  // width 7 (scalars + REF)
	opBNEQBase Opcode = 93  // width 7
	opBLTBase  Opcode = 100 // width 6 (scalars only)
	opBGTBase  Opcode = 106 // width 6
	opBLEBase  Opcode = 112 // width 6
	opBGEBase  Opcode = 118 // width 6

	opBEQIBase  Opcode = 124 // width 7
	opBNEQIBase Opcode = 131 // width 7
	opBLTIBase  Opcode = 138 // width 6
	opBGTIBase  Opcode = 144 // width 6
	opBLEIBase  Opcode = 150 // width 6
	opBGEIBase  Opcode = 156 // width 6

	opBU Opcode = 162

	opLDI Opcode = 163
	opLUI Opcode = 164
	opLNL Opcode = 165

	opANEWBase Opcode = 166 // width 7
	opVNEW     Opcode = 173
	opIOF      Opcode = 174
	opALDBase  Opcode = 175 // width 7
	opASRBase  Opcode = 182 // width 7
	opVLLDBase Opcode = 189 // width 7
	opVLSRBase Opcode = 196 // width 7
	opSTLDBase Opcode = 203 // width 7
	opSTSRBase Opcode = 210 // width 7

	opSINV Opcode = 217
	opIINV Opcode = 218
	opVINV Opcode = 219

	opRETBase Opcode = 220 // width 5 ({I,L,F,D,V})

	opNOP Opcode = 225
)

// ilfdOffset maps the four arithmetic-family types (INT, LONG, FLOAT,
// DOUBLE) onto the dense 0..3 range used by the ADD/SUB/MUL/DIV/NEG/*I
// families.
func ilfdOffset(t TypeTag) (Opcode, bool) {
	switch t {
	case TagInt:
		return 0, true
	case TagLong:
		return 1, true
	case TagFloat:
		return 2, true
	case TagDouble:
		return 3, true
	}
	return 0, false
}

// ilOffset maps the two integer-only bitwise/unsigned-divide types (INT,
// LONG) onto 0..1.
func ilOffset(t TypeTag) (Opcode, bool) {
	switch t {
	case TagInt:
		return 0, true
	case TagLong:
		return 1, true
	}
	return 0, false
}

// wideOffset covers the seven-wide CHAR..REF families (load/store, array,
// branch-equality). TypeTag's own numbering already matches
// the family's declared CHAR,SHORT,INT,LONG,FLOAT,DOUBLE,REF order, so the
// offset is the tag value itself.
func wideOffset(t TypeTag) (Opcode, bool) {
	if !t.Valid() {
		return 0, false
	}
	return Opcode(t), true
}

// narrowOffset covers the scalar-only variants of the branch families
// (relational branches, and the scalar immediate branches):
// CHAR,SHORT,INT,LONG,FLOAT,DOUBLE.
func narrowOffset(t TypeTag) (Opcode, bool) {
	if !t.IsScalar() {
		return 0, false
	}
	return Opcode(t), true
}

// castOffset picks the {src}CST{dest} variant: 16·src_tag+dest_tag per
// spec, folded into our dense 6-wide layout as 6·src+dest (both scalar,
// distinct).
func castOffset(src, dest TypeTag) (Opcode, bool) {
	if !src.IsScalar() || !dest.IsScalar() || src == dest {
		return 0, false
	}
	return Opcode(6*int(src) + int(dest)), true
}

// retOffset is the five-wide {I,L,F,D,V} family used only by RET.
func retOffset(t TypeTag) (Opcode, bool) {
	switch t {
	case TagInt:
		return 0, true
	case TagLong:
		return 1, true
	case TagFloat:
		return 2, true
	case TagDouble:
		return 3, true
	case TagRef:
		return 4, true
	}
	return 0, false
}

// Form reports which of the four physical encodings an opcode uses. This
// only needs to distinguish opcodes whose packing differs; within a form,
// callers already know the field semantics from the mnemonic.
func (op Opcode) Form() EncForm {
	switch {
	case op == opBU, op == opLDI, op == opSINV,
		op >= opSTLDBase && op < opSTLDBase+7,
		op >= opSTSRBase && op < opSTSRBase+7:
		return FormI32
	case op == opLUI, op == opLNL, op == opNOP:
		return FormI40
	case op >= opVNEW && op <= opIOF,
		op >= opVLLDBase && op < opVLLDBase+7,
		op >= opVLSRBase && op < opVLSRBase+7,
		op >= opBEQIBase && op < opBGEIBase+6,
		op >= opADDIBase && op < opADDIBase+4,
		op >= opSUBIBase && op < opSUBIBase+4,
		op >= opMULIBase && op < opMULIBase+4,
		op >= opDIVIBase && op < opDIVIBase+4,
		op == opIINV, op == opVINV:
		return FormI24
	default:
		return FormR
	}
}

// String and its helper describe support diagnostics and disassembly;
// they are not used by the hot encode/decode path.
func (op Opcode) String() string {
	name, letter := op.describe()
	if letter == 0 {
		return name
	}
	return fmt.Sprintf("%c%s", letter, name)
}

func (op Opcode) describe() (name string, letter byte) {
	switch {
	case op >= opADDBase && op < opADDBase+4:
		return "ADD", typeTagLetters[2+int(op-opADDBase)]
	case op >= opSUBBase && op < opSUBBase+4:
		return "SUB", typeTagLetters[2+int(op-opSUBBase)]
	case op >= opMULBase && op < opMULBase+4:
		return "MUL", typeTagLetters[2+int(op-opMULBase)]
	case op >= opDIVBase && op < opDIVBase+4:
		return "DIV", typeTagLetters[2+int(op-opDIVBase)]
	case op >= opNEGBase && op < opNEGBase+4:
		return "NEG", typeTagLetters[2+int(op-opNEGBase)]
	case op >= opADDIBase && op < opADDIBase+4:
		return "ADDI", typeTagLetters[2+int(op-opADDIBase)]
	case op >= opSUBIBase && op < opSUBIBase+4:
		return "SUBI", typeTagLetters[2+int(op-opSUBIBase)]
	case op >= opMULIBase && op < opMULIBase+4:
		return "MULI", typeTagLetters[2+int(op-opMULIBase)]
	case op >= opDIVIBase && op < opDIVIBase+4:
		return "DIVI", typeTagLetters[2+int(op-opDIVIBase)]
	case op >= opANDBase && op < opANDBase+2:
		return "AND", typeTagLetters[2+int(op-opANDBase)]
	case op >= opORBase && op < opORBase+2:
		return "OR", typeTagLetters[2+int(op-opORBase)]
	case op >= opXORBase && op < opXORBase+2:
		return "XOR", typeTagLetters[2+int(op-opXORBase)]
	case op >= opSLLBase && op < opSLLBase+2:
		return "SLL", typeTagLetters[2+int(op-opSLLBase)]
	case op >= opSRLBase && op < opSRLBase+2:
		return "SRL", typeTagLetters[2+int(op-opSRLBase)]
	case op >= opSRABase && op < opSRABase+2:
		return "SRA", typeTagLetters[2+int(op-opSRABase)]
	case op >= opDIVUBase && op < opDIVUBase+2:
		return "DIVU", typeTagLetters[2+int(op-opDIVUBase)]
	case op >= opCSTBase && op < opCSTBase+36:
		off := int(op - opCSTBase)
		return fmt.Sprintf("CST%c", typeTagLetters[off%6]), typeTagLetters[off/6]
	case op >= opBEQBase && op < opBEQBase+7:
		return "BEQ", typeTagLetters[int(op-opBEQBase)]
	case op >= opBNEQBase && op < opBNEQBase+7:
		return "BNEQ", typeTagLetters[int(op-opBNEQBase)]
	case op >= opBLTBase && op < opBLTBase+6:
		return "BLT", typeTagLetters[int(op-opBLTBase)]
	case op >= opBGTBase && op < opBGTBase+6:
		return "BGT", typeTagLetters[int(op-opBGTBase)]
	case op >= opBLEBase && op < opBLEBase+6:
		return "BLE", typeTagLetters[int(op-opBLEBase)]
	case op >= opBGEBase && op < opBGEBase+6:
		return "BGE", typeTagLetters[int(op-opBGEBase)]
	case op >= opBEQIBase && op < opBEQIBase+7:
		return "BEQI", typeTagLetters[int(op-opBEQIBase)]
	case op >= opBNEQIBase && op < opBNEQIBase+7:
		return "BNEQI", typeTagLetters[int(op-opBNEQIBase)]
	case op >= opBLTIBase && op < opBLTIBase+6:
		return "BLTI", typeTagLetters[int(op-opBLTIBase)]
	case op >= opBGTIBase && op < opBGTIBase+6:
		return "BGTI", typeTagLetters[int(op-opBGTIBase)]
	case op >= opBLEIBase && op < opBLEIBase+6:
		return "BLEI", typeTagLetters[int(op-opBLEIBase)]
	case op >= opBGEIBase && op < opBGEIBase+6:
		return "BGEI", typeTagLetters[int(op-opBGEIBase)]
	case op == opBU:
		return "BU", 0
	case op == opLDI:
		return "LDI", 0
	case op == opLUI:
		return "LUI", 0
	case op == opLNL:
		return "LNL", 0
	case op >= opANEWBase && op < opANEWBase+7:
		return "ANEW", typeTagLetters[int(op-opANEWBase)]
	case op == opVNEW:
		return "VNEW", 0
	case op == opIOF:
		return "IOF", 0
	case op >= opALDBase && op < opALDBase+7:
		return "ALD", typeTagLetters[int(op-opALDBase)]
	case op >= opASRBase && op < opASRBase+7:
		return "ASR", typeTagLetters[int(op-opASRBase)]
	case op >= opVLLDBase && op < opVLLDBase+7:
		return "VLLD", typeTagLetters[int(op-opVLLDBase)]
	case op >= opVLSRBase && op < opVLSRBase+7:
		return "VLSR", typeTagLetters[int(op-opVLSRBase)]
	case op >= opSTLDBase && op < opSTLDBase+7:
		return "STLD", typeTagLetters[int(op-opSTLDBase)]
	case op >= opSTSRBase && op < opSTSRBase+7:
		return "STSR", typeTagLetters[int(op-opSTSRBase)]
	case op == opSINV:
		return "SINV", 0
	case op == opIINV:
		return "IINV", 0
	case op == opVINV:
		return "VINV", 0
	case op >= opRETBase && op < opRETBase+5:
		letters := [...]byte{'I', 'L', 'F', 'D', 'V'}
		return "RET", letters[int(op-opRETBase)]
	case op == opNOP:
		return "NOP", 0
	default:
		return fmt.Sprintf("OPCODE(%d)", uint8(op)), 0
	}
}
