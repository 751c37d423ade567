package asm

import "testing"

// S4: VLLD v obj Other.field, where Other resolves to class index 7 and
// Other.field resolves to instance-field index 3, dethunks into bits
// 32..55 of the emitted word carrying 3, bits 0..15 carrying v's slot,
// bits 16..31 carrying obj's slot.
func TestLinker_FieldThunkDethunksIntoImm24(t *testing.T) {
	decl := &ClassDecl{
		Name: "A",
		Imports: []Import{
			{Kind: ImportIVar, Class: "Other", Name: "f0"},
			{Kind: ImportIVar, Class: "Other", Name: "f1"},
			{Kind: ImportIVar, Class: "Other", Name: "f2"},
			{Kind: ImportIVar, Class: "Other", Name: "field"},
		},
		Procs: []ProcDecl{{
			RetType: TagInt,
			Name:    "f",
			Body: []Instr{
				{Mnemonic: "DEF", Operands: []string{"int", "v"}},
				{Mnemonic: "DEF", Operands: []string{"ref", "obj"}},
				{Mnemonic: "VLLD", Operands: []string{"v", "obj", "Other.field"}},
			},
		}},
	}

	cls, pool := CompileClass(decl)
	assert(t, cls.Errors.Empty(), "unexpected compile errors: %v", cls.Errors.Error())

	otherIdx, ok := pool.ClassIndex("Other")
	assert(t, ok, "Other not registered in class pool")
	assert(t, otherIdx == 7, "expected Other at class index 7, got %d", otherIdx)

	fieldIdx, ok := pool.InstanceIndex("Other", "field")
	assert(t, ok, "Other.field not registered in instance pool")
	assert(t, fieldIdx == 3, "expected Other.field at instance index 3, got %d", fieldIdx)

	linker := NewLinker(pool)
	errs := linker.Link(cls)
	assert(t, errs.Empty(), "unexpected link errors: %v", errs.Error())

	assert(t, len(cls.Methods) == 1, "expected one surviving method")
	w := cls.Methods[0].Words[0]
	assert(t, uint16(w) == 0, "expected v's slot 0 in bits 0-15, got %d", uint16(w))
	assert(t, uint16(w>>16) == 1, "expected obj's slot 1 in bits 16-31, got %d", uint16(w>>16))
	assert(t, (w>>32)&0xFFFFFF == 3, "expected instance index 3 in bits 32-55, got %d", (w>>32)&0xFFFFFF)
	assert(t, w.Opcode().String() == "IVLLD", "expected IVLLD (v is INT), got %v", w.Opcode())
}

// S5: a duplicate IMP CLZ produces exactly one error (for the second
// occurrence) and retains the first import's index.
func TestLinker_DuplicateImportIsOneError(t *testing.T) {
	decl, errs := Parse("CLZ A\nIMP CLZ Foo\nIMP CLZ Foo\n")
	assert(t, errs.Empty(), "unexpected parse errors: %v", errs.Error())

	cls, pool := CompileClass(decl)
	assert(t, cls.Errors.Len() == 1, "expected exactly one duplicate-import error, got %d: %v", cls.Errors.Len(), cls.Errors.Error())

	idx, ok := pool.ClassIndex("Foo")
	assert(t, ok, "expected Foo to still be registered despite the duplicate")
	assert(t, idx == 7, "expected Foo retained at its first-seen index 7, got %d", idx)
}

// A thunk whose name is in no pool (VNEW of an unknown class) compiles
// cleanly but is reported by the linker as a relocation-kind error.
func TestLinker_UnresolvedReferenceIsRelocationError(t *testing.T) {
	decl := &ClassDecl{
		Name: "A",
		Procs: []ProcDecl{{
			RetType: TagInt,
			Name:    "f",
			Body: []Instr{
				{Mnemonic: "DEF", Operands: []string{"ref", "obj"}},
				{Mnemonic: "VNEW", Operands: []string{"obj", "Nonexistent"}},
			},
		}},
	}
	cls, pool := CompileClass(decl)
	assert(t, cls.Errors.Empty(), "unexpected compile errors: %v", cls.Errors.Error())

	linker := NewLinker(pool)
	errs := linker.Link(cls)
	assert(t, !errs.Empty(), "expected an unresolved relocation error for Nonexistent")
	assert(t, errs.Errors()[0].Kind == KindRelocation, "expected a relocation-kind error, got %v", errs.Errors()[0].Kind)
}
