package asm

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Size law (testable property 7): the number of bytes written equals
// stringPoolOffset + stringPoolSize, and the header's six offsets are
// each 8-byte aligned and monotonically increasing.
func TestWriter_SizeLawAndHeaderLayout(t *testing.T) {
	decl := &ClassDecl{
		Name:    "a.b.Sample",
		Imports: []Import{{Kind: ImportClass, Class: "Other"}},
		Procs: []ProcDecl{{
			Static:  true,
			RetType: TagInt,
			Name:    "nop",
			Params:  []Param{{Type: TagInt, Name: "r"}},
			Body:    []Instr{{Mnemonic: "RET", Operands: []string{"r"}}},
		}},
	}
	cls, pool := CompileClass(decl)
	assert(t, cls.Errors.Empty(), "unexpected compile errors: %v", cls.Errors.Error())
	linker := NewLinker(pool)
	linkErrs := linker.Link(cls)
	assert(t, linkErrs.Empty(), "unexpected link errors: %v", linkErrs.Error())

	dir := t.TempDir()
	path := filepath.Join(dir, "out.gvc")
	w := NewWriter(nil)
	assert(t, w.Write(path, cls, pool) == nil, "unexpected write error")

	data, err := os.ReadFile(path)
	assert(t, err == nil, "failed to read back written file: %v", err)

	classesOff := binary.NativeEndian.Uint64(data[0x00:])
	methodsOff := binary.NativeEndian.Uint64(data[0x08:])
	staticsOff := binary.NativeEndian.Uint64(data[0x10:])
	instancesOff := binary.NativeEndian.Uint64(data[0x18:])
	bytecodeOff := binary.NativeEndian.Uint64(data[0x20:])
	stringsOff := binary.NativeEndian.Uint64(data[0x28:])

	assert(t, classesOff == 48, "expected classes offset 48 (six u64 header slots), got %d", classesOff)
	for _, off := range []uint64{classesOff, methodsOff, staticsOff, instancesOff, bytecodeOff, stringsOff} {
		assert(t, off%8 == 0, "section offset %d is not 8-byte aligned", off)
	}
	assert(t, methodsOff > classesOff, "methods section must follow classes section")
	assert(t, staticsOff > methodsOff, "statics section must follow methods section")
	assert(t, instancesOff > staticsOff, "instances section must follow statics section")
	assert(t, bytecodeOff > instancesOff, "bytecode section must follow instances section")
	assert(t, stringsOff > bytecodeOff, "string pool must follow bytecode section")

	bytecodeSize := binary.NativeEndian.Uint64(data[bytecodeOff:])
	assert(t, stringsOff == bytecodeOff+8+bytecodeSize, "string pool offset should immediately follow the bytecode section")
	assert(t, uint64(len(data)) == stringsOff+stringPoolSize(cls, pool), "file size should equal string_pool_offset + string_pool_size")

	// Six primitive class slots are implicit; the pool begins at index 6.
	classCount := binary.NativeEndian.Uint32(data[classesOff:])
	assert(t, classCount == uint32(pool.ClassCount()-6), "classes pool count should exclude the 6 implicit primitive slots")
}

// Regression for the bytecode-section cursor: each method's on-disk
// footprint includes its own leading u64 size field, so advancing the
// write cursor by anything less than the full OnDiskSize() would overlap
// the next method's instruction words onto this one's tail.
func TestWriter_MultiMethodBytecodeDoesNotOverlap(t *testing.T) {
	decl := &ClassDecl{
		Name: "Multi",
		Procs: []ProcDecl{
			{
				Static:  true,
				RetType: TagInt,
				Name:    "first",
				Params:  []Param{{Type: TagInt, Name: "r"}},
				Body:    []Instr{{Mnemonic: "RET", Operands: []string{"r"}}},
			},
			{
				Static:  true,
				RetType: TagInt,
				Name:    "second",
				Params:  []Param{{Type: TagInt, Name: "a"}, {Type: TagInt, Name: "b"}},
				Body: []Instr{
					{Mnemonic: "DEF", Operands: []string{"int", "c"}},
					{Mnemonic: "ADD", Operands: []string{"c", "a", "b"}},
					{Mnemonic: "RET", Operands: []string{"c"}},
				},
			},
		},
	}
	cls, pool := CompileClass(decl)
	assert(t, cls.Errors.Empty(), "unexpected compile errors: %v", cls.Errors.Error())
	assert(t, len(cls.Methods) == 2, "expected both methods to compile, got %d", len(cls.Methods))
	linker := NewLinker(pool)
	assert(t, linker.Link(cls).Empty(), "unexpected link errors")

	dir := t.TempDir()
	path := filepath.Join(dir, "out.gvc")
	w := NewWriter(nil)
	assert(t, w.Write(path, cls, pool) == nil, "unexpected write error")

	data, err := os.ReadFile(path)
	assert(t, err == nil, "failed to read back written file: %v", err)
	bytecodeOff := binary.NativeEndian.Uint64(data[0x20:])

	cursor := bytecodeOff + 8
	for _, m := range cls.Methods {
		storedSize := binary.NativeEndian.Uint64(data[cursor:])
		assert(t, storedSize == m.OnDiskSize()-8, "method %s: stored content size %d != OnDiskSize()-8 %d", m.Name, storedSize, m.OnDiskSize()-8)
		base := cursor + 8
		instrCount := binary.NativeEndian.Uint16(data[base:])
		assert(t, int(instrCount) == len(m.Words), "method %s: instr_count %d != %d words", m.Name, instrCount, len(m.Words))
		wordsBase := base + 8 + uint64((len(m.ArgTypes)+15)/16)*8
		for i, word := range m.Words {
			got := binary.NativeEndian.Uint64(data[wordsBase+uint64(i)*8:])
			assert(t, got == uint64(word), "method %s: word %d mismatch: got %#x want %#x", m.Name, i, got, uint64(word))
		}
		cursor += m.OnDiskSize()
	}
}

// classOutputPath-style nesting is exercised by cmd/bcode, but the writer
// itself must create any missing build-directory components.
func TestWriter_CreatesMissingDirectories(t *testing.T) {
	decl := &ClassDecl{
		Name: "A",
		Procs: []ProcDecl{{
			Static:  true,
			RetType: TagInt,
			Name:    "nop",
			Params:  []Param{{Type: TagInt, Name: "r"}},
			Body:    []Instr{{Mnemonic: "RET", Operands: []string{"r"}}},
		}},
	}
	cls, pool := CompileClass(decl)
	assert(t, cls.Errors.Empty(), "unexpected compile errors: %v", cls.Errors.Error())
	linker := NewLinker(pool)
	assert(t, linker.Link(cls).Empty(), "unexpected link errors")

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "path", "A.gvc")
	w := NewWriter(nil)
	assert(t, w.Write(path, cls, pool) == nil, "unexpected write error")
	_, err := os.Stat(path)
	assert(t, err == nil, "expected output file to exist at %s: %v", path, err)
}
