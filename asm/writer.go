package asm

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
)

// Writer lays a linked Class out on disk through a memory-mapped file
// sized to exactly the final layout, per spec §4.4/§5. Every multi-byte
// integer is written in the host's native byte order, matching spec §6.2
// ("files are not portable across endiannesses") — the one place this
// repo reaches past encoding/binary's fixed-endian helpers to
// binary.NativeEndian, added to the standard library for exactly this
// kind of on-the-wire-but-not-cross-machine format.
type Writer struct {
	log Logger
}

func NewWriter(log Logger) *Writer {
	if log == nil {
		log = NopLogger()
	}
	return &Writer{log: log}
}

// layout is every section's byte offset and size, computed once so both
// the allocation size and the per-section write calls agree.
type layout struct {
	classesOff, classesSize     uint64
	methodsOff, methodsSize     uint64
	staticsOff, staticsSize     uint64
	instancesOff, instancesSize uint64
	bytecodeOff, bytecodeSize   uint64
	stringsOff, stringsSize     uint64
	totalSize                   uint64
}

func computeLayout(cls *Class, pool *ClassPool) layout {
	var l layout
	l.classesOff = 48 // six u64 header slots
	l.classesSize = 8 + uint64(pool.ClassCount()-6)*8

	l.methodsOff = l.classesOff + l.classesSize
	l.methodsSize = 8 + uint64(pool.MethodCount())*16

	l.staticsOff = l.methodsOff + l.methodsSize
	l.staticsSize = 8 + uint64(pool.StaticCount())*16

	l.instancesOff = l.staticsOff + l.staticsSize
	l.instancesSize = 8 + uint64(pool.InstanceCount())*16

	l.bytecodeOff = l.instancesOff + l.instancesSize
	l.bytecodeSize = 8
	for _, m := range cls.Methods {
		l.bytecodeSize += m.OnDiskSize()
	}

	l.stringsOff = l.bytecodeOff + l.bytecodeSize
	l.stringsSize = stringPoolSize(cls, pool)

	l.totalSize = l.stringsOff + l.stringsSize
	return l
}

func stringPoolSize(cls *Class, pool *ClassPool) uint64 {
	var size uint64
	for _, s := range pool.ClassNames() {
		size += lenPrefixedSize(s)
	}
	for _, e := range pool.MethodEntries() {
		size += lenPrefixedSize(e.Name)
	}
	for _, e := range pool.StaticEntries() {
		size += lenPrefixedSize(e.Name)
	}
	for _, e := range pool.InstanceEntries() {
		size += lenPrefixedSize(e.Name)
	}
	return size
}

func lenPrefixedSize(s string) uint64 {
	n := uint64(4 + len(s))
	pad := (4 - n%4) % 4
	return n + pad
}

// Write serializes cls (already linked — every thunk rewritten) to path,
// creating parent directories as needed. Release sequence on every exit
// path is flush -> unmap -> close, per spec §5.
func (w *Writer) Write(path string, cls *Class, pool *ClassPool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return newError(KindIO, 0, 0, err, "create build directory: %v", err)
	}
	l := computeLayout(cls, pool)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return newError(KindIO, 0, 0, err, "open output file: %v", err)
	}
	defer f.Close()

	if err := f.Truncate(int64(l.totalSize)); err != nil {
		return newError(KindIO, 0, 0, err, "size output file: %v", err)
	}

	m, err := mmap.MapRegion(f, int(l.totalSize), mmap.RDWR, 0, 0)
	if err != nil {
		return newError(KindIO, 0, 0, err, "memory-map output file: %v", err)
	}
	w.log.Debugf("mapped %s at %d bytes", path, l.totalSize)

	writeErr := w.writeInto(m, cls, pool, l)

	var result error
	if err := m.Flush(); err != nil && writeErr == nil {
		result = newError(KindIO, 0, 0, err, "flush output mapping: %v", err)
	}
	if err := m.Unmap(); err != nil && result == nil && writeErr == nil {
		result = newError(KindIO, 0, 0, err, "unmap output file: %v", err)
	}
	if writeErr != nil {
		return writeErr
	}
	return result
}

func (w *Writer) writeInto(buf []byte, cls *Class, pool *ClassPool, l layout) error {
	putU64(buf, 0x00, l.classesOff)
	putU64(buf, 0x08, l.methodsOff)
	putU64(buf, 0x10, l.staticsOff)
	putU64(buf, 0x18, l.instancesOff)
	putU64(buf, 0x20, l.bytecodeOff)
	putU64(buf, 0x28, l.stringsOff)

	strOff := l.stringsOff
	strBuf := buf[l.stringsOff : l.stringsOff+l.stringsSize]
	strCursor := uint64(0)
	intern := func(s string) uint64 {
		off := strOff + strCursor
		n := writeLenPrefixed(strBuf[strCursor:], s)
		strCursor += n
		return off
	}

	// Classes pool.
	names := pool.ClassNames()
	putU32(buf, l.classesOff, uint32(len(names)))
	putU32(buf, l.classesOff+4, uint32(len(cls.Decl.Implements)))
	for i, name := range names {
		putU64(buf, l.classesOff+8+uint64(i)*8, intern(name))
	}

	// Methods pool.
	methods := pool.MethodEntries()
	staticCount := 0
	for _, e := range methods {
		if e.Class == cls.Decl.Name && isDeclaredStatic(cls.Decl, e.Name) {
			staticCount++
		}
	}
	putU32(buf, l.methodsOff, uint32(len(methods)))
	putU32(buf, l.methodsOff+4, uint32(staticCount))
	for i, e := range methods {
		base := l.methodsOff + 8 + uint64(i)*16
		classIdx, _ := pool.ClassIndex(e.Class)
		putU32(buf, base, uint32(classIdx))
		putU32(buf, base+4, 0)
		putU64(buf, base+8, intern(e.Name))
	}

	writePoolSection(buf, l.staticsOff, pool.StaticEntries(), pool, intern)
	writePoolSection(buf, l.instancesOff, pool.InstanceEntries(), pool, intern)

	if err := writeBytecode(buf, l.bytecodeOff, cls.Methods); err != nil {
		return err
	}
	return nil
}

func writePoolSection(buf []byte, off uint64, entries []PoolEntry, pool *ClassPool, intern func(string) uint64) {
	putU32(buf, off, uint32(len(entries)))
	putU32(buf, off+4, 0)
	for i, e := range entries {
		base := off + 8 + uint64(i)*16
		classIdx, _ := pool.ClassIndex(e.Class)
		putU32(buf, base, uint32(classIdx))
		putU32(buf, base+4, 0)
		putU64(buf, base+8, intern(e.Name))
	}
}

func isDeclaredStatic(decl *ClassDecl, methodName string) bool {
	for _, p := range decl.Procs {
		if p.Name == methodName {
			return p.Static
		}
	}
	return false
}

func writeBytecode(buf []byte, off uint64, methods []*CompiledMethod) error {
	cursor := off + 8
	for _, m := range methods {
		size := m.OnDiskSize()
		putU64(buf, cursor, size-8)
		base := cursor + 8
		putU16(buf, base, uint16(len(m.Words)))
		putU16(buf, base+2, uint16(m.StackSize))
		putU16(buf, base+4, uint16(m.ReturnType)|uint16(m.MethodType)<<4)
		putU16(buf, base+6, uint16(len(m.ArgTypes)))
		base += 8

		argTagWords := (len(m.ArgTypes) + 15) / 16
		for i, t := range m.ArgTypes {
			wordIdx := i / 16
			nybble := uint(i % 16)
			shift := nybble * 4
			word := binary.NativeEndian.Uint64(buf[base+uint64(wordIdx)*8 : base+uint64(wordIdx)*8+8])
			word |= uint64(t) << shift
			binary.NativeEndian.PutUint64(buf[base+uint64(wordIdx)*8:base+uint64(wordIdx)*8+8], word)
		}
		base += uint64(argTagWords) * 8

		for i, word := range m.Words {
			putU64(buf, base+uint64(i)*8, uint64(word))
		}
		base += uint64(len(m.Words)) * 8

		// Runtime-pointer placeholder, filled in by the consuming VM.
		putU64(buf, base, 0)
		base += 8

		writeHandleMap(buf, base, m.HandleMap)
		cursor += size
	}
	putU64(buf, off, cursor-off-8)
	if cursor != off+8+sumSizes(methods) {
		return fmt.Errorf("internal error: bytecode section size mismatch")
	}
	return nil
}

func sumSizes(methods []*CompiledMethod) uint64 {
	var sum uint64
	for _, m := range methods {
		sum += m.OnDiskSize()
	}
	return sum
}

// writeHandleMap packs the handle count into the first u16 of the first
// word, followed by up to three more u16 offsets in that same word, then
// four per word thereafter.
func writeHandleMap(buf []byte, off uint64, handles []uint16) {
	putU16(buf, off, uint16(len(handles)))
	for i, h := range handles {
		slot := i + 1 // slot 0 of word 0 is the count
		wordIdx := slot / 4
		nybble := slot % 4
		putU16(buf, off+uint64(wordIdx)*8+uint64(nybble)*2, h)
	}
}

func writeLenPrefixed(buf []byte, s string) uint64 {
	n := uint32(len(s))
	binary.NativeEndian.PutUint32(buf[0:4], n)
	copy(buf[4:4+n], s)
	total := uint64(4 + n)
	pad := (4 - total%4) % 4
	return total + pad
}

func putU64(buf []byte, off uint64, v uint64) { binary.NativeEndian.PutUint64(buf[off:off+8], v) }
func putU32(buf []byte, off uint64, v uint32) { binary.NativeEndian.PutUint32(buf[off:off+4], v) }
func putU16(buf []byte, off uint64, v uint16) { binary.NativeEndian.PutUint16(buf[off:off+2], v) }
