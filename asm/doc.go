/*
Package asm implements the assembler and linker for a class-based,
stack-oriented bytecode targeting an object-oriented virtual machine.

Each input is a textual class description (imports, static and instance
variables, methods, and RISC-style mnemonic method bodies). Each output is a
binary class file with a fixed-offset header, constant pools indexing
imported classes/methods/fields, and a bytecode section in which every
instruction occupies exactly 64 bits.

The package is organized the way the pipeline runs:

	Symbol Table ── Method Compiler ── Class Linker ── File Writer

A Symtab resolves local names to slots, and a ClassPool maps class,
method and field names to pool indices (assigned by CompileClass). A
two-pass method compiler (CompileMethod) lowers a procedure's symbolic
instruction stream into 64-bit words plus a list of relocation thunks. A
Linker resolves every compiled method's thunks against those pool indices
and rewrites the thunked bit-fields in place. A Writer lays the finished class out on disk through a
sized, memory-mapped file.

Nothing in this package touches a global logger or global mutable state;
callers that want progress or diagnostic output pass a Logger explicitly.
*/
package asm

// Logger is the minimal structured-logging surface this package accepts.
// It is intentionally small: a no-op implementation (used by tests) and
// cmd/bcode's thin adapter over a github.com/sirupsen/logrus logger both
// satisfy it.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// nopLogger discards everything. Used when a caller doesn't supply one.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// NopLogger returns a Logger that discards every message.
func NopLogger() Logger { return nopLogger{} }
