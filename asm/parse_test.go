package asm

import "testing"

const sampleSource = `
; a minimal class exercising every class-level declaration kind
CLZ Sample
EXT Base
IMPL Iface

IMP CLZ Other
IMP PROC Other.helper(
IMP IVAR Other.count
IMP SVAR Other.total

IVAR ref payload
SVAR int counter

PROC static int add (int a, int b,)
	RET a
EPROC
`

func TestParse_ClassLevelDeclarations(t *testing.T) {
	decl, errs := Parse(sampleSource)
	assert(t, errs.Empty(), "unexpected parse errors: %v", errs.Error())

	assert(t, decl.Name == "Sample", "expected class name Sample, got %q", decl.Name)
	assert(t, decl.Extends == "Base", "expected extends Base, got %q", decl.Extends)
	assert(t, len(decl.Implements) == 1 && decl.Implements[0] == "Iface", "expected implements [Iface], got %v", decl.Implements)

	assert(t, len(decl.Imports) == 4, "expected 4 imports, got %d", len(decl.Imports))
	assert(t, decl.Imports[0].Kind == ImportClass && decl.Imports[0].Class == "Other", "bad import[0]: %+v", decl.Imports[0])
	assert(t, decl.Imports[1].Kind == ImportProc && decl.Imports[1].Class == "Other" && decl.Imports[1].Name == "helper", "bad import[1]: %+v", decl.Imports[1])
	assert(t, decl.Imports[2].Kind == ImportIVar && decl.Imports[2].Name == "count", "bad import[2]: %+v", decl.Imports[2])
	assert(t, decl.Imports[3].Kind == ImportSVar && decl.Imports[3].Name == "total", "bad import[3]: %+v", decl.Imports[3])

	assert(t, len(decl.IVars) == 1 && decl.IVars[0].Type == TagRef && decl.IVars[0].Name == "payload", "bad ivars: %+v", decl.IVars)
	assert(t, len(decl.SVars) == 1 && decl.SVars[0].Type == TagInt && decl.SVars[0].Name == "counter", "bad svars: %+v", decl.SVars)

	assert(t, len(decl.Procs) == 1, "expected one procedure, got %d", len(decl.Procs))
	p := decl.Procs[0]
	assert(t, p.Static, "expected static procedure")
	assert(t, p.RetType == TagInt, "expected int return type, got %v", p.RetType)
	assert(t, p.Name == "add", "expected name add, got %q", p.Name)
	assert(t, len(p.Params) == 2 && p.Params[0].Name == "a" && p.Params[1].Name == "b", "bad params: %+v", p.Params)
	assert(t, len(p.Body) == 1 && p.Body[0].Mnemonic == "RET", "expected a single RET instruction, got %+v", p.Body)
}

func TestParse_MissingClzIsError(t *testing.T) {
	_, errs := Parse("IVAR int x\n")
	assert(t, !errs.Empty(), "expected an error for a missing CLZ declaration")
}

func TestParse_UnclosedProcIsError(t *testing.T) {
	_, errs := Parse("CLZ A\nPROC int f ()\nRET a\n")
	assert(t, !errs.Empty(), "expected an error for a PROC with no matching EPROC")
}

func TestParse_CharLiteralWithEmbeddedSpaceIsOneToken(t *testing.T) {
	decl, errs := Parse("CLZ A\nPROC int f ()\nDEF int x\nLI x ' '\nRET x\nEPROC\n")
	assert(t, errs.Empty(), "unexpected parse errors: %v", errs.Error())
	li := decl.Procs[0].Body[1]
	assert(t, li.Mnemonic == "LI", "expected LI, got %q", li.Mnemonic)
	assert(t, len(li.Operands) == 2, "expected 2 operands, got %d: %v", len(li.Operands), li.Operands)
	assert(t, li.Operands[1] == "' '", "expected the quoted space literal as one token, got %q", li.Operands[1])
}
