package asm

import (
	"os"
	"regexp"
	"strings"
)

// commentRe strips everything from the first ';' to end of line, per spec
// §6.1: "Comments begin at ; and run to end of line." Quotes are not
// recognized here, so a ';' inside a character literal also starts a
// comment. The
// teacher's own preprocessLine (vm/parse.go) does the equivalent pass with
// a caller-supplied regexp before tokenizing; this repo inlines the same
// shape for a single fixed pattern.
var commentRe = regexp.MustCompile(`;.*$`)

// ParseFile reads path and parses it into a ClassDecl, the shape
// CompileClass consumes. I/O failures are reported as a KindIO error
// rather than folded into the returned ErrorList, matching spec §7's
// split between accumulating diagnostics and fatal I/O failures.
func ParseFile(path string) (*ClassDecl, ErrorList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrorList{}, newError(KindIO, 0, 0, err, "read source file: %v", err)
	}
	decl, errs := Parse(string(data))
	return decl, errs, nil
}

// Parse lexes and parses one class source file into the syntax tree spec
// §6.1 describes. No parser was retrieved alongside this spec (§1 names
// it a pure collaborator), so this is a small line-oriented one written
// in the teacher's style: strip comments, split each line into tokens,
// and recognize a handful of fixed-arity keywords — the same shape as
// the teacher's preprocessLine/parseInputLine pair (vm/parse.go), just
// generalized from one bytecode-per-line to class declarations plus
// procedure bodies.
func Parse(source string) (*ClassDecl, ErrorList) {
	var errs ErrorList
	decl := &ClassDecl{}
	var proc *ProcDecl
	headerClosed := false // true once an IMP/IVAR/SVAR/PROC has appeared, after which EXT/IMPL are misplaced

	for i, raw := range strings.Split(source, "\n") {
		line := i + 1
		trimmed := strings.TrimSpace(commentRe.ReplaceAllString(raw, ""))
		if trimmed == "" {
			continue
		}
		toks := tokenizeLine(trimmed)
		if len(toks) == 0 {
			continue
		}
		kw := toks[0]

		if proc != nil && kw != "EPROC" {
			proc.Body = append(proc.Body, Instr{Mnemonic: kw, Operands: toks[1:], Line: line, Col: 0})
			continue
		}

		switch kw {
		case "CLZ":
			if decl.Name != "" {
				errs.Addf(KindLexical, line, 0, "CLZ must appear exactly once, as the first declaration")
				continue
			}
			if len(toks) != 2 {
				errs.Addf(KindLexical, line, 0, "CLZ takes exactly one operand")
				continue
			}
			decl.Name = toks[1]
		case "EXT":
			if decl.Name == "" {
				errs.Addf(KindLexical, line, 0, "EXT must follow CLZ")
				continue
			}
			if headerClosed {
				errs.Addf(KindLexical, line, 0, "EXT must appear contiguously after CLZ, before any IMP/IVAR/SVAR/PROC")
				continue
			}
			if len(toks) != 2 {
				errs.Addf(KindLexical, line, 0, "EXT takes exactly one operand")
				continue
			}
			if decl.Extends != "" {
				errs.Addf(KindLexical, line, 0, "EXT may appear at most once")
				continue
			}
			decl.Extends = toks[1]
		case "IMPL":
			if decl.Name == "" {
				errs.Addf(KindLexical, line, 0, "IMPL must follow CLZ")
				continue
			}
			if headerClosed {
				errs.Addf(KindLexical, line, 0, "IMPL must appear contiguously after CLZ/EXT, before any IMP/IVAR/SVAR/PROC")
				continue
			}
			if len(toks) != 2 {
				errs.Addf(KindLexical, line, 0, "IMPL takes exactly one operand")
				continue
			}
			decl.Implements = append(decl.Implements, toks[1])
		case "IMP":
			headerClosed = true
			if len(toks) != 3 {
				errs.Addf(KindLexical, line, 0, "IMP takes exactly two operands")
				continue
			}
			imp, ok := parseImport(toks[1], toks[2], line)
			if !ok {
				errs.Addf(KindLexical, line, 0, "IMP: unknown import kind %q", toks[1])
				continue
			}
			decl.Imports = append(decl.Imports, imp)
		case "IVAR", "SVAR":
			headerClosed = true
			if len(toks) != 3 {
				errs.Addf(KindLexical, line, 0, "%s takes exactly two operands", kw)
				continue
			}
			t, ok := typeTagFromName(toks[1])
			if !ok {
				errs.Addf(KindLexical, line, 0, "%s: unknown type %q", kw, toks[1])
				continue
			}
			f := Field{Type: t, Name: toks[2]}
			if kw == "IVAR" {
				decl.IVars = append(decl.IVars, f)
			} else {
				decl.SVars = append(decl.SVars, f)
			}
		case "PROC":
			headerClosed = true
			if proc != nil {
				errs.Addf(KindLexical, line, 0, "PROC %s opened before previous PROC closed with EPROC", toks[0])
				continue
			}
			p, ok := parseProcHeader(trimmed, line, &errs)
			if ok {
				proc = p
			}
		case "EPROC":
			if proc == nil {
				errs.Addf(KindLexical, line, 0, "EPROC with no matching PROC")
				continue
			}
			decl.Procs = append(decl.Procs, *proc)
			proc = nil
		default:
			errs.Addf(KindLexical, line, 0, "unrecognized class-level declaration %q (expected CLZ/EXT/IMPL/IMP/IVAR/SVAR/PROC/EPROC)", kw)
		}
	}

	if decl.Name == "" {
		errs.Addf(KindLexical, 0, 0, "missing CLZ declaration")
	}
	if proc != nil {
		errs.Addf(KindLexical, proc.Line, proc.Col, "PROC %s missing EPROC", proc.Name)
	}
	return decl, errs
}

// parseImport splits an "IMP KIND name" line's KIND/name pair into an
// Import. For PROC/IVAR/SVAR, name is "class.member", optionally followed
// by a trailing "(" per spec §6.1 ("name split at final '.' before '('").
func parseImport(kindTok, name string, line int) (Import, bool) {
	name = stripParenSuffix(name)
	switch kindTok {
	case "CLZ":
		return Import{Kind: ImportClass, Class: name, Line: line}, true
	case "PROC":
		qualifier, member := splitQualified(name)
		return Import{Kind: ImportProc, Class: qualifier, Name: member, Line: line}, true
	case "IVAR":
		qualifier, member := splitQualified(name)
		return Import{Kind: ImportIVar, Class: qualifier, Name: member, Line: line}, true
	case "SVAR":
		qualifier, member := splitQualified(name)
		return Import{Kind: ImportSVar, Class: qualifier, Name: member, Line: line}, true
	default:
		return Import{}, false
	}
}

func stripParenSuffix(s string) string {
	if i := strings.IndexByte(s, '('); i >= 0 {
		return s[:i]
	}
	return s
}

// procHeaderRe matches "PROC [static] ret_type name (type arg, type arg, …)".
var procHeaderRe = regexp.MustCompile(`^PROC\s+(?:(static)\s+)?(\S+)\s+(\S+)\s*\(([^)]*)\)\s*$`)

func parseProcHeader(line string, lineNo int, errs *ErrorList) (*ProcDecl, bool) {
	m := procHeaderRe.FindStringSubmatch(line)
	if m == nil {
		errs.Addf(KindLexical, lineNo, 0, "malformed PROC header %q", line)
		return nil, false
	}
	retType, ok := typeTagFromName(m[2])
	if !ok {
		errs.Addf(KindLexical, lineNo, 0, "PROC: unknown return type %q", m[2])
		return nil, false
	}
	p := &ProcDecl{
		Static:  m[1] == "static",
		RetType: retType,
		Name:    m[3],
		Line:    lineNo,
	}
	body := strings.TrimSpace(m[4])
	if body == "" {
		return p, true
	}
	for _, arg := range strings.Split(body, ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue // trailing comma, tolerated per spec §6.1
		}
		fields := strings.Fields(arg)
		if len(fields) != 2 {
			errs.Addf(KindLexical, lineNo, 0, "PROC: malformed parameter %q", arg)
			continue
		}
		t, ok := typeTagFromName(fields[0])
		if !ok {
			errs.Addf(KindLexical, lineNo, 0, "PROC: unknown parameter type %q", fields[0])
			continue
		}
		p.Params = append(p.Params, Param{Type: t, Name: fields[1]})
	}
	return p, true
}

// tokenizeLine splits s on whitespace, treating a single-quoted span
// (with \-escapes, per spec §4.2's character-literal grammar) as one
// token even if it contains embedded whitespace, and drops a single
// trailing comma from each token — spec §6.1: "trailing commas on
// argument-lists are tolerated."
func tokenizeLine(s string) []string {
	var toks []string
	i, n := 0, len(s)
	for i < n {
		for i < n && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}
		start := i
		if s[i] == '\'' {
			i++
			for i < n {
				if s[i] == '\\' && i+1 < n {
					i += 2
					continue
				}
				if s[i] == '\'' {
					i++
					break
				}
				i++
			}
		} else {
			for i < n && s[i] != ' ' && s[i] != '\t' {
				i++
			}
		}
		toks = append(toks, strings.TrimSuffix(s[start:i], ","))
	}
	return toks
}
