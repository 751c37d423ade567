package asm

// Class is the assembled-but-not-yet-linked output of compiling every
// procedure in a ClassDecl: the surviving compiled methods (those with no
// accumulated errors) plus the declaration-level pools the linker needs
// to resolve thunks against.
type Class struct {
	Decl    *ClassDecl
	Methods []*CompiledMethod
	Errors  ErrorList
}

// CompileClass runs CompileMethod over every procedure in decl, builds
// the class-level symbol pool (imports, own methods/fields), and
// accumulates diagnostics without stopping at the first failing method,
// per spec §4.2 "Failures": "a method with any error is dropped from the
// output but compilation continues."
func CompileClass(decl *ClassDecl) (*Class, *ClassPool) {
	pool := NewClassPool()
	c := &Class{Decl: decl}
	populatePools(pool, decl, &c.Errors)

	for i := range decl.Procs {
		m := CompileMethod(pool, decl, &decl.Procs[i])
		c.Errors.Merge(&m.Errors)
		if m.Errors.Empty() {
			c.Methods = append(c.Methods, m)
		}
	}
	return c, pool
}

// populatePools performs the class-linker's index-assignment step (spec
// §4.3 items 1-3) eagerly, before method compilation, so that thunks
// generated during compilation and resolved during linking see a single
// consistent numbering. Declaration order is: enclosing class, extends,
// implements, then remaining imports; methods/fields declared directly on
// this class are added in source order.
func populatePools(pool *ClassPool, decl *ClassDecl, errs *ErrorList) {
	seenClasses := make(map[string]bool)
	addClass := func(name string, line, col int, reportDup bool) {
		if seenClasses[name] {
			if reportDup {
				errs.Addf(KindSymbol, line, col, "%v: duplicate import of class %q", ErrRedefined, name)
			}
			return
		}
		seenClasses[name] = true
		if _, ok := pool.ClassIndex(name); !ok {
			_, _ = pool.AddClass(name)
		}
	}

	addClass(decl.Name, 0, 0, false)
	if decl.Extends != "" {
		addClass(decl.Extends, 0, 0, false)
	}
	for _, iface := range decl.Implements {
		addClass(iface, 0, 0, false)
	}
	for _, imp := range decl.Imports {
		switch imp.Kind {
		case ImportClass:
			addClass(imp.Class, imp.Line, imp.Col, true)
		case ImportProc:
			addClass(imp.Class, imp.Line, imp.Col, false)
			if _, err := pool.AddMethod(imp.Class, imp.Name); err != nil {
				errs.Addf(KindSymbol, imp.Line, imp.Col, "%v", err)
			}
		case ImportIVar:
			addClass(imp.Class, imp.Line, imp.Col, false)
			if _, err := pool.AddInstance(imp.Class, imp.Name); err != nil {
				errs.Addf(KindSymbol, imp.Line, imp.Col, "%v", err)
			}
		case ImportSVar:
			addClass(imp.Class, imp.Line, imp.Col, false)
			if _, err := pool.AddStatic(imp.Class, imp.Name); err != nil {
				errs.Addf(KindSymbol, imp.Line, imp.Col, "%v", err)
			}
		}
	}
	for _, f := range decl.IVars {
		if _, err := pool.AddInstance(decl.Name, f.Name); err != nil {
			errs.Addf(KindSymbol, 0, 0, "%v", err)
		}
	}
	for _, f := range decl.SVars {
		if _, err := pool.AddStatic(decl.Name, f.Name); err != nil {
			errs.Addf(KindSymbol, 0, 0, "%v", err)
		}
	}
	for _, p := range decl.Procs {
		if _, err := pool.AddMethod(decl.Name, p.Name); err != nil {
			errs.Addf(KindSymbol, p.Line, p.Col, "%v", err)
		}
	}
}
