package asm

// Linker resolves every surviving method's thunks against the class-level
// pools CompileClass already populated, and rewrites ("dethunks") the
// corresponding bit-field of each already-emitted word in place. This is
// the single authoritative numbering point spec §9 calls for: "the
// linker's index assignment is the single authoritative numbering."
type Linker struct {
	pool *ClassPool
	errs ErrorList
}

func NewLinker(pool *ClassPool) *Linker {
	return &Linker{pool: pool}
}

// Link rewrites every thunk in every method of c, defaulting the
// owning-class qualifier to cls.Decl.Name when a thunk's ClassQualifier
// is empty (an unqualified reference resolves within the compiling
// class). Returns the accumulated unresolved-thunk errors; per spec §4.3,
// "Unresolved thunks produce errors and the instruction retains a zero in
// the field."
func (l *Linker) Link(cls *Class) *ErrorList {
	for _, m := range cls.Methods {
		for _, t := range m.Thunks {
			l.resolveAndRewrite(cls.Decl.Name, m, t)
		}
	}
	return &l.errs
}

func (l *Linker) resolveAndRewrite(ownClass string, m *CompiledMethod, t Thunk) {
	qualifier := t.ClassQualifier
	if qualifier == "" {
		qualifier = ownClass
	}

	var idx int
	var ok bool
	switch t.Kind {
	case ThunkClass:
		idx, ok = l.pool.ClassIndex(t.Name)
	case ThunkMethod:
		idx, ok = l.pool.MethodIndex(qualifier, t.Name)
	case ThunkSVar:
		idx, ok = l.pool.StaticIndex(qualifier, t.Name)
	case ThunkIVar:
		idx, ok = l.pool.InstanceIndex(qualifier, t.Name)
	}
	if !ok {
		l.errs.Addf(KindRelocation, t.Line, t.Col, "unresolved %s reference %q", t.Kind, qualifiedName(qualifier, t.Name))
		return
	}
	if t.InstructionIndex < 0 || t.InstructionIndex >= len(m.Words) {
		l.errs.Addf(KindRelocation, t.Line, t.Col, "thunk instruction index %d out of range", t.InstructionIndex)
		return
	}
	m.Words[t.InstructionIndex] = m.Words[t.InstructionIndex].or32(t.Slot.shift(), uint32(idx))
}

func qualifiedName(class, name string) string {
	if class == "" {
		return name
	}
	return class + "." + name
}
