package asm

import "fmt"

// Local is a single method-local name: its slot offset and type. Slots are
// assigned in definition order starting at 0 (parameters first, then DEFs
// in source order), advancing by the type's SlotWidth.
type Local struct {
	Name       string
	SlotOffset uint16
	Type       TypeTag
}

// Symtab is the per-method symbol table: name -> slot/type, plus the
// running stack_size and handle map accumulated as locals are defined.
// One Symtab is created per procedure; nothing in it survives past that
// procedure's compilation, matching the teacher's approach of keeping
// compilation state scoped to a single compile call rather than a shared
// global (vm/compile.go builds its label map fresh per CompileSource call).
type Symtab struct {
	locals    map[string]Local
	order     []string
	stackSize uint16
	handleMap []uint16
}

func NewSymtab() *Symtab {
	return &Symtab{locals: make(map[string]Local)}
}

// Define allocates the next free slot for name at the given type, per
// spec §4.1. Returns ErrRedefined if the name already exists.
func (s *Symtab) Define(name string, t TypeTag) (Local, error) {
	if _, ok := s.locals[name]; ok {
		return Local{}, fmt.Errorf("%w: local %q", ErrRedefined, name)
	}
	l := Local{Name: name, SlotOffset: s.stackSize, Type: t}
	s.locals[name] = l
	s.order = append(s.order, name)
	s.stackSize += t.SlotWidth()
	if t == TagRef {
		s.handleMap = append(s.handleMap, l.SlotOffset)
	}
	return l, nil
}

// Lookup resolves a local name to its slot and type. Returns ErrUndefined
// if the name was never defined.
func (s *Symtab) Lookup(name string) (Local, error) {
	l, ok := s.locals[name]
	if !ok {
		return Local{}, fmt.Errorf("%w: local %q", ErrUndefined, name)
	}
	return l, nil
}

func (s *Symtab) StackSize() uint16    { return s.stackSize }
func (s *Symtab) HandleMap() []uint16  { return append([]uint16(nil), s.handleMap...) }
func (s *Symtab) NumLocals() int       { return len(s.order) }

// poolKey identifies a method or field pool entry: it is scoped to the
// owning class by name so IMPORT'd members from different classes never
// collide even if they share a bare name.
type poolKey struct {
	class string
	name  string
}

// ClassPool is the class-level symbol table: name -> pool index, for
// classes, methods, static fields, and instance fields. Per spec §4.1 the
// class pool is pre-populated with the six primitive types at indices
// 0..5; the class under compilation occupies index 6.
type ClassPool struct {
	classes      map[string]int
	classOrder   []string
	methods      map[poolKey]int
	methodOrder  []poolKey
	statics      map[poolKey]int
	staticOrder  []poolKey
	instances    map[poolKey]int
	instanceOrder []poolKey
}

func NewClassPool() *ClassPool {
	p := &ClassPool{
		classes:   make(map[string]int),
		methods:   make(map[poolKey]int),
		statics:   make(map[poolKey]int),
		instances: make(map[poolKey]int),
	}
	// REF is not a pool class: only CHAR..DOUBLE take indices 0..5.
	for i, name := range typeTagNames[:TagRef] {
		p.classes[name] = i
		p.classOrder = append(p.classOrder, name)
	}
	return p
}

func (p *ClassPool) AddClass(name string) (int, error) {
	if idx, ok := p.classes[name]; ok {
		return idx, fmt.Errorf("%w: class %q", ErrRedefined, name)
	}
	idx := len(p.classOrder)
	p.classes[name] = idx
	p.classOrder = append(p.classOrder, name)
	return idx, nil
}

func (p *ClassPool) ClassIndex(name string) (int, bool) {
	idx, ok := p.classes[name]
	return idx, ok
}

func (p *ClassPool) AddMethod(class, name string) (int, error) {
	k := poolKey{class, name}
	if idx, ok := p.methods[k]; ok {
		return idx, fmt.Errorf("%w: method %q.%q", ErrRedefined, class, name)
	}
	idx := len(p.methodOrder)
	p.methods[k] = idx
	p.methodOrder = append(p.methodOrder, k)
	return idx, nil
}

func (p *ClassPool) MethodIndex(class, name string) (int, bool) {
	idx, ok := p.methods[poolKey{class, name}]
	return idx, ok
}

func (p *ClassPool) AddStatic(class, name string) (int, error) {
	k := poolKey{class, name}
	if idx, ok := p.statics[k]; ok {
		return idx, fmt.Errorf("%w: static field %q.%q", ErrRedefined, class, name)
	}
	idx := len(p.staticOrder)
	p.statics[k] = idx
	p.staticOrder = append(p.staticOrder, k)
	return idx, nil
}

func (p *ClassPool) StaticIndex(class, name string) (int, bool) {
	idx, ok := p.statics[poolKey{class, name}]
	return idx, ok
}

func (p *ClassPool) AddInstance(class, name string) (int, error) {
	k := poolKey{class, name}
	if idx, ok := p.instances[k]; ok {
		return idx, fmt.Errorf("%w: instance field %q.%q", ErrRedefined, class, name)
	}
	idx := len(p.instanceOrder)
	p.instances[k] = idx
	p.instanceOrder = append(p.instanceOrder, k)
	return idx, nil
}

func (p *ClassPool) InstanceIndex(class, name string) (int, bool) {
	idx, ok := p.instances[poolKey{class, name}]
	return idx, ok
}

func (p *ClassPool) ClassCount() int    { return len(p.classOrder) }
func (p *ClassPool) MethodCount() int   { return len(p.methodOrder) }
func (p *ClassPool) StaticCount() int   { return len(p.staticOrder) }
func (p *ClassPool) InstanceCount() int { return len(p.instanceOrder) }

// PoolEntry is the exported (class, name) shape of a method/static/
// instance pool slot, in assignment order.
type PoolEntry struct {
	Class string
	Name  string
}

// ClassNames returns the on-disk classes pool in index order, starting at
// index 6 (the six primitive tags occupy 0..5 implicitly and are never
// materialized, per spec §6.2).
func (p *ClassPool) ClassNames() []string {
	return append([]string(nil), p.classOrder[6:]...)
}

func (p *ClassPool) MethodEntries() []PoolEntry   { return toPoolEntries(p.methodOrder) }
func (p *ClassPool) StaticEntries() []PoolEntry   { return toPoolEntries(p.staticOrder) }
func (p *ClassPool) InstanceEntries() []PoolEntry { return toPoolEntries(p.instanceOrder) }

func toPoolEntries(keys []poolKey) []PoolEntry {
	out := make([]PoolEntry, len(keys))
	for i, k := range keys {
		out[i] = PoolEntry{Class: k.class, Name: k.name}
	}
	return out
}
