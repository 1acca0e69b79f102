package engine

// Reference is an unresolved symbolic reference: a (name, spec) pair to
// resolve against an owning class, itself named symbolically until first
// use.
type Reference struct {
	OwnerClass []byte
	Name       []byte
	Spec       []byte
}

// ConstantPool is a per-class table of constant-pool entries. Entries
// start out unresolved (a class name as []byte, or a *Reference for a
// field/method) and are rewritten in place on first use. The rewrite is
// monotonic (unresolved -> resolved, never back) and idempotent: resolving
// the same slot twice from two threads converges on the same value, so no
// locking is needed around the read-check-resolve-store sequence in
// resolver.go.
type ConstantPool struct {
	Owner   *Class
	entries []interface{}
}

// NewConstantPool builds a pool from raw entries as produced by the (out
// of scope) class-file parser.
func NewConstantPool(owner *Class, entries []interface{}) *ConstantPool {
	return &ConstantPool{Owner: owner, entries: entries}
}

// Len returns the number of entries.
func (p *ConstantPool) Len() int { return len(p.entries) }

// At returns the raw entry at index, whatever its resolution state.
func (p *ConstantPool) At(index int) interface{} {
	return p.entries[index]
}

// rewrite stores the resolved value at index. Safe to call redundantly:
// callers are expected to re-check `At` before deciding to resolve at all,
// but a lost race between two resolutions is harmless because resolution
// is deterministic.
func (p *ConstantPool) rewrite(index int, v interface{}) {
	p.entries[index] = v
}

// ClassNameAt returns the entry as an unresolved class name, or nil if it
// is not (or no longer) one.
func (p *ConstantPool) ClassNameAt(index int) []byte {
	b, _ := p.entries[index].([]byte)
	return b
}

// ReferenceAt returns the entry as an unresolved symbolic reference, or
// nil if it has already been resolved.
func (p *ConstantPool) ReferenceAt(index int) *Reference {
	r, _ := p.entries[index].(*Reference)
	return r
}

// ClassAt returns the entry as a resolved class, or nil.
func (p *ConstantPool) ClassAt(index int) *Class {
	c, _ := p.entries[index].(*Class)
	return c
}

// FieldAt returns the entry as a resolved field, or nil.
func (p *ConstantPool) FieldAt(index int) *Field {
	f, _ := p.entries[index].(*Field)
	return f
}

// MethodAt returns the entry as a resolved method, or nil.
func (p *ConstantPool) MethodAt(index int) *Method {
	m, _ := p.entries[index].(*Method)
	return m
}

// Int32At, Int64At, RefAt read already-boxed ldc/ldc2_w constants.
func (p *ConstantPool) Int32At(index int) (int32, bool) {
	v, ok := p.entries[index].(int32)
	return v, ok
}

func (p *ConstantPool) Int64At(index int) (int64, bool) {
	v, ok := p.entries[index].(int64)
	return v, ok
}

func (p *ConstantPool) RefAt(index int) (HeapObject, bool) {
	v, ok := p.entries[index].(HeapObject)
	return v, ok
}
