package engine

// Value is one two-word stack slot: a raw value word and a parallel
// object-tag word. Only one lane is meaningful at a time, but both are
// always present so a conservative root walk never has to guess which
// lane an opcode populated. Long and double values occupy two consecutive
// Value slots; this implementation packs the full 64 bits into the first
// slot's Num field and leaves the second as padding, which preserves
// stack-depth and local-index accounting without requiring a real split
// 32-bit-word memory layout.
type Value struct {
	Num uint64
	Ref HeapObject
}

func int32Value(v int32) Value    { return Value{Num: uint64(uint32(v))} }
func int64Value(v int64) Value    { return Value{Num: uint64(v)} }
func refValue(r HeapObject) Value { return Value{Ref: r} }

func (v Value) asInt32() int32    { return int32(uint32(v.Num)) }
func (v Value) asInt64() int64    { return int64(v.Num) }
func (v Value) asUint32() uint32  { return uint32(v.Num) }
func (v Value) isNull() bool      { return v.Ref == nil }

// pushInt pushes a 32-bit integer onto the operand stack.
func (t *Thread) pushInt(v int32) {
	t.Stack[t.SP] = int32Value(v)
	t.SP++
}

// pushLong pushes a 64-bit integer, consuming two slots.
func (t *Thread) pushLong(v int64) {
	t.Stack[t.SP] = int64Value(v)
	t.Stack[t.SP+1] = Value{}
	t.SP += 2
}

// pushObject pushes a (possibly null) object reference.
func (t *Thread) pushObject(r HeapObject) {
	t.Stack[t.SP] = refValue(r)
	t.SP++
}

// popInt pops a 32-bit integer.
func (t *Thread) popInt() int32 {
	t.SP--
	return t.Stack[t.SP].asInt32()
}

// popLong pops a 64-bit integer, freeing two slots.
func (t *Thread) popLong() int64 {
	t.SP -= 2
	return t.Stack[t.SP].asInt64()
}

// popObject pops an object reference (nil if the slot held null).
func (t *Thread) popObject() HeapObject {
	t.SP--
	return t.Stack[t.SP].Ref
}

// peekX reads the slot `index` words below the current stack pointer
// without popping it.
func (t *Thread) peekX(index int) Value {
	return t.Stack[t.SP-1-index]
}

// pokeX overwrites the slot `index` words below the current stack pointer.
func (t *Thread) pokeX(index int, v Value) {
	t.Stack[t.SP-1-index] = v
}

// localX reads local variable n of the current frame.
func (t *Thread) localX(n int) Value {
	return t.Stack[t.curFrame().Base+n]
}

// setLocalX writes local variable n of the current frame.
func (t *Thread) setLocalX(n int, v Value) {
	t.Stack[t.curFrame().Base+n] = v
}

func (t *Thread) pushValue(v Value) {
	t.Stack[t.SP] = v
	t.SP++
}

func (t *Thread) popValue() Value {
	t.SP--
	return t.Stack[t.SP]
}

// dup duplicates the top stack slot: `...a` -> `...a a`.
func (t *Thread) dup() {
	v := t.peekX(0)
	t.pushValue(v)
}

// dupX1: `...a b` -> `...b a b`.
func (t *Thread) dupX1() {
	b := t.peekX(0)
	a := t.peekX(1)
	t.pokeX(1, b)
	t.pokeX(0, a)
	t.pushValue(b)
}

// dupX2: `...a b c` -> `...c a b c`.
func (t *Thread) dupX2() {
	c := t.peekX(0)
	b := t.peekX(1)
	a := t.peekX(2)
	t.pokeX(2, c)
	t.pokeX(1, a)
	t.pokeX(0, b)
	t.pushValue(c)
}

// dup2: `...a b` -> `...a b a b`.
func (t *Thread) dup2() {
	b := t.peekX(0)
	a := t.peekX(1)
	t.pushValue(a)
	t.pushValue(b)
}

// dup2X1: `...a b c` -> `...b c a b c`.
func (t *Thread) dup2X1() {
	c := t.peekX(0)
	b := t.peekX(1)
	a := t.peekX(2)
	t.pokeX(2, b)
	t.pokeX(1, c)
	t.pokeX(0, a)
	t.pushValue(b)
	t.pushValue(c)
}

// dup2X2: `...a b c d` -> `...c d a b c d`.
func (t *Thread) dup2X2() {
	d := t.peekX(0)
	c := t.peekX(1)
	b := t.peekX(2)
	a := t.peekX(3)
	t.pokeX(3, c)
	t.pokeX(2, d)
	t.pokeX(1, a)
	t.pokeX(0, b)
	t.pushValue(c)
	t.pushValue(d)
}

// pop discards the top slot.
func (t *Thread) pop() {
	t.SP--
}

// pop2 discards the top two slots.
func (t *Thread) pop2() {
	t.SP -= 2
}

// swap exchanges the top two slots: `...a b` -> `...b a`.
func (t *Thread) swap() {
	a := t.peekX(1)
	b := t.peekX(0)
	t.pokeX(1, b)
	t.pokeX(0, a)
}
