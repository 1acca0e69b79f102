package engine

// execArith runs the arithmetic/logic family of opcodes. Division or
// remainder by zero raises ArithmeticException through throwByName instead
// of pushing a result, leaving t.Exception set for the dispatch loop to
// unwind.
func (t *Thread) execArith(op byte) {
	switch op {
	case opIadd:
		b, a := t.popInt(), t.popInt()
		t.pushInt(a + b)
	case opLadd:
		b, a := t.popLong(), t.popLong()
		t.pushLong(a + b)
	case opIsub:
		b, a := t.popInt(), t.popInt()
		t.pushInt(a - b)
	case opLsub:
		b, a := t.popLong(), t.popLong()
		t.pushLong(a - b)
	case opImul:
		b, a := t.popInt(), t.popInt()
		t.pushInt(a * b)
	case opLmul:
		b, a := t.popLong(), t.popLong()
		t.pushLong(a * b)
	case opIdiv:
		b, a := t.popInt(), t.popInt()
		if b == 0 {
			t.throwByName(ClassArithmeticException, "/ by zero")
			return
		}
		t.pushInt(a / b)
	case opLdiv:
		b, a := t.popLong(), t.popLong()
		if b == 0 {
			t.throwByName(ClassArithmeticException, "/ by zero")
			return
		}
		t.pushLong(a / b)
	case opIrem:
		b, a := t.popInt(), t.popInt()
		if b == 0 {
			t.throwByName(ClassArithmeticException, "/ by zero")
			return
		}
		t.pushInt(a % b)
	case opLrem:
		b, a := t.popLong(), t.popLong()
		if b == 0 {
			t.throwByName(ClassArithmeticException, "/ by zero")
			return
		}
		t.pushLong(a % b)
	case opIneg:
		t.pushInt(-t.popInt())
	case opLneg:
		// Redesign fix: this must pop a long, not an int — the original
		// popped a single 32-bit slot and corrupted the stack whenever
		// lneg followed anything that pushed a genuine long.
		t.pushLong(-t.popLong())
	case opIshl:
		b, a := t.popInt(), t.popInt()
		t.pushInt(a << (uint32(b) & 0x1f))
	case opLshl:
		b, a := t.popInt(), t.popLong()
		t.pushLong(a << (uint32(b) & 0x3f))
	case opIshr:
		b, a := t.popInt(), t.popInt()
		t.pushInt(a >> (uint32(b) & 0x1f))
	case opLshr:
		b, a := t.popInt(), t.popLong()
		t.pushLong(a >> (uint32(b) & 0x3f))
	case opIushr:
		b, a := t.popInt(), t.popInt()
		t.pushInt(int32(uint32(a) >> (uint32(b) & 0x1f)))
	case opLushr:
		// Redesign fix: the shift count must be masked to its low 6 bits
		// before use — the original used the raw shift amount and invoked
		// undefined behavior (or a wrong result) whenever it exceeded 63.
		b, a := t.popInt(), t.popLong()
		t.pushLong(int64(uint64(a) >> (uint32(b) & 0x3f)))
	case opIand:
		b, a := t.popInt(), t.popInt()
		t.pushInt(a & b)
	case opLand:
		b, a := t.popLong(), t.popLong()
		t.pushLong(a & b)
	case opIor:
		b, a := t.popInt(), t.popInt()
		t.pushInt(a | b)
	case opLor:
		b, a := t.popLong(), t.popLong()
		t.pushLong(a | b)
	case opIxor:
		b, a := t.popInt(), t.popInt()
		t.pushInt(a ^ b)
	case opLxor:
		b, a := t.popLong(), t.popLong()
		t.pushLong(a ^ b)
	}
}

// execIinc applies the iinc instruction: local[index] += delta.
func (t *Thread) execIinc(index int, delta int32) {
	v := t.localX(index).asInt32()
	t.setLocalX(index, int32Value(v+delta))
}

// execLcmp implements lcmp: pop two longs and push -1/0/1 per their order.
// Only longs go through lcmp; int comparisons branch directly through the
// if_icmp* opcodes.
func (t *Thread) execLcmp() {
	b, a := t.popLong(), t.popLong()
	switch {
	case a < b:
		t.pushInt(-1)
	case a > b:
		t.pushInt(1)
	default:
		t.pushInt(0)
	}
}

// execConvert runs the narrowing/widening integer conversion family.
func (t *Thread) execConvert(op byte) {
	switch op {
	case opI2b:
		t.pushInt(int32(int8(t.popInt())))
	case opI2c:
		t.pushInt(int32(uint16(t.popInt())))
	case opI2s:
		t.pushInt(int32(int16(t.popInt())))
	case opI2l:
		t.pushLong(int64(t.popInt()))
	case opL2i:
		t.pushInt(int32(t.popLong()))
	}
}
