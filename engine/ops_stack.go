package engine

// execConst runs the constant-pushing family (iconst_*, lconst_*, aconst_null).
func (t *Thread) execConst(op byte) {
	switch op {
	case opAconstNull:
		t.pushObject(nil)
	case opIconstM1:
		t.pushInt(-1)
	case opIconst0:
		t.pushInt(0)
	case opIconst1:
		t.pushInt(1)
	case opIconst2:
		t.pushInt(2)
	case opIconst3:
		t.pushInt(3)
	case opIconst4:
		t.pushInt(4)
	case opIconst5:
		t.pushInt(5)
	case opLconst0:
		t.pushLong(0)
	case opLconst1:
		t.pushLong(1)
	}
}

// execLoad runs the local-variable load family (iload/lload/aload and
// their _0.._3 shorthands).
func (t *Thread) execLoad(op byte, index int) {
	switch op {
	case opIload, opIload0, opIload1, opIload2, opIload3:
		t.pushInt(t.localX(index).asInt32())
	case opLload:
		t.pushLong(t.localX(index).asInt64())
	case opAload, opAload0, opAload1, opAload2, opAload3:
		t.pushObject(t.localX(index).Ref)
	}
}

// execStore runs the local-variable store family.
func (t *Thread) execStore(op byte, index int) {
	switch op {
	case opIstore, opIstore0, opIstore1, opIstore2, opIstore3:
		t.setLocalX(index, int32Value(t.popInt()))
	case opLstore:
		t.setLocalX(index, int64Value(t.popLong()))
		t.setLocalX(index+1, Value{})
	case opAstore, opAstore0, opAstore1, opAstore2, opAstore3:
		t.setLocalX(index, refValue(t.popObject()))
	}
}

// execWide runs the instruction following a wide prefix byte, widening its
// local-variable index (and, for iinc, its immediate delta) to 16 bits
// instead of the normal 8. Valid successors are aload/astore/iload/istore/
// lload/lstore/iinc/ret.
func (t *Thread) execWide(code *Code) {
	op := code.Bytes[t.IP]
	t.IP++
	index := u16(code.Bytes, t.IP)
	t.IP += 2
	switch op {
	case opIload, opLload, opAload:
		t.execLoad(op, index)
	case opIstore, opLstore, opAstore:
		t.execStore(op, index)
	case opIinc:
		delta := int32(i16(code.Bytes, t.IP))
		t.IP += 2
		t.execIinc(index, delta)
	case opRet:
		t.IP = int(t.localX(index).asInt32())
	}
}

// execStackOp runs the generic stack-shuffling family.
func (t *Thread) execStackOp(op byte) {
	switch op {
	case opPop:
		t.pop()
	case opPop2:
		t.pop2()
	case opDup:
		t.dup()
	case opDupX1:
		t.dupX1()
	case opDupX2:
		t.dupX2()
	case opDup2:
		t.dup2()
	case opDup2X1:
		t.dup2X1()
	case opDup2X2:
		t.dup2X2()
	case opSwap:
		t.swap()
	}
}
