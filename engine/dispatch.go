package engine

import (
	"context"
	"fmt"
	"os"
)

// runToCompletion pushes method's frame and drives the dispatch loop until
// that frame (and anything it calls) unwinds back off the stack. This is
// the public Run entry point's (vm.go) way of invoking a method from Go;
// it is deliberately not used internally for <clinit> (see clinit.go's
// triggerInit, which pushes a frame and lets the loop's normal iteration
// carry it rather than recursing through this function).
func (t *Thread) runToCompletion(ctx context.Context, method *Method) bool {
	startDepth := t.frame
	if !t.checkStack(method) {
		return t.handleUncaught()
	}
	if err := t.pushFrame(ctx, method); err != nil {
		t.throwByName(ClassUnsatisfiedLinkError, err.Error())
		return t.handleUncaught()
	}
	return t.loop(ctx, startDepth)
}

// loop is the interpreter's central fetch-decode-execute cycle. It runs
// until the frame stack unwinds back to floor (the depth it started at)
// or an exception escapes uncaught. Control-flow instructions (invoke,
// return, athrow, and the <clinit> trampoline) adjust t.frame/t.IP/t.Code
// directly rather than recursing, so a deeply nested call chain costs one
// Go-level loop iteration per bytecode instruction, never one Go stack
// frame per VM call.
func (t *Thread) loop(ctx context.Context, floor int) bool {
	for t.frame > floor {
		code := t.Code
		pc := t.IP
		op := code.Bytes[pc]
		t.IP = pc + 1

		switch {
		case op >= opAconstNull && op <= opLconst1:
			t.execConst(op)

		case op == opBipush:
			t.pushInt(int32(int8(code.Bytes[t.IP])))
			t.IP++
		case op == opSipush:
			t.pushInt(int32(i16(code.Bytes, t.IP)))
			t.IP += 2
		case op == opLdc:
			t.execLdc(code, int(code.Bytes[t.IP]))
			t.IP++
		case op == opLdcW:
			t.execLdc(code, u16(code.Bytes, t.IP))
			t.IP += 2
		case op == opLdc2W:
			t.execLdc2(code, u16(code.Bytes, t.IP))
			t.IP += 2

		case op == opIload, op == opLload, op == opAload:
			t.execLoad(op, int(code.Bytes[t.IP]))
			t.IP++
		case op >= opIload0 && op <= opIload3:
			t.execLoad(opIload, int(op-opIload0))
		case op >= opLload0 && op <= opLload3:
			t.execLoad(opLload, int(op-opLload0))
		case op >= opAload0 && op <= opAload3:
			t.execLoad(opAload, int(op-opAload0))

		case op == opIaload, op == opLaload, op == opAaload, op == opBaload:
			t.execArrayLoad(op)

		case op == opIstore, op == opLstore, op == opAstore:
			t.execStore(op, int(code.Bytes[t.IP]))
			t.IP++
		case op >= opIstore0 && op <= opIstore3:
			t.execStore(opIstore, int(op-opIstore0))
		case op >= opLstore0 && op <= opLstore3:
			t.execStore(opLstore, int(op-opLstore0))
		case op >= opAstore0 && op <= opAstore3:
			t.execStore(opAstore, int(op-opAstore0))

		case op == opIastore, op == opLastore, op == opAastore, op == opBastore:
			t.execArrayStore(op)

		case op >= opPop && op <= opSwap:
			t.execStackOp(op)

		case op >= opIadd && op <= opLxor && op != opIinc:
			t.execArith(op)
		case op == opIinc:
			index := int(code.Bytes[t.IP])
			delta := int32(int8(code.Bytes[t.IP+1]))
			t.IP += 2
			t.execIinc(index, delta)

		case op == opLcmp:
			t.execLcmp()
		case op == opI2b, op == opI2c, op == opI2s, op == opI2l, op == opL2i:
			t.execConvert(op)

		case op >= opIfeq && op <= opIfAcmpne:
			target := pc + i16(code.Bytes, t.IP)
			t.IP += 2
			if op >= opIfAcmpeq {
				b := t.popObject()
				a := t.popObject()
				if acmpTaken(op, a, b) {
					t.IP = target
				}
				break
			}
			var a, b int32
			if op >= opIfIcmpeq {
				b = t.popInt()
			}
			a = t.popInt()
			if branchTaken(op, a, b) {
				t.IP = target
			}
		case op == opIfnull, op == opIfnonnull:
			target := pc + i16(code.Bytes, t.IP)
			t.IP += 2
			isNull := t.popObject() == nil
			if (op == opIfnull) == isNull {
				t.IP = target
			}
		case op == opGoto:
			t.IP = pc + i16(code.Bytes, t.IP)
		case op == opGotoW:
			t.IP = pc + i32(code.Bytes, t.IP)
		case op == opJsr:
			ret := t.IP + 2
			t.IP = pc + i16(code.Bytes, t.IP)
			t.pushInt(int32(ret))
		case op == opJsrW:
			ret := t.IP + 4
			t.IP = pc + i32(code.Bytes, t.IP)
			t.pushInt(int32(ret))
		case op == opRet:
			index := int(code.Bytes[t.IP])
			t.IP = int(t.localX(index).asInt32())

		case op == opWide:
			t.execWide(code)

		case op == opIreturn, op == opLreturn, op == opAreturn, op == opReturn:
			if op == opReturn {
				returning := *t.curFrame()
				base := returning.Base
				t.popFrame()
				if isClinitFrame(returning) {
					returning.Method.Class.completeInit(true)
				}
				t.SP = base
			} else {
				t.execReturn(op)
			}

		case op == opGetstatic, op == opPutstatic, op == opGetfield, op == opPutfield:
			if !t.execFieldOp(ctx, code, op, pc) {
				goto throw_
			}

		case op == opInvokevirtual, op == opInvokespecial, op == opInvokestatic, op == opInvokeinterface:
			if !t.execInvoke(ctx, code, op, pc) {
				goto throw_
			}

		case op == opNew:
			index := u16(code.Bytes, t.IP)
			t.IP += 2
			class, err := t.resolveClass(code.Pool, index)
			if err != nil {
				goto throw_
			}
			switch t.triggerInit(ctx, class, pc) {
			case initPending:
				continue
			case initFailed:
				goto throw_
			}
			if !t.execNew(class) {
				goto throw_
			}
		case op == opCheckcast:
			index := u16(code.Bytes, t.IP)
			t.IP += 2
			class, err := t.resolveClass(code.Pool, index)
			if err != nil {
				goto throw_
			}
			t.execCheckcast(class)
		case op == opInstanceof:
			index := u16(code.Bytes, t.IP)
			t.IP += 2
			class, err := t.resolveClass(code.Pool, index)
			if err != nil {
				goto throw_
			}
			t.execInstanceof(class)

		case op == opNewarray:
			kind := ElemKind(code.Bytes[t.IP])
			t.IP++
			t.execNewarray(kind)
		case op == opAnewarray:
			index := u16(code.Bytes, t.IP)
			t.IP += 2
			class, err := t.resolveClass(code.Pool, index)
			if err != nil {
				goto throw_
			}
			t.execAnewarray(class)
		case op == opMultianewarray:
			index := u16(code.Bytes, t.IP)
			dims := int(code.Bytes[t.IP+2])
			t.IP += 3
			class, err := t.resolveClass(code.Pool, index)
			if err != nil {
				goto throw_
			}
			t.execMultianewarray(class, dims)
		case op == opArraylength:
			t.execArraylength()

		case op == opMonitorenter:
			t.execMonitorenter(ctx)
		case op == opMonitorexit:
			t.execMonitorexit()

		case op == opAthrow:
			ref := t.popObject()
			if ref == nil {
				t.throwByName(ClassNullPointerException, "")
			} else if exc, ok := ref.(*ThrowableObject); ok {
				t.Exception = exc
			} else {
				t.Exception = &ThrowableObject{class: ref.Class()}
			}
			goto throw_

		case op == opNop:
			// no-op

		default:
			t.Exception = nil
			panic(NewVMErrorf("unimplemented opcode 0x%02x at pc %d", op, pc))
		}

		if t.Exception != nil {
			goto throw_
		}
		continue

	throw_:
		if !t.unwind(floor) {
			return t.handleUncaught()
		}
	}
	return true
}

// execLdc pushes a single-width constant from the pool (int or float bits,
// or a String or other pre-boxed reference). A class-name entry is resolved
// through the loader but pushes a null reference: a class literal has no
// heap object in this engine.
func (t *Thread) execLdc(code *Code, index int) {
	if v, ok := code.Pool.Int32At(index); ok {
		t.pushInt(v)
		return
	}
	if ref, ok := code.Pool.RefAt(index); ok {
		t.pushObject(ref)
		return
	}
	class, err := t.resolveClass(code.Pool, index)
	if err == nil {
		t.pushObject(nil)
		_ = class
	}
}

// execLdc2 pushes a two-width constant (long or double bits).
func (t *Thread) execLdc2(code *Code, index int) {
	if v, ok := code.Pool.Int64At(index); ok {
		t.pushLong(v)
	}
}

// execFieldOp runs one of the four field-access opcodes uniformly: resolve
// the fieldref, run the <clinit> trampoline for a static access, then
// dispatch to the matching typed getter/setter. Returns false if an
// exception was raised and the loop should jump to the unwinder; when the
// trampoline pushed a <clinit> frame it leaves the instruction pointer
// rewound to pc and returns true without touching the field, so the loop
// re-executes this same instruction once that frame completes.
func (t *Thread) execFieldOp(ctx context.Context, code *Code, op byte, pc int) bool {
	static := op == opGetstatic || op == opPutstatic
	write := op == opPutstatic || op == opPutfield

	index := u16(code.Bytes, t.IP)
	t.IP += 2
	field, err := t.resolveField(code.Pool, index)
	if err != nil {
		return false
	}

	if static {
		switch t.triggerInit(ctx, field.Class, pc) {
		case initPending:
			return true
		case initFailed:
			return false
		}
	}

	wide := field.Spec[0] == 'J' || field.Spec[0] == 'D'

	switch {
	case static && !write:
		t.execGetstatic(field)
	case static && write:
		var v Value
		if wide {
			v = int64Value(t.popLong())
		} else {
			v = t.popValue()
		}
		t.execPutstatic(field, v)
	case !static && !write:
		t.execGetfield(field)
	case !static && write:
		var v Value
		if wide {
			v = int64Value(t.popLong())
		} else {
			v = t.popValue()
		}
		t.execPutfield(field, v)
	}
	return t.Exception == nil
}

// execInvoke runs one of the four invoke opcodes uniformly: resolve the
// methodref (and, for invokeinterface, the interface class), run the
// <clinit> trampoline for invokestatic, prepare the call per its dispatch
// rule, and hand off to dispatchCall. Returns false if an exception was
// raised and the loop should jump to the unwinder.
func (t *Thread) execInvoke(ctx context.Context, code *Code, op byte, pc int) bool {
	index := u16(code.Bytes, t.IP)
	t.IP += 2
	if op == opInvokeinterface {
		t.IP += 2 // interface count + reserved byte, per the class-file layout
	}

	symbolic, err := t.resolveMethod(code.Pool, index)
	if err != nil {
		return false
	}

	var kind invokeKind
	var ifaceClass *Class
	switch op {
	case opInvokestatic:
		kind = invokeStatic
		switch t.triggerInit(ctx, symbolic.Class, pc) {
		case initPending:
			return true
		case initFailed:
			return false
		}
	case opInvokespecial:
		kind = invokeSpecial
	case opInvokevirtual:
		kind = invokeVirtual
	case opInvokeinterface:
		kind = invokeInterface
		ifaceClass = symbolic.Class
	}

	var callerClass *Class
	if kind == invokeSpecial {
		callerClass = t.curFrame().Method.Class
	}
	method, _, err := t.prepareCall(kind, symbolic, ifaceClass, callerClass)
	if err != nil {
		return false
	}
	if err := t.dispatchCall(ctx, method); err != nil {
		t.throwByName(ClassUnsatisfiedLinkError, err.Error())
		return false
	}
	return t.Exception == nil
}

// handleUncaught is reached when an exception unwinds past the bottom of
// this call's frames. It prints the exception and its cause chain to
// standard error (see reportUncaught), leaves t.Exception set for the
// caller (vm.go) to return, and returns false to signal the call did not
// complete normally.
func (t *Thread) handleUncaught() bool {
	if t.Exception != nil {
		fmt.Fprint(os.Stderr, reportUncaught(t.Exception))
	}
	return false
}
