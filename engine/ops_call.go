package engine

import (
	"context"

	"github.com/xuperchain/classvm/metrics"
)

// invokeKind distinguishes the four invoke opcodes' dispatch rules.
type invokeKind uint8

const (
	invokeStatic invokeKind = iota
	invokeSpecial
	invokeVirtual
	invokeInterface
)

// prepareCall resolves the callee for an invoke site and returns it along
// with the stack index its arguments begin at. The symbolic method
// resolved from the constant pool carries the correct parameter footprint
// regardless of which concrete override is ultimately invoked. callerClass
// is only consulted for invokespecial, to decide between super-vtable
// dispatch and a direct bind per isSpecialMethod.
func (t *Thread) prepareCall(kind invokeKind, symbolic *Method, ifaceClass, callerClass *Class) (*Method, int, error) {
	argBase := t.SP - symbolic.ParamWords

	switch kind {
	case invokeStatic:
		return symbolic, argBase, nil
	case invokeSpecial:
		if callerClass != nil && callerClass.Super != nil && isSpecialMethod(symbolic, callerClass, symbolic.Class) {
			return t.findMethod(callerClass.Super, symbolic), argBase, nil
		}
		return symbolic, argBase, nil
	case invokeVirtual:
		ref := t.Stack[argBase].Ref
		if ref == nil {
			t.throwByName(ClassNullPointerException, string(symbolic.Name))
			return nil, 0, NewVMError("null receiver")
		}
		return t.findMethod(ref.Class(), symbolic), argBase, nil
	case invokeInterface:
		ref := t.Stack[argBase].Ref
		if ref == nil {
			t.throwByName(ClassNullPointerException, string(symbolic.Name))
			return nil, 0, NewVMError("null receiver")
		}
		m, err := t.findInterfaceMethod(ref.Class(), ifaceClass, symbolic)
		return m, argBase, err
	}
	return symbolic, argBase, nil
}

// dispatchCall performs the full call sequence for a resolved method:
// native methods bind-and-invoke inline; bytecode methods check stack
// room and push a new frame, returning to the dispatch loop to execute it.
func (t *Thread) dispatchCall(ctx context.Context, method *Method) error {
	metrics.DefaultVMMetrics.ObserveMethodInvoked(callKindLabel(method))
	if method.IsNative() {
		data := t.bindNative(method)
		if data == nil {
			return nil // UnsatisfiedLinkError already thrown
		}
		argBase := t.SP - method.ParamWords
		err := t.invokeNative(ctx, data, argBase)
		if err != nil {
			return err
		}
		// invokeNative pushed its result (if any) on top of the arguments;
		// slide it down to where the caller's stack expects the call's
		// result to land and drop the now-dead argument slots beneath it.
		resultWords := returnWords(method.Spec)
		if resultWords > 0 {
			result := t.Stack[t.SP-resultWords : t.SP]
			copy(t.Stack[argBase:argBase+resultWords], result)
		}
		t.SP = argBase + resultWords
		return nil
	}

	if !t.checkStack(method) {
		return nil // StackOverflowError already thrown
	}
	return t.pushFrame(ctx, method)
}

// callKindLabel is the metrics label for a resolved call: native calls are
// reported distinctly from bytecode calls since they skip the frame stack
// entirely.
func callKindLabel(method *Method) string {
	if method.IsNative() {
		return "native"
	}
	return "bytecode"
}

// returnWords reports how many stack slots a method descriptor's return
// type occupies: 0 for void, 2 for J/D, 1 otherwise.
func returnWords(spec []byte) int {
	if len(spec) == 0 {
		return 0
	}
	switch spec[len(spec)-1] {
	case 'V':
		return 0
	case 'J', 'D':
		return 2
	default:
		return 1
	}
}

// execReturn implements ireturn/lreturn/areturn/return: pop the current
// frame, then place its result (if any) onto the caller's operand stack
// at the position the call's arguments used to occupy.
func (t *Thread) execReturn(op byte) {
	var result Value
	words := 0
	switch op {
	case opIreturn:
		result = int32Value(t.popInt())
		words = 1
	case opLreturn:
		result = int64Value(t.popLong())
		words = 2
	case opAreturn:
		result = refValue(t.popObject())
		words = 1
	}

	returning := *t.curFrame()
	base := returning.Base
	t.popFrame()
	if isClinitFrame(returning) {
		returning.Method.Class.completeInit(true)
	}
	t.SP = base
	if words == 1 {
		t.pushValue(result)
	} else if words == 2 {
		t.pushLong(result.asInt64())
	}
}
