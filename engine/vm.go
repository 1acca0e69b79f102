package engine

import (
	"context"

	"github.com/xuperchain/classvm/metrics"
)

// VM bundles the collaborators every Thread it creates shares: class
// loader, heap, monitor, safepoint controller, weak-reference list, and
// the native dynamic-library/builtin/call-bridge trio. It holds no
// execution state of its own — each Thread is an independent frame stack.
type VM struct {
	Loader    ClassLoader
	Heap      Heap
	Monitor   Monitor
	Safepoint SafepointController
	WeakRefs  WeakReferenceList
	Libraries []Library
	Builtins  BuiltinTable
	Bridge    CallBridge
}

// NewThread builds a Thread sharing this VM's collaborators, with its own
// private operand/local stack.
func (v *VM) NewThread(id int64, stackSize int) *Thread {
	return NewThread(id, ThreadConfig{
		StackSize: stackSize,
		Loader:    v.Loader,
		Heap:      v.Heap,
		Monitor:   v.Monitor,
		Safepoint: v.Safepoint,
		WeakRefs:  v.WeakRefs,
		Libraries: v.Libraries,
		Builtins:  v.Builtins,
		Bridge:    v.Bridge,
	})
}

// Result is the outcome of a Run call: at most one of Value and Exception
// is meaningful, per which of the two actually happened.
type Result struct {
	Value     Value
	Exception *ThrowableObject
}

// Run is the embedding API's call entry point: resolve className and look
// up a declared method matching methodName/methodSpec, push the given
// receiver (nil for a static method) and arguments onto the thread's
// stack in call order, and drive it to completion. It is the only place
// besides the <clinit> trampoline that starts a fresh call from Go rather
// than from inside the dispatch loop.
func (t *Thread) Run(ctx context.Context, className, methodName, methodSpec string, receiver HeapObject, args ...Value) Result {
	defer metrics.DefaultVMMetrics.CallTimer(className + "." + methodName)()

	class, err := t.Loader.ResolveClass([]byte(className))
	if err != nil {
		t.throwByName(ClassNoSuchMethodError, err.Error())
		return Result{Exception: t.takeException()}
	}
	t.ensureLinked(class)

	method := class.findDeclaredMethod([]byte(methodName), []byte(methodSpec))
	if method == nil {
		t.throwByName(ClassNoSuchMethodError, className+"."+methodName+methodSpec)
		return Result{Exception: t.takeException()}
	}

	if !method.IsStatic() {
		t.pushObject(receiver)
	}
	for _, a := range args {
		t.pushValue(a)
	}

	if t.triggerInitBlocking(ctx, method.Class) == initFailed {
		return Result{Exception: t.takeException()}
	}

	var ok bool
	if method.IsNative() {
		ok = t.dispatchCall(ctx, method) == nil && t.Exception == nil
	} else {
		ok = t.runToCompletion(ctx, method)
	}
	if !ok {
		return Result{Exception: t.takeException()}
	}
	switch returnWords(method.Spec) {
	case 2:
		return Result{Value: int64Value(t.popLong())}
	case 1:
		return Result{Value: t.popValue()}
	}
	return Result{}
}

// triggerInitBlocking drives a class's <clinit> trampoline to actual
// completion rather than a single pending step, for the rare call sites
// (Run's own entry, before any bytecode is executing) that have no
// dispatch loop of their own to resume into. It is the one place this
// engine still runs a <clinit> via direct recursion instead of the
// instruction-pointer rewind, justified by there being no retry point to
// rewind to yet.
func (t *Thread) triggerInitBlocking(ctx context.Context, class *Class) initStatus {
	t.ensureLinked(class)
	for {
		target := needsInitChain(class)
		if target == nil {
			return initReady
		}
		if !target.beginInit(t.ID) {
			if target.hasFailed() {
				t.throwByName(ClassNoClassDefFoundError, string(target.Name))
				return initFailed
			}
			continue
		}
		if target.Clinit == nil {
			target.completeInit(true)
			continue
		}
		ok := t.runToCompletion(ctx, target.Clinit)
		// A <clinit> frame that ran completes the class's init state itself
		// on return or unwind; complete it here only if that never happened.
		if (ok && !target.isInitialized()) || (!ok && !target.hasFailed()) {
			target.completeInit(ok)
		}
		if !ok {
			return initFailed
		}
	}
}

// takeException clears and returns the thread's pending exception.
func (t *Thread) takeException() *ThrowableObject {
	exc := t.Exception
	t.Exception = nil
	return exc
}

// RunMain builds a reference array of UTF-8 command-line arguments as
// String instances and invokes className's `main([Ljava/lang/String;)V`.
func (t *Thread) RunMain(ctx context.Context, className string, stringClass, stringArrayClass *Class, argv []string) Result {
	arr, err := t.HeapImpl.AllocateArray(stringArrayClass, ElemRef, stringClass, len(argv))
	if err != nil {
		t.throwByName(ClassNullPointerException, err.Error())
		return Result{Exception: t.takeException()}
	}
	for i, a := range argv {
		arr.Data[i] = refValue(NewStringObject(stringClass, []byte(a)))
	}
	return t.Run(ctx, className, "main", "([Ljava/lang/String;)V", nil, refValue(arr))
}
