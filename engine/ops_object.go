package engine

import "context"

// execNew allocates a fresh instance of class, pushing the reference. Does
// not invoke <init>; that is a separate invokespecial the compiler always
// emits immediately after new. Callers must have already driven class
// through the <clinit> trampoline (dispatch.go's triggerInit) before
// calling this.
func (t *Thread) execNew(class *Class) bool {
	obj, err := t.HeapImpl.Allocate(class)
	if err != nil {
		t.throwByName(ClassNullPointerException, err.Error())
		return false
	}
	if class.VMFlags&VMFlagWeakReference != 0 && t.WeakRefs != nil {
		t.WeakRefs.Register(obj)
	}
	t.pushObject(obj)
	return true
}

// execGetfield reads an instance field from the object on top of the
// stack, raising NullPointerException if it is null.
func (t *Thread) execGetfield(field *Field) {
	ref := t.popObject()
	if ref == nil {
		t.throwByName(ClassNullPointerException, "")
		return
	}
	obj, ok := ref.(*Object)
	if !ok {
		t.pushValue(Value{})
		return
	}
	t.pushValue(obj.Fields[field.Offset])
}

// execPutfield writes an instance field. The value's width (one or two
// stack slots) must already have been decoded by the caller via the
// field's descriptor.
func (t *Thread) execPutfield(field *Field, v Value) {
	ref := t.popObject()
	if ref == nil {
		t.throwByName(ClassNullPointerException, "")
		return
	}
	obj, ok := ref.(*Object)
	if !ok {
		return
	}
	obj.Fields[field.Offset] = v
	if v.Ref != nil {
		t.HeapImpl.Set(obj, v.Ref)
	}
}

// execGetstatic reads a static field. Callers must have already driven
// field.Class through the <clinit> trampoline.
func (t *Thread) execGetstatic(field *Field) {
	box := field.Class.Statics[field.Offset]
	t.pushValue(boxedToValue(box))
}

// execPutstatic writes a static field. Callers must have already driven
// field.Class through the <clinit> trampoline.
func (t *Thread) execPutstatic(field *Field, v Value) {
	field.Class.Statics[field.Offset] = valueToBoxed(field.Class, v)
}

func boxedToValue(box HeapObject) Value {
	if b, ok := box.(*BoxedPrimitive); ok {
		return Value{Num: b.Num}
	}
	return refValue(box)
}

func valueToBoxed(owner *Class, v Value) HeapObject {
	if v.Ref != nil {
		return v.Ref
	}
	return &BoxedPrimitive{class: owner, Num: v.Num}
}

// execCheckcast verifies the top-of-stack reference is null or an
// instance of class, raising ClassCastException otherwise.
func (t *Thread) execCheckcast(class *Class) {
	ref := t.peekX(0).Ref
	if ref != nil && !instanceOf(ref, class) {
		t.throwByName(ClassClassCastException, string(ref.Class().Name)+" cannot be cast to "+string(class.Name))
	}
}

// execInstanceof replaces the top-of-stack reference with 1 or 0.
func (t *Thread) execInstanceof(class *Class) {
	ref := t.popObject()
	if ref != nil && instanceOf(ref, class) {
		t.pushInt(1)
	} else {
		t.pushInt(0)
	}
}

// execMonitorenter/execMonitorexit implement the explicit monitor
// instructions, as distinct from a SYNCHRONIZED method's implicit
// acquire/release in frame.go.
func (t *Thread) execMonitorenter(ctx context.Context) {
	ref := t.popObject()
	if ref == nil {
		t.throwByName(ClassNullPointerException, "")
		return
	}
	if t.MonitorImpl != nil {
		t.MonitorImpl.Acquire(ctx, ref)
	}
}

func (t *Thread) execMonitorexit() {
	ref := t.popObject()
	if ref == nil {
		t.throwByName(ClassNullPointerException, "")
		return
	}
	if t.MonitorImpl != nil {
		t.MonitorImpl.Release(ref)
	}
}
