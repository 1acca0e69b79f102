package engine

import (
	"context"
	"testing"
)

// fakeLoader resolves classes from an in-memory map, the way a minimal
// embedder's loader might for tests that don't need real class-file
// parsing.
type fakeLoader struct {
	classes map[string]*Class
}

func (l *fakeLoader) ResolveClass(name []byte) (*Class, error) {
	if c, ok := l.classes[string(name)]; ok {
		return c, nil
	}
	return nil, NewVMErrorf("class not found: %s", name)
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{classes: map[string]*Class{}}
}

func (l *fakeLoader) add(c *Class) { l.classes[string(c.Name)] = c }

// fakeHeap allocates objects and arrays directly, with no GC.
type fakeHeap struct{}

func (fakeHeap) Allocate(class *Class) (*Object, error) { return NewObject(class), nil }
func (fakeHeap) AllocateArray(arrayClass *Class, kind ElemKind, elemType *Class, length int) (*ArrayObject, error) {
	return NewArrayObject(arrayClass, kind, elemType, length), nil
}
func (fakeHeap) Set(target HeapObject, ref HeapObject) {}

func newEngineTestThread(loader *fakeLoader) *Thread {
	return NewThread(1, ThreadConfig{
		StackSize: 256,
		Loader:    loader,
		Heap:      fakeHeap{},
	})
}

func simpleMethod(class *Class, name, spec string, maxLocals, maxStack int, bytes []byte, pool []interface{}) *Method {
	m := &Method{Class: class, Name: []byte(name), Spec: []byte(spec), ParamWords: 0, ParamCount: 0}
	code := &Code{Bytes: bytes, MaxLocals: maxLocals, MaxStack: maxStack}
	code.Pool = NewConstantPool(class, pool)
	m.Code = code
	return m
}

func TestIaddReturnsFive(t *testing.T) {
	loader := newFakeLoader()
	class := NewClass([]byte("Arith"))
	method := simpleMethod(class, "two", "()I", 0, 2,
		[]byte{opIconst2, opIconst3, opIadd, opIreturn}, nil)
	class.Methods = []*Method{method}
	method.Flags = MethodStatic
	loader.add(class)

	th := newEngineTestThread(loader)
	res := th.Run(context.Background(), "Arith", "two", "()I", nil)
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %s", res.Exception.Message)
	}
	if got := res.Value.asInt32(); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
}

func TestNewObjectAllocates(t *testing.T) {
	loader := newFakeLoader()
	object := NewClass([]byte("java/lang/Object"))
	loader.add(object)

	demo := NewClass([]byte("Demo"))
	demo.Super = object
	pool := []interface{}{nil, []byte("Demo")}
	method := simpleMethod(demo, "make", "()Ljava/lang/Object;", 0, 1,
		[]byte{opNew, 0x00, 0x01, opAreturn}, pool)
	method.Flags = MethodStatic
	demo.Methods = []*Method{method}
	loader.add(demo)

	th := newEngineTestThread(loader)
	res := th.Run(context.Background(), "Demo", "make", "()Ljava/lang/Object;", nil)
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %s", res.Exception.Message)
	}
	obj, ok := res.Value.Ref.(*Object)
	if !ok || obj.Class() != demo {
		t.Fatalf("expected a fresh Demo instance, got %#v", res.Value.Ref)
	}
}

// TestVirtualDispatchUsesOverride builds Base.greet and Derived.greet,
// links Derived, and checks that invoking through a symbolic Base.greet
// reference against a Derived receiver runs the override.
func TestVirtualDispatchUsesOverride(t *testing.T) {
	loader := newFakeLoader()
	object := NewClass([]byte("java/lang/Object"))
	loader.add(object)

	base := NewClass([]byte("Base"))
	base.Super = object
	baseGreet := simpleMethod(base, "greet", "()I", 1, 1, []byte{opIconst0, opIreturn}, nil)
	baseGreet.ParamWords, baseGreet.ParamCount = 1, 1
	base.Methods = []*Method{baseGreet}
	loader.add(base)

	derived := NewClass([]byte("Derived"))
	derived.Super = base
	derivedGreet := simpleMethod(derived, "greet", "()I", 1, 1, []byte{opIconst1, opIreturn}, nil)
	derivedGreet.ParamWords, derivedGreet.ParamCount = 1, 1
	derived.Methods = []*Method{derivedGreet}
	loader.add(derived)

	th := newEngineTestThread(loader)
	th.ensureLinked(base)
	th.ensureLinked(derived)

	instance := NewObject(derived)
	resolved := th.findMethod(derived, baseGreet)
	if resolved != derivedGreet {
		t.Fatalf("findMethod returned %v, want the Derived override", resolved.Name)
	}

	th.pushObject(instance)
	ok := th.runToCompletion(context.Background(), resolved)
	if !ok {
		t.Fatalf("unexpected exception: %s", th.Exception.Message)
	}
	if got := th.popInt(); got != 1 {
		t.Fatalf("got %d, want 1 (Derived override)", got)
	}
}

// TestUncaughtExceptionUnwindsAcrossFrames calls a method with no handler
// whose callee divides by zero, and checks the exception propagates all
// the way out as uncaught.
func TestUncaughtExceptionUnwindsAcrossFrames(t *testing.T) {
	loader := newFakeLoader()
	arithExc := NewClass([]byte(ClassArithmeticException))
	loader.add(arithExc)
	class := NewClass([]byte("Div"))

	inner := simpleMethod(class, "boom", "()I", 0, 2,
		[]byte{opIconst1, opIconst0, opIdiv, opIreturn}, nil)
	inner.Flags = MethodStatic
	class.Methods = append(class.Methods, inner)

	poolRef := &Reference{OwnerClass: []byte("Div"), Name: []byte("boom"), Spec: []byte("()I")}
	outer := simpleMethod(class, "outer", "()I", 0, 1,
		[]byte{opInvokestatic, 0x00, 0x01, opIreturn}, []interface{}{nil, poolRef})
	outer.Flags = MethodStatic
	class.Methods = append(class.Methods, outer)
	loader.add(class)

	th := newEngineTestThread(loader)
	res := th.Run(context.Background(), "Div", "outer", "()I", nil)
	if res.Exception == nil {
		t.Fatal("expected an uncaught ArithmeticException")
	}
	if string(res.Exception.class.Name) != ClassArithmeticException {
		t.Fatalf("got %s", res.Exception.class.Name)
	}
}

// TestClinitRunsExactlyOnce checks that two calls into a class whose
// <clinit> increments a static counter only run the initializer once.
func TestClinitRunsExactlyOnce(t *testing.T) {
	loader := newFakeLoader()
	class := NewClass([]byte("Counted"))
	class.Statics = make([]HeapObject, 1)

	field := &Field{Class: class, Name: []byte("n"), Spec: []byte("I"), Flags: FieldStatic, Offset: 0}
	class.Fields = []*Field{field}

	// n = n + 1, so a re-run would be observable as 2 on the second read
	// instead of the single-run value of 1.
	clinitPool := []interface{}{nil, field}
	clinit := simpleMethod(class, "<clinit>", "()V", 0, 2,
		[]byte{opGetstatic, 0x00, 0x01, opIconst1, opIadd, opPutstatic, 0x00, 0x01, opReturn}, clinitPool)
	clinit.Flags = MethodStatic
	class.Clinit = clinit
	class.Methods = append(class.Methods, clinit)

	getPool := []interface{}{nil, field}
	reader := simpleMethod(class, "read", "()I", 0, 1,
		[]byte{opGetstatic, 0x00, 0x01, opIreturn}, getPool)
	reader.Flags = MethodStatic
	class.Methods = append(class.Methods, reader)
	loader.add(class)

	th := newEngineTestThread(loader)
	first := th.Run(context.Background(), "Counted", "read", "()I", nil)
	if first.Exception != nil {
		t.Fatalf("unexpected exception: %s", first.Exception.Message)
	}
	if got := first.Value.asInt32(); got != 1 {
		t.Fatalf("first read = %d, want 1", got)
	}

	second := th.Run(context.Background(), "Counted", "read", "()I", nil)
	if second.Exception != nil {
		t.Fatalf("unexpected exception: %s", second.Exception.Message)
	}
	if got := second.Value.asInt32(); got != 1 {
		t.Fatalf("second read = %d, want 1 (clinit must not re-run)", got)
	}
}

// TestNativeBridgeAdd exercises a bound native method through a stub
// CallBridge, the way an embedder's foreign-function call would.
type stubBridge struct{}

func (stubBridge) Call(fn NativeFunc, argv []uint64, typev []TypeTag) (uint64, error) {
	if name, ok := fn.(string); ok && name == "add" {
		a := int32(argv[1])
		b := int32(argv[2])
		return uint64(uint32(a + b)), nil
	}
	return 0, NewVMError("unbound native function")
}

type stubBuiltins struct{}

func (stubBuiltins) Resolve(symbol []byte) (NativeFunc, bool) {
	if string(symbol) == "add" {
		return "add", true
	}
	return nil, false
}

func TestNativeBridgeAdd(t *testing.T) {
	loader := newFakeLoader()
	class := NewClass([]byte("Native"))
	native := &Method{
		Class:      class,
		Name:       []byte("add"),
		Spec:       []byte("(II)I"),
		Flags:      MethodStatic | MethodNative,
		ParamWords: 2,
		ParamCount: 2,
		Code:       []byte("add"),
	}
	class.Methods = []*Method{native}
	loader.add(class)

	th := NewThread(1, ThreadConfig{
		StackSize: 64,
		Loader:    loader,
		Heap:      fakeHeap{},
		Builtins:  stubBuiltins{},
		Bridge:    stubBridge{},
	})
	res := th.Run(context.Background(), "Native", "add", "(II)I", nil, int32Value(2), int32Value(3))
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %s", res.Exception.Message)
	}
	if got := res.Value.asInt32(); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
}
