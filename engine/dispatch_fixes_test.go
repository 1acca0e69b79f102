package engine

import (
	"context"
	"testing"
)

// TestInvokespecialSuperDispatch builds a three-level hierarchy where
// GrandParent declares foo and Parent overrides it; B (ACC_SUPER) invokes
// invokespecial against the symbolic GrandParent.foo reference from within
// its own method, the way a compiled "super.foo()" call would if the
// immediate superclass has itself overridden the grandparent's method.
// Dispatch must redirect through the caller's superclass vtable and land on
// Parent's override, not bind directly to the named GrandParent method.
func TestInvokespecialSuperDispatch(t *testing.T) {
	buildHierarchy := func(superFlag bool) (*fakeLoader, *Class) {
		loader := newFakeLoader()
		object := NewClass([]byte("java/lang/Object"))
		loader.add(object)

		grandParent := NewClass([]byte("GrandParent"))
		grandParent.Super = object
		gpFoo := simpleMethod(grandParent, "foo", "()I", 1, 1, []byte{opIconst0, opIreturn}, nil)
		gpFoo.ParamWords, gpFoo.ParamCount = 1, 1
		grandParent.Methods = []*Method{gpFoo}
		loader.add(grandParent)

		parent := NewClass([]byte("Parent"))
		parent.Super = grandParent
		parentFoo := simpleMethod(parent, "foo", "()I", 1, 1, []byte{opIconst1, opIreturn}, nil)
		parentFoo.ParamWords, parentFoo.ParamCount = 1, 1
		parent.Methods = []*Method{parentFoo}
		loader.add(parent)

		b := NewClass([]byte("B"))
		b.Super = parent
		if superFlag {
			b.Flags |= ClassSuper
		}
		bFoo := simpleMethod(b, "foo", "()I", 1, 1, []byte{opIconst2, opIreturn}, nil)
		bFoo.ParamWords, bFoo.ParamCount = 1, 1

		poolRef := &Reference{OwnerClass: []byte("GrandParent"), Name: []byte("foo"), Spec: []byte("()I")}
		callGP := simpleMethod(b, "callGrandParentFoo", "()I", 1, 2,
			[]byte{opAload, 0x00, opInvokespecial, 0x00, 0x01, opIreturn},
			[]interface{}{nil, poolRef})
		callGP.ParamWords, callGP.ParamCount = 1, 1
		b.Methods = []*Method{bFoo, callGP}
		loader.add(b)

		return loader, b
	}

	t.Run("ACC_SUPER redirects through the caller's superclass vtable", func(t *testing.T) {
		loader, b := buildHierarchy(true)
		th := newEngineTestThread(loader)
		instance := NewObject(b)
		res := th.Run(context.Background(), "B", "callGrandParentFoo", "()I", instance)
		if res.Exception != nil {
			t.Fatalf("unexpected exception: %s", res.Exception.Message)
		}
		if got := res.Value.asInt32(); got != 1 {
			t.Fatalf("got %d, want 1 (Parent's override, found via caller's super vtable)", got)
		}
	})

	t.Run("without ACC_SUPER the call binds directly to the symbolic method", func(t *testing.T) {
		loader, b := buildHierarchy(false)
		th := newEngineTestThread(loader)
		instance := NewObject(b)
		res := th.Run(context.Background(), "B", "callGrandParentFoo", "()I", instance)
		if res.Exception != nil {
			t.Fatalf("unexpected exception: %s", res.Exception.Message)
		}
		if got := res.Value.asInt32(); got != 0 {
			t.Fatalf("got %d, want 0 (direct bind to GrandParent.foo)", got)
		}
	})
}

// captureBridge records the argv/typev it was called with so the test can
// assert on the marshalled receiver slot, and returns double the last
// Word32 argument it saw.
type captureBridge struct {
	gotArgv  []uint64
	gotTypev []TypeTag
}

func (c *captureBridge) Call(fn NativeFunc, argv []uint64, typev []TypeTag) (uint64, error) {
	c.gotArgv = append([]uint64{}, argv...)
	c.gotTypev = append([]TypeTag{}, typev...)
	last := argv[len(argv)-1]
	return uint64(uint32(int32(last) * 2)), nil
}

type captureBuiltins struct{}

func (captureBuiltins) Resolve(symbol []byte) (NativeFunc, bool) {
	if string(symbol) == "getDoubled" {
		return "getDoubled", true
	}
	return nil, false
}

// TestNativeBridgeInstanceMethodReceiver checks that binding a non-static
// native method prepends a pointer-typed receiver slot ahead of its
// declared parameters in the marshalled argument vector, immediately after
// the always-present thread-handle slot.
func TestNativeBridgeInstanceMethodReceiver(t *testing.T) {
	loader := newFakeLoader()
	class := NewClass([]byte("Widget"))
	native := &Method{
		Class:      class,
		Name:       []byte("getDoubled"),
		Spec:       []byte("(I)I"),
		Flags:      MethodNative,
		ParamWords: 2,
		ParamCount: 2,
		Code:       []byte("getDoubled"),
	}
	class.Methods = []*Method{native}
	loader.add(class)

	bridge := &captureBridge{}
	th := NewThread(1, ThreadConfig{
		StackSize: 64,
		Loader:    loader,
		Heap:      fakeHeap{},
		Builtins:  captureBuiltins{},
		Bridge:    bridge,
	})

	receiver := NewObject(class)
	res := th.Run(context.Background(), "Widget", "getDoubled", "(I)I", receiver, int32Value(7))
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %s", res.Exception.Message)
	}
	if got := res.Value.asInt32(); got != 14 {
		t.Fatalf("got %d, want 14", got)
	}

	if len(bridge.gotTypev) != 3 {
		t.Fatalf("got %d typev entries, want 3 (thread, receiver, int param): %v", len(bridge.gotTypev), bridge.gotTypev)
	}
	if bridge.gotTypev[0] != TypePointer || bridge.gotTypev[1] != TypePointer || bridge.gotTypev[2] != TypeWord32 {
		t.Fatalf("typev = %v, want [Pointer, Pointer, Word32]", bridge.gotTypev)
	}
	if int32(bridge.gotArgv[2]) != 7 {
		t.Fatalf("declared int argument = %d, want 7", int32(bridge.gotArgv[2]))
	}
}

// TestClassInitFailurePropagatesNoClassDefFoundError checks that once a
// class's <clinit> has failed, it is never retried: the first call surfaces
// the original uncaught exception, and every later call against that class
// fails fast with NoClassDefFoundError instead.
func TestClassInitFailurePropagatesNoClassDefFoundError(t *testing.T) {
	loader := newFakeLoader()
	loader.add(NewClass([]byte(ClassArithmeticException)))
	loader.add(NewClass([]byte(ClassNoClassDefFoundError)))

	class := NewClass([]byte("Bomb"))
	clinit := simpleMethod(class, "<clinit>", "()V", 0, 2,
		[]byte{opIconst1, opIconst0, opIdiv, opReturn}, nil)
	clinit.Flags = MethodStatic
	class.Clinit = clinit
	class.Methods = append(class.Methods, clinit)

	noop := simpleMethod(class, "noop", "()V", 0, 0, []byte{opReturn}, nil)
	noop.Flags = MethodStatic
	class.Methods = append(class.Methods, noop)
	loader.add(class)

	th := newEngineTestThread(loader)

	first := th.Run(context.Background(), "Bomb", "noop", "()V", nil)
	if first.Exception == nil {
		t.Fatal("expected the first call to surface the clinit's own ArithmeticException")
	}
	if string(first.Exception.class.Name) != ClassArithmeticException {
		t.Fatalf("first call exception = %s, want %s", first.Exception.class.Name, ClassArithmeticException)
	}

	second := th.Run(context.Background(), "Bomb", "noop", "()V", nil)
	if second.Exception == nil {
		t.Fatal("expected the second call to fail fast with NoClassDefFoundError")
	}
	if string(second.Exception.class.Name) != ClassNoClassDefFoundError {
		t.Fatalf("second call exception = %s, want %s", second.Exception.class.Name, ClassNoClassDefFoundError)
	}
}
